package reconerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndKindOf(t *testing.T) {
	err := New(ConnectRefused, "dial %s: refused", "203.0.113.1:22")
	require.Error(t, err)
	assert.Equal(t, ConnectRefused, KindOf(err))
	assert.True(t, Is(err, ConnectRefused))
	assert.False(t, Is(err, NetworkTimeout))
}

func TestWrap(t *testing.T) {
	base := errors.New("i/o timeout")
	wrapped := Wrap(NetworkTimeout, base)

	assert.Equal(t, NetworkTimeout, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, base), "Wrap must preserve Unwrap chain for errors.Is")
	assert.Equal(t, base.Error(), wrapped.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(NetworkTimeout, nil))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestFatal(t *testing.T) {
	assert.True(t, Fatal(ConfigInvalid))
	assert.True(t, Fatal(RuleCompilationError))
	assert.False(t, Fatal(HelperUnavailable))
	assert.False(t, Fatal(UnhandledInternal))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(New(ConfigInvalid, "bad config")))
	assert.Equal(t, 3, ExitCode(New(RuleCompilationError, "bad regex")))
	assert.Equal(t, 1, ExitCode(New(UnhandledInternal, "panic recovered")))
}
