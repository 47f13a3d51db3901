package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	b := New()

	var mu sync.Mutex
	var received []ScanProgress
	done := make(chan struct{})

	b.Subscribe("scan.progress", func(_ context.Context, p ScanProgress) {
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
		close(done)
	})

	b.Publish(context.Background(), "scan.progress", ScanProgress{
		ScanID: "abc", Target: "127.0.0.1", Stage: "l1_preset", Message: "starting", Percent: 5,
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "abc", received[0].ScanID)
	assert.Equal(t, "l1_preset", received[0].Stage)
	assert.Equal(t, 5, received[0].Percent)
}

func TestBus_PublishIgnoresOtherTopics(t *testing.T) {
	b := New()
	called := false
	b.Subscribe("scan.progress", func(_ context.Context, _ ScanProgress) { called = true })

	b.Publish(context.Background(), "other.topic", ScanProgress{Stage: "l1_preset"})

	time.Sleep(20 * time.Millisecond)
	assert.False(t, called)
}
