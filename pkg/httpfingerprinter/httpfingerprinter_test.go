package httpfingerprinter

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

func portOf(t *testing.T, rawURL string) int {
	t.Helper()
	_, portStr, err := net.SplitHostPort(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return port
}

func TestFingerprint_CapturesStatusServerAndTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><head><title>Welcome</title></head><body></body></html>"))
	}))
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := recontypes.DefaultScanConfig()
	cfg.WebPorts = append(cfg.WebPorts, port)
	f := New(cfg, zerolog.Nop())

	results := f.Fingerprint(context.Background(), host, []recontypes.PortInfo{recontypes.NewOpenPort(port)})

	require.Len(t, results, 1)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)
	assert.Equal(t, "nginx", results[0].Server)
	assert.Equal(t, "Welcome", results[0].Title)
	assert.False(t, results[0].IsHTTPS)
}

func TestFingerprint_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	host := srv.Listener.Addr().(*net.TCPAddr).IP.String()
	port := portOf(t, srv.Listener.Addr().String())

	cfg := recontypes.DefaultScanConfig()
	cfg.WebPorts = append(cfg.WebPorts, port)
	f := New(cfg, zerolog.Nop())

	results := f.Fingerprint(context.Background(), host, []recontypes.PortInfo{recontypes.NewOpenPort(port)})

	require.Len(t, results, 1)
	assert.Equal(t, http.StatusFound, results[0].StatusCode)
	assert.Equal(t, "/elsewhere", results[0].RedirectURL)
	assert.Empty(t, results[0].Title)
}

func TestCandidates_FiltersByScoreAndPortHints(t *testing.T) {
	cfg := recontypes.DefaultScanConfig()
	f := New(cfg, zerolog.Nop())

	ports := []recontypes.PortInfo{
		recontypes.NewOpenPort(22),   // ssh, not a candidate
		recontypes.NewOpenPort(3000), // in AdditionalHTTPCandidatePorts
	}
	candidates := f.Candidates(ports)

	require.Len(t, candidates, 1)
	assert.Equal(t, 3000, candidates[0].Port)
}

func TestPrefersTLSFirst_PortAndBanner(t *testing.T) {
	f := New(recontypes.DefaultScanConfig(), zerolog.Nop())

	assert.True(t, f.prefersTLSFirst(recontypes.NewOpenPort(443)))
	assert.True(t, f.prefersTLSFirst(recontypes.NewOpenPort(8443)))

	withBanner := recontypes.NewOpenPort(9443)
	withBanner.Banner = "generic SSL/TLS handshake"
	assert.True(t, f.prefersTLSFirst(withBanner))

	assert.False(t, f.prefersTLSFirst(recontypes.NewOpenPort(8080)))
}

func TestFingerprint_NoCandidatesReturnsNil(t *testing.T) {
	f := New(recontypes.DefaultScanConfig(), zerolog.Nop())
	results := f.Fingerprint(context.Background(), "127.0.0.1", []recontypes.PortInfo{recontypes.NewOpenPort(22)})
	assert.Nil(t, results)
}
