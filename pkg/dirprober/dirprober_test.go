package dirprober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

func TestProbe_FindsAdminPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(strings.Repeat("x", 60) + `<html><title>Admin Login</title><body><form action="/login"><input type="password"></form></body></html>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := recontypes.DefaultScanConfig()
	p := New(cfg, zerolog.Nop())

	endpoint := recontypes.NewHTTPInfo(srv.URL, false)
	results := p.Probe(context.Background(), endpoint)

	var found *recontypes.DirectoryInfo
	for i := range results {
		if results[i].Path == "/admin" {
			found = &results[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, http.StatusOK, found.StatusCode)
	assert.True(t, found.IsAdmin)
	assert.Equal(t, "Admin Login", found.Title)
}

func TestProbe_NoDoubleSlashWhenBaseURLHasTrailingSlash(t *testing.T) {
	var requestedPaths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin", func(w http.ResponseWriter, r *http.Request) {
		requestedPaths = append(requestedPaths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(strings.Repeat("x", 60) + `<html><title>Admin</title></html>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requestedPaths = append(requestedPaths, r.URL.Path)
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := recontypes.DefaultScanConfig()
	p := New(cfg, zerolog.Nop())

	// httpfingerprinter always builds HTTPInfo.URL with a trailing slash
	// (scheme://host:port/); reproduce that here rather than the bare
	// srv.URL the other tests in this file use.
	endpoint := recontypes.NewHTTPInfo(srv.URL+"/", false)
	p.Probe(context.Background(), endpoint)

	require.NotEmpty(t, requestedPaths)
	for _, path := range requestedPaths {
		assert.False(t, strings.HasPrefix(path, "//"), "request path %q has a leading double slash", path)
	}
}

func TestProbe_DisabledReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := recontypes.DefaultScanConfig()
	cfg.DirectoryScanEnabled = false
	p := New(cfg, zerolog.Nop())

	results := p.Probe(context.Background(), recontypes.NewHTTPInfo(srv.URL, false))
	assert.Nil(t, results)
}

func TestProbe_SkipsTinyAndNotFoundResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no"))
	}))
	defer srv.Close()

	cfg := recontypes.DefaultScanConfig()
	p := New(cfg, zerolog.Nop())

	results := p.Probe(context.Background(), recontypes.NewHTTPInfo(srv.URL, false))
	assert.Empty(t, results)
}

func TestCandidatePaths_DedupesAcrossRules(t *testing.T) {
	endpoint := recontypes.NewHTTPInfo("http://example.test", false)
	endpoint.Server = "Apache Tomcat"

	paths := candidatePaths(endpoint)

	seen := make(map[string]int)
	for _, p := range paths {
		seen[p]++
	}
	for path, count := range seen {
		assert.Equal(t, 1, count, "path %s appeared more than once", path)
	}
	assert.Contains(t, paths, "/manager")
}
