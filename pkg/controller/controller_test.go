package controller

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentora-ai/reconcore/pkg/bannergrabber"
	"github.com/pentora-ai/reconcore/pkg/dirprober"
	"github.com/pentora-ai/reconcore/pkg/event"
	"github.com/pentora-ai/reconcore/pkg/httpfingerprinter"
	"github.com/pentora-ai/reconcore/pkg/portdiscoverer"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

func listenOnFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	return port, func() { ln.Close() }
}

func newController(cfg recontypes.ScanConfig) *Controller {
	logger := zerolog.Nop()
	return New(
		cfg,
		portdiscoverer.New(cfg, nil, logger),
		bannergrabber.New(cfg, logger),
		httpfingerprinter.New(cfg, logger),
		dirprober.New(cfg, logger),
		event.New(),
		logger,
	)
}

func TestController_ExplicitPorts_NoEscalation(t *testing.T) {
	port, closeFn := listenOnFreePort(t)
	defer closeFn()

	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = true
	c := newController(cfg)

	target, err := recontypes.NewScanTarget("127.0.0.1", []int{port})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result := c.Run(ctx, target, AllLayers())

	require.Equal(t, recontypes.StatusCompleted, result.Status)
	require.Len(t, result.OpenPorts, 1)
	assert.Equal(t, port, result.OpenPorts[0].Port)
	assert.Equal(t, len(target.Ports), result.TotalPortsScanned)
	assert.NotNil(t, result.EndTime)
	assert.NotNil(t, result.Duration)
}

func TestController_SkipsHTTPWhenNoOpenPorts(t *testing.T) {
	cfg := recontypes.DefaultScanConfig()
	c := newController(cfg)

	target, err := recontypes.NewScanTarget("203.0.113.1", []int{1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result := c.Run(ctx, target, AllLayers())

	require.Equal(t, recontypes.StatusCompleted, result.Status)
	assert.Empty(t, result.OpenPorts)
	assert.Empty(t, result.HTTPServices)
	assert.Empty(t, result.AdminDirectories)
}

func TestController_EscalatesWhenWebCheckFindsNoHTTP(t *testing.T) {
	portA, closeA := listenOnFreePort(t)
	defer closeA()
	portB, closeB := listenOnFreePort(t)
	defer closeB()

	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = true
	cfg.SmartScanThreshold = 2
	cfg.PresetPortRange = "1-1"
	cfg.PresetExtraPorts = []int{portA, portB}
	cfg.WebPorts = append(cfg.WebPorts, portA)
	cfg.DirectoryScanEnabled = false
	c := newController(cfg)

	target, err := recontypes.NewScanTarget("127.0.0.1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	result := c.Run(ctx, target, AllLayers())

	require.Equal(t, recontypes.StatusCompleted, result.Status)
	// A plain TCP echo-less listener never answers HTTP, so the web check
	// finds nothing and the controller must have escalated to a full sweep.
	assert.Equal(t, 65535, result.TotalPortsScanned)
}

func TestController_SkipsFullSweepWhenWebCheckFindsHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	webPort, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	portB, closeB := listenOnFreePort(t)
	defer closeB()

	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = true
	cfg.SmartScanThreshold = 2
	cfg.PresetPortRange = "1-1"
	cfg.PresetExtraPorts = []int{webPort, portB}
	cfg.WebPorts = append(cfg.WebPorts, webPort)
	cfg.DirectoryScanEnabled = false
	c := newController(cfg)

	target, err := recontypes.NewScanTarget(host, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	result := c.Run(ctx, target, AllLayers())

	require.Equal(t, recontypes.StatusCompleted, result.Status)
	assert.NotEqual(t, 65535, result.TotalPortsScanned)
	require.NotEmpty(t, result.HTTPServices)
	assert.Equal(t, "ok", result.HTTPServices[0].Title)
}

func TestController_EscalatesWhenNoWebCandidatesAtAll(t *testing.T) {
	portA, closeA := listenOnFreePort(t)
	defer closeA()
	portB, closeB := listenOnFreePort(t)
	defer closeB()

	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = true
	cfg.SmartScanThreshold = 2
	cfg.PresetPortRange = "1-1"
	cfg.PresetExtraPorts = []int{portA, portB}
	cfg.WebPorts = nil
	cfg.DirectoryScanEnabled = false
	c := newController(cfg)

	target, err := recontypes.NewScanTarget("127.0.0.1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	result := c.Run(ctx, target, AllLayers())

	require.Equal(t, recontypes.StatusCompleted, result.Status)
	// Neither listener is an HTTP candidate at all (no matching port or
	// banner signal), which the escalation predicate must treat the same
	// as "checked and found no HTTP": escalate to the full sweep.
	assert.Equal(t, 65535, result.TotalPortsScanned)
}

func TestPortsWithoutConfirmedHTTP_ExcludesConfirmed(t *testing.T) {
	result := recontypes.NewScanResult(recontypes.ScanTarget{IP: "127.0.0.1"})
	result.SetOpenPorts([]recontypes.PortInfo{
		recontypes.NewOpenPort(80),
		recontypes.NewOpenPort(443),
	})
	result.AddHTTPService(recontypes.NewHTTPInfo("http://127.0.0.1:80/", false))

	remaining := portsWithoutConfirmedHTTP(result)
	require.Len(t, remaining, 1)
	assert.Equal(t, 443, remaining[0].Port)
}
