package batch

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pentora-ai/reconcore/pkg/bannergrabber"
	"github.com/pentora-ai/reconcore/pkg/controller"
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

func newExecutor(cfg recontypes.ScanConfig) *Executor {
	logger := zerolog.Nop()
	ctrl := controller.New(
		cfg,
		portdiscoverer.New(cfg, nil, logger),
		bannergrabber.New(cfg, logger),
		httpfingerprinter.New(cfg, logger),
		dirprober.New(cfg, logger),
		event.New(),
		logger,
	)
	return New(ctrl, cfg, logger)
}

func TestExecutor_Run_ScansAllTargetsInOrder(t *testing.T) {
	portA, closeA := listenOnFreePort(t)
	defer closeA()
	portB, closeB := listenOnFreePort(t)
	defer closeB()

	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = false
	cfg.MaxConcurrentTargets = 2
	e := newExecutor(cfg)

	targetA, err := recontypes.NewScanTarget("127.0.0.1", []int{portA})
	require.NoError(t, err)
	targetB, err := recontypes.NewScanTarget("127.0.0.1", []int{portB})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results := e.Run(ctx, []recontypes.ScanTarget{targetA, targetB}, controller.AllLayers())

	require.Len(t, results, 2)
	assert.Equal(t, recontypes.StatusCompleted, results[0].Status)
	assert.Equal(t, recontypes.StatusCompleted, results[1].Status)
	require.Len(t, results[0].OpenPorts, 1)
	assert.Equal(t, portA, results[0].OpenPorts[0].Port)
	require.Len(t, results[1].OpenPorts, 1)
	assert.Equal(t, portB, results[1].OpenPorts[0].Port)
}

func TestExecutor_RunStream_DeliversEveryResult(t *testing.T) {
	cfg := recontypes.DefaultScanConfig()
	cfg.SmartScanEnabled = false
	cfg.MaxConcurrentTargets = 4
	e := newExecutor(cfg)

	var targets []recontypes.ScanTarget
	for i := 0; i < 3; i++ {
		target, err := recontypes.NewScanTarget("203.0.113.1", []int{1})
		require.NoError(t, err)
		targets = append(targets, target)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := e.RunStream(ctx, targets, controller.AllLayers())

	count := 0
	for result := range out {
		require.Equal(t, recontypes.StatusCompleted, result.Status)
		count++
	}
	assert.Equal(t, 3, count)
}
