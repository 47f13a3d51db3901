package portdiscoverer

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestDiscoverer_Discover_ConnectScanFallback(t *testing.T) {
	port, closeFn := listenOnFreePort(t)
	defer closeFn()

	d := New(recontypes.DefaultScanConfig(), nil, zerolog.Nop())

	// Include the open port plus a handful of almost-certainly-closed ones.
	candidate := []int{port, 1, 2, 3}
	result, err := d.Discover(context.Background(), "127.0.0.1", candidate)
	require.NoError(t, err)

	ports := make([]int, 0, len(result))
	for _, p := range result {
		ports = append(ports, p.Port)
		assert.Equal(t, recontypes.PortStateOpen, p.State)
		assert.Equal(t, recontypes.ProtocolTCP, p.Protocol)
	}
	assert.Contains(t, ports, port)
}

func TestDiscoverer_Discover_EmptyIsNotError(t *testing.T) {
	d := New(recontypes.DefaultScanConfig(), nil, zerolog.Nop())
	result, err := d.Discover(context.Background(), "203.0.113.1", []int{1})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestDiscoverer_DefaultPorts_UnionsPresetAndExtras(t *testing.T) {
	cfg := recontypes.DefaultScanConfig()
	cfg.PresetPortRange = "1-3"
	cfg.PresetExtraPorts = []int{3, 9999}

	d := New(cfg, nil, zerolog.Nop())
	ports := d.DefaultPorts()

	assert.Equal(t, []int{1, 2, 3, 9999}, ports)
}

func TestToPortInfos_DropsOutOfRange(t *testing.T) {
	infos := toPortInfos([]int{0, 22, 65536, 80})
	ports := make([]int, len(infos))
	for i, p := range infos {
		ports[i] = p.Port
	}
	assert.Equal(t, []int{22, 80}, ports)
}
