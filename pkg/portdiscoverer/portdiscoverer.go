// Package portdiscoverer implements Layer 1 of the recon pipeline: given a
// target IP and a port set, produce the list of open TCP ports. It prefers
// an external fast-sweep helper binary and falls back to an in-process TCP
// connect scan when the helper is absent or misbehaves.
package portdiscoverer

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/netutil"
	"github.com/pentora-ai/reconcore/pkg/reconerr"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
	"github.com/pentora-ai/reconcore/pkg/sweephelper"
)

// connectScanConcurrency bounds in-flight TCP connect probes per target,
// per §5's per-layer fan-out model.
const connectScanConcurrency = 50

// connectProbeTimeout is the per-port timeout for the in-process fallback.
const connectProbeTimeout = 3 * time.Second

// Discoverer is Layer 1's PortDiscoverer component.
type Discoverer struct {
	Config recontypes.ScanConfig
	Sweep  *sweephelper.Runner
	Logger zerolog.Logger
}

// New builds a Discoverer. sweep may be nil, in which case only the
// in-process connect-scan fallback is ever used.
func New(cfg recontypes.ScanConfig, sweep *sweephelper.Runner, logger zerolog.Logger) *Discoverer {
	return &Discoverer{Config: cfg, Sweep: sweep, Logger: logger}
}

// DefaultPorts resolves the preset sweep's working set: expand(preset_port_range)
// unioned with preset_extra_ports, de-duplicated and sorted.
func (d *Discoverer) DefaultPorts() []int {
	expanded, err := netutil.ParsePortString(d.Config.PresetPortRange)
	if err != nil {
		d.Logger.Warn().Err(err).Str("preset_port_range", d.Config.PresetPortRange).
			Msg("could not parse preset port range, falling back to extras only")
		expanded = nil
	}
	return unionSortedPorts(expanded, d.Config.PresetExtraPorts)
}

// Discover scans exactly ports on target. It tries the external helper
// first (if available) and falls back to the in-process connect-scan on
// any helper failure; per §4.1, an empty result is not itself an error.
func (d *Discoverer) Discover(ctx context.Context, ip string, ports []int) ([]recontypes.PortInfo, error) {
	if d.Sweep != nil && d.Sweep.Available() {
		open, err := d.Sweep.Sweep(ctx, sweephelper.SweepOptions{
			TargetIP:  ip,
			Ports:     ports,
			Timeout:   d.Config.SweepTimeout(),
			BatchSize: d.Config.SweepBatchSize,
			Tries:     d.Config.SweepTries,
			Ulimit:    d.Config.SweepUlimit,
		})
		if err == nil {
			return toPortInfos(open), nil
		}
		d.Logger.Debug().Err(err).Str("kind", string(reconerr.KindOf(err))).
			Msg("sweep helper failed, falling back to in-process connect scan")
	}
	return d.connectScan(ctx, ip, ports), nil
}

// DiscoverFullRange scans the entire 1-65535 range, the escalation sweep.
// The helper is driven with a compact "-r 1-65535" argument rather than an
// enumerated port list; the in-process fallback simply enumerates the range.
func (d *Discoverer) DiscoverFullRange(ctx context.Context, ip string) ([]recontypes.PortInfo, error) {
	if d.Sweep != nil && d.Sweep.Available() {
		open, err := d.Sweep.Sweep(ctx, sweephelper.SweepOptions{
			TargetIP:  ip,
			PortRange: "1-65535",
			Timeout:   d.Config.SweepTimeout(),
			BatchSize: d.Config.SweepBatchSize,
			Tries:     d.Config.SweepTries,
			Ulimit:    d.Config.SweepUlimit,
		})
		if err == nil {
			return toPortInfos(open), nil
		}
		d.Logger.Debug().Err(err).Str("kind", string(reconerr.KindOf(err))).
			Msg("sweep helper failed on full range, falling back to in-process connect scan")
	}
	return d.connectScan(ctx, ip, fullRangePorts()), nil
}

// connectScan performs a bounded-concurrency TCP connect probe against each
// port in ports. A port is open iff the connect succeeds; any error or
// timeout collapses to "not reported" (no closed/filtered distinction).
func (d *Discoverer) connectScan(ctx context.Context, ip string, ports []int) []recontypes.PortInfo {
	sem := make(chan struct{}, connectScanConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var open []recontypes.PortInfo

	dialer := net.Dialer{Timeout: connectProbeTimeout}

	for _, port := range ports {
		select {
		case <-ctx.Done():
			wg.Wait()
			return finalizePorts(open)
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()

			address := net.JoinHostPort(ip, strconv.Itoa(p))
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				return
			}
			conn.Close()

			mu.Lock()
			open = append(open, recontypes.NewOpenPort(p))
			mu.Unlock()
		}(port)
	}
	wg.Wait()
	return finalizePorts(open)
}

func finalizePorts(ports []recontypes.PortInfo) []recontypes.PortInfo {
	recontypes.SortPortInfos(ports)
	return ports
}

func toPortInfos(ports []int) []recontypes.PortInfo {
	out := make([]recontypes.PortInfo, 0, len(ports))
	for _, p := range ports {
		if p < 1 || p > 65535 {
			continue
		}
		out = append(out, recontypes.NewOpenPort(p))
	}
	return finalizePorts(out)
}

func unionSortedPorts(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, group := range [][]int{a, b} {
		for _, p := range group {
			if p < 1 || p > 65535 {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

func fullRangePorts() []int {
	ports := make([]int, 65535)
	for i := range ports {
		ports[i] = i + 1
	}
	return ports
}
