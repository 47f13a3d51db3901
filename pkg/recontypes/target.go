// Package recontypes holds the data model shared by every stage of the
// recon pipeline: targets, per-layer findings, the aggregate scan result,
// and the process-wide tunable configuration.
package recontypes

import (
	"fmt"
	"net"
	"sort"
)

// ScanTarget is an IPv4 address with an optional explicit port list. Two
// targets are value-equal when their IP and sorted port lists match.
type ScanTarget struct {
	IP    string `json:"ip" validate:"required,ip4_addr"`
	Ports []int  `json:"ports,omitempty" validate:"omitempty,dive,gte=1,lte=65535"`
}

// NewScanTarget validates ip and normalizes ports (sorted, de-duplicated)
// before returning a ScanTarget.
func NewScanTarget(ip string, ports []int) (ScanTarget, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return ScanTarget{}, fmt.Errorf("recontypes: %q is not a valid IPv4 address", ip)
	}

	var normalized []int
	if len(ports) > 0 {
		seen := make(map[int]struct{}, len(ports))
		for _, p := range ports {
			if p < 1 || p > 65535 {
				return ScanTarget{}, fmt.Errorf("recontypes: port %d out of range 1-65535", p)
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			normalized = append(normalized, p)
		}
		sort.Ints(normalized)
	}

	return ScanTarget{IP: parsed.To4().String(), Ports: normalized}, nil
}

// HasExplicitPorts reports whether the caller pinned a port list, which
// disables smart-scan escalation for this target.
func (t ScanTarget) HasExplicitPorts() bool {
	return len(t.Ports) > 0
}

func (t ScanTarget) String() string {
	if len(t.Ports) == 0 {
		return t.IP
	}
	return fmt.Sprintf("%s(%d ports)", t.IP, len(t.Ports))
}
