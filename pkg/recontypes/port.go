package recontypes

import "sort"

const (
	PortStateOpen     = "open"
	PortStateClosed   = "closed"
	PortStateFiltered = "filtered"

	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

// PortInfo describes one discovered port, progressively enriched as it
// passes from PortDiscoverer through BannerGrabber. Only open ports are
// ever constructed by this pipeline: closed/filtered collapse to "not
// reported" per the discoverer's connect-scan fallback.
type PortInfo struct {
	Port       int     `json:"port"`
	Protocol   string  `json:"protocol"`
	State      string  `json:"state"`
	Service    string  `json:"service,omitempty"`
	Version    string  `json:"version,omitempty"`
	Banner     string  `json:"banner,omitempty"`
	Confidence float64 `json:"confidence"`
}

// NewOpenPort constructs the minimal PortInfo PortDiscoverer emits before
// any banner enrichment has run.
func NewOpenPort(port int) PortInfo {
	return PortInfo{Port: port, Protocol: ProtocolTCP, State: PortStateOpen}
}

// SortPortInfos sorts s ascending by port number in place, the ordering
// every layer-end aggregation step must leave open_ports in.
func SortPortInfos(s []PortInfo) {
	sort.Slice(s, func(i, j int) bool { return s[i].Port < s[j].Port })
}

// DedupePortInfos keeps the last occurrence of each port number, sorted
// ascending. Used when a full sweep's results replace a preset sweep's.
func DedupePortInfos(s []PortInfo) []PortInfo {
	byPort := make(map[int]PortInfo, len(s))
	for _, p := range s {
		byPort[p.Port] = p
	}
	out := make([]PortInfo, 0, len(byPort))
	for _, p := range byPort {
		out = append(out, p)
	}
	SortPortInfos(out)
	return out
}
