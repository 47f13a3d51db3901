package recontypes

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanResult is the aggregator: constructed once per target, owned by the
// controller running that target, and append-mutated by each layer as it
// completes. Consumers must only read it once Status is completed or
// failed.
type ScanResult struct {
	ScanID            string          `json:"scan_id"`
	Target            ScanTarget      `json:"target"`
	Status            string          `json:"status"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           *time.Time      `json:"end_time,omitempty"`
	Duration          *time.Duration  `json:"scan_duration,omitempty"`
	OpenPorts         []PortInfo      `json:"open_ports"`
	HTTPServices      []HTTPInfo      `json:"http_services"`
	AdminDirectories  []DirectoryInfo `json:"admin_directories"`
	TotalPortsScanned int             `json:"total_ports_scanned"`
	ErrorMessage      string          `json:"error_message,omitempty"`
}

// NewScanResult starts a pending ScanResult for target, assigning a fresh
// scan ID.
func NewScanResult(target ScanTarget) *ScanResult {
	return &ScanResult{
		ScanID:           uuid.NewString(),
		Target:           target,
		Status:           StatusPending,
		StartTime:        time.Now(),
		OpenPorts:        []PortInfo{},
		HTTPServices:     []HTTPInfo{},
		AdminDirectories: []DirectoryInfo{},
	}
}

// Run transitions a pending result to running. No-op if already running.
func (r *ScanResult) Run() {
	if r.Status == StatusPending {
		r.Status = StatusRunning
	}
}

// SetOpenPorts replaces the open-port set with ports, enforcing invariants
// 1 and 2: every entry is state=open within 1..65535, unique by port,
// ascending. Used by the controller when a full sweep's results supersede
// a preset sweep's (escalation "replaces", never merges).
func (r *ScanResult) SetOpenPorts(ports []PortInfo) {
	valid := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		if p.Port < 1 || p.Port > 65535 {
			continue
		}
		p.State = PortStateOpen
		valid = append(valid, p)
	}
	r.OpenPorts = DedupePortInfos(valid)
}

// MergePortEnrichment updates OpenPorts in place with banner-grab results,
// matched by port number. Enrichments for ports not already present are
// ignored: BannerGrabber only enriches ports PortDiscoverer already found.
func (r *ScanResult) MergePortEnrichment(enriched []PortInfo) {
	byPort := make(map[int]PortInfo, len(enriched))
	for _, e := range enriched {
		byPort[e.Port] = e
	}
	for i, p := range r.OpenPorts {
		if e, ok := byPort[p.Port]; ok {
			r.OpenPorts[i] = e
		}
	}
}

// AddHTTPService appends one confirmed HTTP endpoint.
func (r *ScanResult) AddHTTPService(h HTTPInfo) {
	r.HTTPServices = append(r.HTTPServices, h)
}

// AddAdminDirectory appends one meaningful directory-probe response.
func (r *ScanResult) AddAdminDirectory(d DirectoryInfo) {
	r.AdminDirectories = append(r.AdminDirectories, d)
}

// Complete marks the result terminal. Invariant 6: a result already
// completed never transitions to failed; Complete is a no-op in that case.
func (r *ScanResult) Complete(status string, errMessage string) {
	if r.Status == StatusCompleted {
		return
	}
	now := time.Now()
	r.EndTime = &now
	d := now.Sub(r.StartTime)
	r.Duration = &d
	r.Status = status
	r.ErrorMessage = errMessage
}

// AdminInterfaceCount returns how many AdminDirectories have IsAdmin set,
// the JSON summary block's admin_interfaces_count.
func (r *ScanResult) AdminInterfaceCount() int {
	n := 0
	for _, d := range r.AdminDirectories {
		if d.IsAdmin {
			n++
		}
	}
	return n
}
