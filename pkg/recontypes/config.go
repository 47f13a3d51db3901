package recontypes

import "time"

// ScanConfig is the process-wide tunable set. Every component accepts one
// by reference and never mutates it; a fresh ScanConfig is validated once
// at load time (see pkg/config) and never again.
type ScanConfig struct {
	PresetPortRange    string `koanf:"preset_port_range" validate:"required"`
	PresetExtraPorts   []int  `koanf:"preset_extra_ports" validate:"dive,gte=1,lte=65535"`
	WebPorts           []int  `koanf:"web_ports" validate:"dive,gte=1,lte=65535"`
	BannerHTTPNudgePorts []int `koanf:"banner_http_nudge_ports" validate:"dive,gte=1,lte=65535"`

	SmartScanEnabled   bool `koanf:"smart_scan_enabled"`
	SmartScanThreshold int  `koanf:"smart_scan_threshold" validate:"gte=0"`

	SweepTimeoutMS int `koanf:"sweep_timeout_ms" validate:"gt=0"`
	SweepBatchSize int `koanf:"sweep_batch_size" validate:"gt=0"`
	SweepTries     int `koanf:"sweep_tries" validate:"gte=1"`
	SweepUlimit    int `koanf:"sweep_ulimit" validate:"gt=0"`
	// RustscanPath overrides the platform-specific bin/ resolution order
	// with an explicit path to the fast-sweep helper binary.
	RustscanPath string `koanf:"rustscan_path"`

	BannerTimeoutSeconds int `koanf:"banner_timeout_s" validate:"gt=0"`
	BannerMaxBytes       int `koanf:"banner_max_bytes" validate:"gt=0"`

	HTTPTimeoutSeconds int `koanf:"http_timeout_s" validate:"gt=0"`
	// HTTPMaxRedirects is carried for wire compatibility with the
	// original config surface. Unused: HTTPFingerprinter never follows
	// redirects, it only reports the Location header.
	HTTPMaxRedirects int    `koanf:"http_max_redirects"`
	HTTPUserAgent    string `koanf:"http_user_agent" validate:"required"`

	DirectoryScanEnabled  bool `koanf:"directory_scan_enabled"`
	DirectoryConcurrency  int  `koanf:"directory_concurrency" validate:"gt=0"`
	DirectoryTimeoutSeconds int `koanf:"directory_timeout_s" validate:"gt=0"`

	MaxConcurrentTargets int `koanf:"max_concurrent_targets" validate:"gt=0"`
}

// BannerTimeout returns BannerTimeoutSeconds as a time.Duration.
func (c ScanConfig) BannerTimeout() time.Duration {
	return time.Duration(c.BannerTimeoutSeconds) * time.Second
}

// HTTPTimeout returns HTTPTimeoutSeconds as a time.Duration.
func (c ScanConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// DirectoryTimeout returns DirectoryTimeoutSeconds as a time.Duration.
func (c ScanConfig) DirectoryTimeout() time.Duration {
	return time.Duration(c.DirectoryTimeoutSeconds) * time.Second
}

// SweepTimeout returns SweepTimeoutMS as a time.Duration.
func (c ScanConfig) SweepTimeout() time.Duration {
	return time.Duration(c.SweepTimeoutMS) * time.Millisecond
}

// DefaultScanConfig mirrors the documented External Interfaces defaults
// (preset range, extra ports spanning databases/VPN/VNC/remote-admin/C2,
// web extras, LDAP/Kerberos, SIP) plus reasonable timeouts.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		PresetPortRange: "1-1000",
		PresetExtraPorts: concatInts(
			[]int{1433, 1521, 3306, 5432, 6379, 27017, 5984, 7000, 7001, 9200, 9300},
			[]int{8000, 8001, 8008, 8081, 8082, 8888, 9000, 9090, 9999},
			[]int{500, 1194, 1723, 4500, 51820},
			rangeInts(5800, 5810), rangeInts(5900, 5910),
			[]int{5938, 6129, 6130, 6131, 6132, 6133, 6568, 6783, 6784, 6785, 8040, 8041, 8200},
			[]int{666, 1080, 1234, 1243, 1337, 2222, 3000, 4444, 6666, 6667, 8080, 9050, 12345, 31337, 50050},
			[]int{88, 161, 162, 389, 464, 636, 749, 750, 1812, 1813},
			[]int{5060, 5061},
		),
		WebPorts:             []int{3000, 4000, 5000, 8000, 8081, 8082, 9000, 9090},
		BannerHTTPNudgePorts: []int{80, 443, 8080, 8443, 8000, 8081, 8082, 9000, 9090, 3000, 4000, 5000},

		SmartScanEnabled:   true,
		SmartScanThreshold: 3,

		SweepTimeoutMS: 2000,
		SweepBatchSize: 4500,
		SweepTries:     1,
		SweepUlimit:    5000,

		BannerTimeoutSeconds: 5,
		BannerMaxBytes:       2048,

		HTTPTimeoutSeconds: 8,
		HTTPMaxRedirects:   0,
		HTTPUserAgent:      "reconcore/1.0",

		DirectoryScanEnabled:    true,
		DirectoryConcurrency:    10,
		DirectoryTimeoutSeconds: 5,

		MaxConcurrentTargets: 10,
	}
}

func rangeInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

func concatInts(groups ...[]int) []int {
	var out []int
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
