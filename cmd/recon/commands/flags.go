package commands

import (
	"github.com/spf13/pflag"

	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// bindScanFlags registers one flag per recontypes.ScanConfig field, named
// after its koanf key so posflag.Provider maps it straight onto the
// config tree without a translation layer.
func bindScanFlags(flags *pflag.FlagSet) {
	d := recontypes.DefaultScanConfig()

	flags.String("scan.preset_port_range", d.PresetPortRange, "Preset sweep port range (e.g. '1-1000')")
	flags.IntSlice("scan.preset_extra_ports", d.PresetExtraPorts, "Extra ports always included in the preset sweep")
	flags.IntSlice("scan.web_ports", d.WebPorts, "Ports always treated as HTTP candidates")
	flags.IntSlice("scan.banner_http_nudge_ports", d.BannerHTTPNudgePorts, "Ports nudged with an HTTP GET during banner capture")

	flags.Bool("scan.smart_scan_enabled", d.SmartScanEnabled, "Escalate to a full 1-65535 sweep when the preset sweep finds too little")
	flags.Int("scan.smart_scan_threshold", d.SmartScanThreshold, "Open-port count below which smart-scan escalates unconditionally")

	flags.Int("scan.sweep_timeout_ms", d.SweepTimeoutMS, "Fast-sweep helper per-invocation timeout, in milliseconds")
	flags.Int("scan.sweep_batch_size", d.SweepBatchSize, "Fast-sweep helper batch size")
	flags.Int("scan.sweep_tries", d.SweepTries, "Fast-sweep helper retry count")
	flags.Int("scan.sweep_ulimit", d.SweepUlimit, "Fast-sweep helper file-descriptor ulimit")
	flags.String("scan.rustscan_path", d.RustscanPath, "Explicit path to the fast-sweep helper binary, overriding auto-resolution")

	flags.Int("scan.banner_timeout_s", d.BannerTimeoutSeconds, "Per-port banner capture timeout, in seconds")
	flags.Int("scan.banner_max_bytes", d.BannerMaxBytes, "Maximum bytes read per banner capture")

	flags.Int("scan.http_timeout_s", d.HTTPTimeoutSeconds, "Per-request HTTP fingerprint timeout, in seconds")
	flags.Int("scan.http_max_redirects", d.HTTPMaxRedirects, "Carried for wire compatibility; HTTPFingerprinter never follows redirects")
	flags.String("scan.http_user_agent", d.HTTPUserAgent, "User-Agent sent on HTTP fingerprint and directory-probe requests")

	flags.Bool("scan.directory_scan_enabled", d.DirectoryScanEnabled, "Enable the admin-directory probing layer")
	flags.Int("scan.directory_concurrency", d.DirectoryConcurrency, "Max in-flight directory probes per HTTP endpoint")
	flags.Int("scan.directory_timeout_s", d.DirectoryTimeoutSeconds, "Per-request directory probe timeout, in seconds")

	flags.Int("scan.max_concurrent_targets", d.MaxConcurrentTargets, "Max targets scanned concurrently in a batch run")
}
