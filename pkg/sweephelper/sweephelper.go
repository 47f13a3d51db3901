// Package sweephelper drives the external fast-sweep binary (an
// rustscan-like tool) and falls back to an in-process TCP connect scan
// when no binary is available or it misbehaves.
package sweephelper

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
	"github.com/pentora-ai/reconcore/pkg/paths"
	"github.com/pentora-ai/reconcore/pkg/reconerr"
	"github.com/rs/zerolog"
)

// MinSupportedVersion is the oldest helper binary version this package
// knows how to drive. Older binaries are still invoked (greppable output
// has been stable across releases) but a version below this is logged as
// a warning rather than treated as fatal.
var MinSupportedVersion = semver.MustParse("2.0.0")

// greppableLine matches a single "<ip> -> [p1,p2,...]" result line emitted
// by the helper's -g/--greppable output mode.
var greppableLine = regexp.MustCompile(`^(\S+)\s*->\s*\[([^\]]*)\]$`)

// Runner drives the external helper binary, falling back to an in-process
// scan when the binary cannot be found or run.
type Runner struct {
	BinaryPath string
	Logger     zerolog.Logger
}

// NewRunner resolves the helper binary via the bundled bin/ directory,
// falling back to a PATH lookup by name. binaryPathOverride, when
// non-empty, is used verbatim instead (an explicit configuration value).
func NewRunner(binaryPathOverride string, logger zerolog.Logger) *Runner {
	path := binaryPathOverride
	if path == "" {
		path = paths.ResolveSweepHelperPath()
	}
	if path == "" {
		if name := paths.SweepHelperBinaryName(); name != "" {
			if resolved, err := exec.LookPath(strings.TrimSuffix(name, ".exe")); err == nil {
				path = resolved
			}
		}
	}
	return &Runner{BinaryPath: path, Logger: logger}
}

// Available reports whether a helper binary was resolved.
func (r *Runner) Available() bool {
	return r.BinaryPath != ""
}

// VerifyOptions configures Runner.Verify.
type VerifyOptions struct {
	Timeout time.Duration
}

// Verify runs the helper's --version flag and parses the result. It
// returns reconerr.HelperUnavailable when the binary can't be resolved or
// executed, and reconerr.HelperMalformedOutput when its version string
// can't be parsed as semver.
func (r *Runner) Verify(ctx context.Context, opts VerifyOptions) (*semver.Version, error) {
	if !r.Available() {
		return nil, reconerr.New(reconerr.HelperUnavailable, "sweep helper binary not found")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.BinaryPath, "--version")
	out, err := cmd.Output()
	if err != nil {
		return nil, reconerr.Wrap(reconerr.HelperUnavailable, err)
	}

	version := extractSemverToken(string(out))
	if version == "" {
		return nil, reconerr.New(reconerr.HelperMalformedOutput, "could not parse version from %q", strings.TrimSpace(string(out)))
	}
	parsed, err := semver.NewVersion(version)
	if err != nil {
		return nil, reconerr.Wrap(reconerr.HelperMalformedOutput, err)
	}
	if parsed.LessThan(MinSupportedVersion) {
		r.Logger.Warn().Str("version", parsed.String()).Str("min_supported", MinSupportedVersion.String()).
			Msg("sweep helper binary is older than the minimum supported version")
	}
	return parsed, nil
}

var semverTokenRegexp = regexp.MustCompile(`\d+\.\d+\.\d+`)

func extractSemverToken(s string) string {
	return semverTokenRegexp.FindString(s)
}

// SweepOptions configures a single-target fast sweep invocation.
type SweepOptions struct {
	TargetIP   string
	Ports      []int
	PortRange  string // alternative to Ports, e.g. "1-1000"
	Timeout    time.Duration
	BatchSize  int
	Tries      int
	Ulimit     int
}

// BuildArgs renders the helper command-line arguments for opts, matching
// the upstream tool's flag names: -a target, -t timeout(ms), -b batch
// size, --tries, --ulimit, -g greppable output, --scan-order serial, and
// -p/-r for an explicit port list or range.
func BuildArgs(opts SweepOptions) []string {
	args := []string{"-a", opts.TargetIP}
	if opts.Timeout > 0 {
		args = append(args, "-t", strconv.FormatInt(opts.Timeout.Milliseconds(), 10))
	}
	if opts.BatchSize > 0 {
		args = append(args, "-b", strconv.Itoa(opts.BatchSize))
	}
	if opts.Tries > 0 {
		args = append(args, "--tries", strconv.Itoa(opts.Tries))
	}
	if opts.Ulimit > 0 {
		args = append(args, "--ulimit", strconv.Itoa(opts.Ulimit))
	}
	args = append(args, "-g", "--scan-order", "serial")

	switch {
	case len(opts.Ports) > 0:
		portStrs := make([]string, len(opts.Ports))
		for i, p := range opts.Ports {
			portStrs[i] = strconv.Itoa(p)
		}
		args = append(args, "-p", strings.Join(portStrs, ","))
	case opts.PortRange != "":
		args = append(args, "-r", opts.PortRange)
	}
	return args
}

// Sweep runs the helper binary against a single target and returns the
// open ports it reports. It returns reconerr.HelperUnavailable if the
// binary can't be resolved or fails to execute, and
// reconerr.HelperMalformedOutput if its stdout can't be parsed.
func (r *Runner) Sweep(ctx context.Context, opts SweepOptions) ([]int, error) {
	if !r.Available() {
		return nil, reconerr.New(reconerr.HelperUnavailable, "sweep helper binary not found")
	}

	lock := flock.New(r.BinaryPath + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err == nil && locked {
		defer lock.Unlock()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.BinaryPath, BuildArgs(opts)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.Logger.Debug().Str("stderr", stderr.String()).Err(err).Msg("sweep helper exited with an error")
		return nil, reconerr.Wrap(reconerr.HelperUnavailable, err)
	}

	ports, err := ParseGreppableOutput(stdout.String(), opts.TargetIP)
	if err != nil {
		return nil, err
	}
	return ports, nil
}

// ParseGreppableOutput parses the helper's "-g" greppable stdout into the
// list of ports reported open for targetIP. Lines for other targets (a
// batch invocation covering several hosts) are ignored. An empty result
// with no error is valid: it means the target answered on no ports.
func ParseGreppableOutput(output, targetIP string) ([]int, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	var ports []int
	matchedAnyLine := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		groups := greppableLine.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		matchedAnyLine = true
		if groups[1] != targetIP {
			continue
		}
		for _, portStr := range strings.Split(groups[2], ",") {
			portStr = strings.TrimSpace(portStr)
			if portStr == "" {
				continue
			}
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, reconerr.New(reconerr.HelperMalformedOutput, "malformed port %q in line %q", portStr, line)
			}
			ports = append(ports, port)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, reconerr.Wrap(reconerr.HelperMalformedOutput, err)
	}
	if !matchedAnyLine && strings.TrimSpace(output) != "" {
		return nil, reconerr.New(reconerr.HelperMalformedOutput, "no greppable result lines found in helper output")
	}
	return ports, nil
}

// InstallSuggestion returns a short platform-appropriate hint for getting
// the fast-sweep helper onto this machine, shown when Available() is
// false.
func InstallSuggestion() string {
	name := paths.SweepHelperBinaryName()
	if name == "" {
		return fmt.Sprintf("no bundled sweep helper is available for this platform; the in-process connect scanner will be used instead")
	}
	return fmt.Sprintf("place a %q binary under %s, or install the upstream tool and ensure it is on PATH", name, paths.SweepHelperBinDir())
}

// Diagnosis is a point-in-time report on the sweep helper's availability,
// surfaced by `scan --check-helper`. It never blocks a scan: Available=false
// just means the in-process connect-scan fallback will be used.
type Diagnosis struct {
	Available       bool
	BinaryPath      string
	Version         string
	MeetsMinVersion bool
	Suggestion      string
	Error           string
}

// Diagnose probes the resolved helper binary with Verify and summarizes
// the result. It never returns an error itself: failures are folded into
// the Diagnosis.Error field.
func (r *Runner) Diagnose(ctx context.Context) Diagnosis {
	d := Diagnosis{
		Available:  r.Available(),
		BinaryPath: r.BinaryPath,
	}
	if !d.Available {
		d.Suggestion = InstallSuggestion()
		return d
	}

	version, err := r.Verify(ctx, VerifyOptions{})
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Version = version.String()
	d.MeetsMinVersion = !version.LessThan(MinSupportedVersion)
	return d
}
