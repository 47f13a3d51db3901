package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pentora-ai/reconcore/pkg/bannergrabber"
	"github.com/pentora-ai/reconcore/pkg/batch"
	"github.com/pentora-ai/reconcore/pkg/config"
	"github.com/pentora-ai/reconcore/pkg/controller"
	"github.com/pentora-ai/reconcore/pkg/dirprober"
	"github.com/pentora-ai/reconcore/pkg/event"
	"github.com/pentora-ai/reconcore/pkg/httpfingerprinter"
	"github.com/pentora-ai/reconcore/pkg/netutil"
	"github.com/pentora-ai/reconcore/pkg/output"
	"github.com/pentora-ai/reconcore/pkg/output/subscribers"
	"github.com/pentora-ai/reconcore/pkg/portdiscoverer"
	"github.com/pentora-ai/reconcore/pkg/reconout"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
	"github.com/pentora-ai/reconcore/pkg/sweephelper"
)

var (
	scanPorts       string
	scanOutput      string
	scanProgress    bool
	scanCheckHelper bool
)

// NewScanCmd defines the 'scan' subcommand: resolve targets, wire the
// four-layer pipeline, run the batch executor, and render each result.
func NewScanCmd(manager *config.Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [targets...]",
		Short: "Scan one or more targets for open ports, HTTP services, and admin interfaces",
		Long:  "scan accepts IPv4 addresses, CIDR ranges, and IP ranges (a.b.c.d-e), discovers open ports, fingerprints any HTTP services it finds, and probes each for exposed admin interfaces.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := manager.Get()
			sweepRunner := sweephelper.NewRunner(cfg.Scan.RustscanPath, logger)

			if scanCheckHelper {
				return printDiagnosis(cmd, sweepRunner)
			}

			if len(args) == 0 {
				return fmt.Errorf("scan requires at least one target")
			}

			targets, err := resolveTargets(args, scanPorts)
			if err != nil {
				return err
			}

			format := reconout.Format(scanOutput)

			bus := event.New()
			if scanProgress {
				subscribeProgress(bus)
			}

			ctrl := controller.New(
				cfg.Scan,
				portdiscoverer.New(cfg.Scan, sweepRunner, logger),
				bannergrabber.New(cfg.Scan, logger),
				httpfingerprinter.New(cfg.Scan, logger),
				dirprober.New(cfg.Scan, logger),
				bus,
				logger,
			)
			exec := batch.New(ctrl, cfg.Scan, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results := exec.RunStream(ctx, targets, controller.AllLayers())
			exitCode := 0
			for result := range results {
				if result.Status == recontypes.StatusFailed {
					exitCode = 1
				}
				if err := reconout.Render(cmd.OutOrStdout(), result, format); err != nil {
					return err
				}
			}
			if exitCode != 0 {
				return fmt.Errorf("one or more targets failed to scan")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "Explicit ports to scan (e.g. '22,80,443'); disables smart-scan escalation")
	cmd.Flags().StringVarP(&scanOutput, "output", "o", "text", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&scanProgress, "progress", false, "Stream live progress events to stderr")
	cmd.Flags().BoolVar(&scanCheckHelper, "check-helper", false, "Report the fast-sweep helper binary's availability and exit")

	return cmd
}

// resolveTargets expands CIDR/range notation in args into individual IPv4
// targets and attaches an explicit port list, parsed once, to every one of
// them.
func resolveTargets(args []string, portsFlag string) ([]recontypes.ScanTarget, error) {
	var explicitPorts []int
	if portsFlag != "" {
		parsed, err := netutil.ParsePortString(portsFlag)
		if err != nil {
			return nil, fmt.Errorf("parsing --ports: %w", err)
		}
		explicitPorts = parsed
	}

	ips := netutil.ParseAndExpandTargets(args)
	targets := make([]recontypes.ScanTarget, 0, len(ips))
	for _, ip := range ips {
		target, err := recontypes.NewScanTarget(ip, explicitPorts)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func printDiagnosis(cmd *cobra.Command, runner *sweephelper.Runner) error {
	d := runner.Diagnose(context.Background())
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "available:        %v\n", d.Available)
	if d.BinaryPath != "" {
		fmt.Fprintf(w, "binary_path:      %s\n", d.BinaryPath)
	}
	if d.Version != "" {
		fmt.Fprintf(w, "version:          %s\n", d.Version)
		fmt.Fprintf(w, "meets_min_version: %v\n", d.MeetsMinVersion)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(w, "suggestion:       %s\n", d.Suggestion)
	}
	if d.Error != "" {
		fmt.Fprintf(w, "error:            %s\n", d.Error)
	}
	return nil
}

// subscribeProgress wires the controller's event.ScanProgress notifications
// onto an output.OutputEventStream with a DiagnosticSubscriber writing to
// stderr, so --progress reuses the same rendering path as diagnostic
// chatter rather than a bespoke printer.
func subscribeProgress(bus *event.Bus) {
	stream := output.NewOutputEventStream()
	stream.Subscribe(subscribers.NewDiagnosticSubscriber(output.LevelVerbose, os.Stderr))

	bus.Subscribe(controller.ProgressEventName, func(_ context.Context, progress event.ScanProgress) {
		stream.Emit(output.NewScanProgressEvent(output.LevelVerbose, progress))
	})
}
