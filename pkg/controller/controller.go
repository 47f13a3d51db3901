// Package controller implements the SmartController: it orchestrates
// PortDiscoverer, BannerGrabber, HTTPFingerprinter, and DirectoryProber for
// a single target, runs the smart-escalation predicate between Layer 1 and
// Layer 2, and emits progress events as it goes.
package controller

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/bannergrabber"
	"github.com/pentora-ai/reconcore/pkg/dirprober"
	"github.com/pentora-ai/reconcore/pkg/event"
	"github.com/pentora-ai/reconcore/pkg/httpfingerprinter"
	"github.com/pentora-ai/reconcore/pkg/portdiscoverer"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// ProgressEventName is the event.Bus topic Controller publishes progress on.
const ProgressEventName = "scan.progress"

// Layers selects which stages a caller wants run beyond port discovery.
// Downstream layers are skipped automatically when their input is empty,
// independent of these flags.
type Layers struct {
	HTTPDetection bool
	WebProbe      bool
}

// AllLayers runs every stage, the default for a standalone scan.
func AllLayers() Layers {
	return Layers{HTTPDetection: true, WebProbe: true}
}

// Controller is the SmartController component.
type Controller struct {
	Config   recontypes.ScanConfig
	Discover *portdiscoverer.Discoverer
	Banner   *bannergrabber.Grabber
	HTTP     *httpfingerprinter.Fingerprinter
	Dir      *dirprober.Prober
	Bus      *event.Bus
	Logger   zerolog.Logger
}

// New wires a Controller out of its four layer components.
func New(cfg recontypes.ScanConfig, discover *portdiscoverer.Discoverer, banner *bannergrabber.Grabber, http *httpfingerprinter.Fingerprinter, dir *dirprober.Prober, bus *event.Bus, logger zerolog.Logger) *Controller {
	return &Controller{
		Config:   cfg,
		Discover: discover,
		Banner:   banner,
		HTTP:     http,
		Dir:      dir,
		Bus:      bus,
		Logger:   logger,
	}
}

// Run executes the full pipeline for one target and returns its terminal
// ScanResult. Run never panics to the caller: any internal failure is
// caught at this boundary and reflected as Status=failed with partial
// findings preserved.
func (c *Controller) Run(ctx context.Context, target recontypes.ScanTarget, layers Layers) (result *recontypes.ScanResult) {
	result = recontypes.NewScanResult(target)
	result.Run()

	defer func() {
		if r := recover(); r != nil {
			c.Logger.Error().Interface("panic", r).Str("scan_id", result.ScanID).Msg("controller recovered from panic")
			result.Complete(recontypes.StatusFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := c.runLayer1(ctx, result); err != nil {
		result.Complete(recontypes.StatusFailed, err.Error())
		return result
	}

	if layers.HTTPDetection && len(result.OpenPorts) > 0 {
		c.runLayer2(ctx, result)
	}

	if layers.WebProbe && len(result.HTTPServices) > 0 {
		c.runLayer3(ctx, result)
	}

	result.Complete(recontypes.StatusCompleted, "")
	c.emit(result, "completed", "scan complete", 100)
	return result
}

// runLayer1 resolves the working port set, runs the preset sweep, applies
// the escalation predicate, and enriches the final open-port set with
// banners. TotalPortsScanned records how many candidate ports this target's
// Layer 1 actually considered.
func (c *Controller) runLayer1(ctx context.Context, result *recontypes.ScanResult) error {
	c.emit(result, "l1_preset", "starting preset port sweep", 5)

	explicit := result.Target.HasExplicitPorts()
	workingSet := result.Target.Ports
	if !explicit {
		workingSet = c.Discover.DefaultPorts()
	}
	result.TotalPortsScanned = len(workingSet)

	presetPorts, err := c.Discover.Discover(ctx, result.Target.IP, workingSet)
	if err != nil {
		return err
	}
	result.SetOpenPorts(presetPorts)
	c.emit(result, "l1_preset", fmt.Sprintf("preset sweep found %d open ports", len(presetPorts)), 20)

	if explicit || !c.Config.SmartScanEnabled {
		return c.enrichBanners(ctx, result)
	}

	if len(presetPorts) < c.Config.SmartScanThreshold {
		return c.escalateFullSweep(ctx, result)
	}

	c.emit(result, "l2_web_check", "checking web candidates before committing to preset result", 25)
	webCandidates := c.HTTP.Candidates(presetPorts)
	webFindings := c.HTTP.Fingerprint(ctx, result.Target.IP, webCandidates)
	if len(webFindings) == 0 {
		// No web-candidate ports, or none of them answered HTTP: either way
		// the web check found nothing, so escalate to the full sweep.
		return c.escalateFullSweep(ctx, result)
	}

	// At least one candidate speaks HTTP: the full sweep is skipped and
	// these findings are kept so Layer 2 doesn't re-probe them.
	if err := c.enrichBanners(ctx, result); err != nil {
		return err
	}
	for _, h := range webFindings {
		result.AddHTTPService(h)
	}
	return nil
}

// escalateFullSweep replaces the open-port set with the 1-65535 sweep's
// result (escalation "replaces", never merges, per the resolved ambiguity
// in this pipeline's design notes) and re-enriches banners against the
// full set.
func (c *Controller) escalateFullSweep(ctx context.Context, result *recontypes.ScanResult) error {
	c.emit(result, "l1_full", "escalating to full 1-65535 sweep", 30)
	result.TotalPortsScanned = 65535

	fullPorts, err := c.Discover.DiscoverFullRange(ctx, result.Target.IP)
	if err != nil {
		return err
	}
	result.SetOpenPorts(fullPorts)
	c.emit(result, "l1_full", fmt.Sprintf("full sweep found %d open ports", len(fullPorts)), 45)
	return c.enrichBanners(ctx, result)
}

func (c *Controller) enrichBanners(ctx context.Context, result *recontypes.ScanResult) error {
	if len(result.OpenPorts) == 0 {
		return nil
	}
	c.emit(result, "l1_banner", "grabbing banners", 50)
	enriched := c.Banner.Grab(ctx, result.Target.IP, result.OpenPorts)
	result.MergePortEnrichment(enriched)
	c.emit(result, "l1_banner", "banner capture complete", 60)
	return nil
}

// runLayer2 fingerprints the ports that were not already confirmed while
// checking web candidates during the escalation predicate.
func (c *Controller) runLayer2(ctx context.Context, result *recontypes.ScanResult) {
	c.emit(result, "l2", "fingerprinting HTTP candidates", 65)

	remaining := portsWithoutConfirmedHTTP(result)
	if len(remaining) > 0 {
		for _, h := range c.HTTP.Fingerprint(ctx, result.Target.IP, remaining) {
			result.AddHTTPService(h)
		}
	}
	c.emit(result, "l2", fmt.Sprintf("found %d HTTP services", len(result.HTTPServices)), 80)
}

func (c *Controller) runLayer3(ctx context.Context, result *recontypes.ScanResult) {
	c.emit(result, "l3", "probing directories", 85)
	for _, endpoint := range result.HTTPServices {
		for _, d := range c.Dir.Probe(ctx, endpoint) {
			result.AddAdminDirectory(d)
		}
	}
	c.emit(result, "l3", fmt.Sprintf("found %d directories", len(result.AdminDirectories)), 95)
}

// portsWithoutConfirmedHTTP returns the open ports that don't already have
// an HTTPInfo entry, so Layer 2 never double-probes ports the escalation
// predicate's web check already confirmed.
func portsWithoutConfirmedHTTP(result *recontypes.ScanResult) []recontypes.PortInfo {
	confirmed := make(map[int]struct{}, len(result.HTTPServices))
	for _, h := range result.HTTPServices {
		confirmed[h.Port()] = struct{}{}
	}
	var remaining []recontypes.PortInfo
	for _, p := range result.OpenPorts {
		if _, ok := confirmed[p.Port]; ok {
			continue
		}
		remaining = append(remaining, p)
	}
	return remaining
}

func (c *Controller) emit(result *recontypes.ScanResult, stage, message string, percent int) {
	if c.Bus == nil {
		return
	}
	c.Bus.Publish(context.Background(), ProgressEventName, event.ScanProgress{
		ScanID:  result.ScanID,
		Target:  result.Target.IP,
		Stage:   stage,
		Message: message,
		Percent: percent,
	})
}
