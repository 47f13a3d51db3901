// Package batch implements the BatchExecutor: it runs the per-target
// pipeline for a set of targets with bounded concurrency, converting any
// per-target failure into a failed ScanResult rather than aborting the
// batch.
package batch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/controller"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// Executor runs a Controller across many targets at once, bounded by
// max_concurrent_targets.
type Executor struct {
	Controller *controller.Controller
	Config     recontypes.ScanConfig
	Logger     zerolog.Logger
}

// New builds an Executor from a wired Controller and its config.
func New(ctrl *controller.Controller, cfg recontypes.ScanConfig, logger zerolog.Logger) *Executor {
	return &Executor{Controller: ctrl, Config: cfg, Logger: logger}
}

// Run scans every target, at most Config.MaxConcurrentTargets running at
// once, and returns one ScanResult per target in the same order as
// targets. A controller panic or error is never propagated here — it
// surfaces as that target's failed ScanResult; the batch always runs to
// completion.
func (e *Executor) Run(ctx context.Context, targets []recontypes.ScanTarget, layers controller.Layers) []*recontypes.ScanResult {
	results := make([]*recontypes.ScanResult, len(targets))
	sem := make(chan struct{}, e.Config.MaxConcurrentTargets)
	var wg sync.WaitGroup

	for i, target := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, t recontypes.ScanTarget) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.Controller.Run(ctx, t, layers)
			e.Logger.Info().Str("target", t.String()).Str("status", results[idx].Status).
				Msg("target scan finished")
		}(i, target)
	}
	wg.Wait()
	return results
}

// RunStream is Run's channel-based sibling: it scans every target
// with the same bounded concurrency but delivers each ScanResult as soon as
// its controller finishes, rather than waiting for the whole batch. The
// returned channel is closed once every target has reported.
func (e *Executor) RunStream(ctx context.Context, targets []recontypes.ScanTarget, layers controller.Layers) <-chan *recontypes.ScanResult {
	out := make(chan *recontypes.ScanResult, len(targets))
	sem := make(chan struct{}, e.Config.MaxConcurrentTargets)
	var wg sync.WaitGroup

	for _, target := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(t recontypes.ScanTarget) {
			defer wg.Done()
			defer func() { <-sem }()
			out <- e.Controller.Run(ctx, t, layers)
		}(target)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
