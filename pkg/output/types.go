// Copyright 2025 Reconcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"time"

	"github.com/pentora-ai/reconcore/pkg/event"
)

// OutputLevel ranks diagnostic verbosity, lowest first. A subscriber
// configured at a given level handles every event at or below it.
type OutputLevel int

const (
	LevelNormal OutputLevel = iota
	LevelVerbose
	LevelDebug
	LevelTrace
)

// OutputEvent is a single scan-progress notification dispatched through an
// OutputEventStream. Unlike a general-purpose event envelope, its payload
// is always event.ScanProgress's own fields rather than an opaque blob:
// every subscriber in this tree renders the same thing.
type OutputEvent struct {
	Level     OutputLevel
	Timestamp time.Time
	ScanID    string
	Target    string
	Stage     string
	Message   string
	Percent   int
}

// NewScanProgressEvent wraps a Controller's ScanProgress notification as an
// OutputEvent at the given verbosity level.
func NewScanProgressEvent(level OutputLevel, progress event.ScanProgress) OutputEvent {
	return OutputEvent{
		Level:     level,
		Timestamp: time.Now(),
		ScanID:    progress.ScanID,
		Target:    progress.Target,
		Stage:     progress.Stage,
		Message:   progress.Message,
		Percent:   progress.Percent,
	}
}
