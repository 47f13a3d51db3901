// Copyright 2025 Reconcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/pentora-ai/reconcore/pkg/output"
)

// Lipgloss styles keyed by pipeline stage (controller.go's stage names).
var (
	portStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // l1_preset/l1_full: cyan
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // l1_banner: green
	httpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))  // l2/l2_web_check: blue
	dirStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // l3: yellow
	doneStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	diagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244")) // unrecognized stage
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// stageIcons maps a controller stage name to its display icon, ordered by
// pipeline position for readability even though the map itself is unordered.
var stageIcons = map[string]string{
	"l1_preset":     "\U0001F50D", // magnifying glass
	"l1_full":       "\U0001F50D",
	"l1_banner":     "\U0001F4CB", // clipboard
	"l2_web_check":  "\U0001F310", // globe
	"l2":            "\U0001F310",
	"l3":            "\U0001F4C2", // open folder
	"completed":     "✓",
}

// DiagnosticSubscriber renders a scan's progress events to stderr, styled
// by which pipeline stage produced them. Independent of the result
// renderer in pkg/reconout: this is progress chatter, not the final report.
//
// Verbosity levels:
//   - LevelVerbose (1): --progress
//   - LevelDebug (2) / LevelTrace (3): reserved for finer-grained events
//     this pipeline does not currently emit.
type DiagnosticSubscriber struct {
	level        output.OutputLevel
	writer       io.Writer
	colorEnabled bool
}

// NewDiagnosticSubscriber creates a DiagnosticSubscriber writing to writer,
// handling every event at or below level.
func NewDiagnosticSubscriber(level output.OutputLevel, writer io.Writer) *DiagnosticSubscriber {
	return &DiagnosticSubscriber{
		level:        level,
		writer:       writer,
		colorEnabled: true, // TODO: Auto-detect TTY
	}
}

// Name returns the subscriber identifier.
func (s *DiagnosticSubscriber) Name() string {
	return "diagnostic-subscriber"
}

// ShouldHandle accepts every event at or below the subscriber's level.
func (s *DiagnosticSubscriber) ShouldHandle(event output.OutputEvent) bool {
	return event.Level <= s.level
}

// Handle writes one progress event to the subscriber's writer as
// "[scan_id@target] stage message (n%)". With color enabled, a recognized
// stage is prefixed with its icon ("  icon [scan_id@target] ...") and
// styled by stage.
func (s *DiagnosticSubscriber) Handle(event output.OutputEvent) {
	line := fmt.Sprintf("[%s@%s] %s %s (%d%%)", event.ScanID, event.Target, event.Stage, event.Message, event.Percent)

	if !s.colorEnabled {
		fmt.Fprintln(s.writer, line)
		return
	}

	icon, known := stageIcons[event.Stage]
	styled := diagStyle.Render(line)
	if known {
		styled = stageStyle(event.Stage).Render(fmt.Sprintf("  %s %s", icon, line))
	}
	fmt.Fprintln(s.writer, styled)
}

// stageStyle picks the color for a recognized stage name.
func stageStyle(stage string) lipgloss.Style {
	switch stage {
	case "l1_preset", "l1_full":
		return portStyle
	case "l1_banner":
		return bannerStyle
	case "l2_web_check", "l2":
		return httpStyle
	case "l3":
		return dirStyle
	case "completed":
		return doneStyle
	default:
		return diagStyle
	}
}

var _ = metaStyle // reserved for metadata-bearing events this subscriber doesn't yet render
