// Package reconout renders a finished ScanResult to text, JSON, or YAML,
// mirroring the CLI's --output flag: one formatter per wire shape,
// selected by the caller and written to an io.Writer.
package reconout

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// maxTitleLen bounds how much of an HTML <title> renderText prints inline,
// since some pages embed megabytes-scale titles via script injection.
const maxTitleLen = 80

// Format selects the wire shape Render produces.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// summary is the consumer-facing `summary{...}` block appended to the
// wire shape described in §6, computed fresh at render time rather than
// stored on ScanResult.
type summary struct {
	OpenPortsCount       int `json:"open_ports_count" yaml:"open_ports_count"`
	HTTPServicesCount    int `json:"http_services_count" yaml:"http_services_count"`
	AdminDirectoryCount  int `json:"admin_directories_count" yaml:"admin_directories_count"`
	AdminInterfaceCount  int `json:"admin_interfaces_count" yaml:"admin_interfaces_count"`
}

func summaryOf(r *recontypes.ScanResult) summary {
	return summary{
		OpenPortsCount:      len(r.OpenPorts),
		HTTPServicesCount:   len(r.HTTPServices),
		AdminDirectoryCount: len(r.AdminDirectories),
		AdminInterfaceCount: r.AdminInterfaceCount(),
	}
}

// Render writes result to w in the requested format.
func Render(w io.Writer, result *recontypes.ScanResult, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatYAML:
		return renderYAML(w, result)
	case FormatText, "":
		return renderText(w, result)
	default:
		return fmt.Errorf("reconout: unknown output format %q", format)
	}
}

// wireMap flattens result's own JSON encoding and the derived summary block
// into one map, so the `summary{...}` field described in §6 rides alongside
// ScanResult's own json/yaml tags without needing a parallel struct
// definition that could drift from them.
func wireMap(result *recontypes.ScanResult) (map[string]any, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	summaryRaw, err := json.Marshal(summaryOf(result))
	if err != nil {
		return nil, err
	}
	var summaryMap map[string]any
	if err := json.Unmarshal(summaryRaw, &summaryMap); err != nil {
		return nil, err
	}
	m["summary"] = summaryMap
	return m, nil
}

func renderJSON(w io.Writer, result *recontypes.ScanResult) error {
	m, err := wireMap(result)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func renderYAML(w io.Writer, result *recontypes.ScanResult) error {
	m, err := wireMap(result)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(m)
}

var (
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	adminStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	portOpenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// renderText prints a colored, human-scannable summary: a target header,
// an open-port table, HTTP services with status-code coloring, and admin
// directories highlighted.
func renderText(w io.Writer, result *recontypes.ScanResult) error {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Scan %s — %s", result.ScanID, result.Target.IP)))
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("status: %s", result.Status)))
	if result.ErrorMessage != "" {
		fmt.Fprintln(w, color.RedString("error: %s", result.ErrorMessage))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Open ports (%d)", len(result.OpenPorts))))
	ports := append([]recontypes.PortInfo(nil), result.OpenPorts...)
	sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })
	for _, p := range ports {
		line := portOpenStyle.Render(fmt.Sprintf("  %5d/%s", p.Port, p.Protocol))
		if p.Service != "" {
			line += labelStyle.Render(fmt.Sprintf("  %s", p.Service))
		}
		if p.Version != "" {
			line += labelStyle.Render(fmt.Sprintf(" %s", p.Version))
		}
		fmt.Fprintln(w, line)
	}

	if len(result.HTTPServices) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("HTTP services (%d)", len(result.HTTPServices))))
		for _, h := range result.HTTPServices {
			fmt.Fprintln(w, "  "+statusColor(h.StatusCode).Sprintf("%d", h.StatusCode)+" "+h.URL+titleSuffix(h.Title))
		}
	}

	if len(result.AdminDirectories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Admin directories (%d)", len(result.AdminDirectories))))
		for _, d := range result.AdminDirectories {
			line := fmt.Sprintf("  %d %s", d.StatusCode, d.Path)
			if d.IsAdmin {
				line = adminStyle.Render(line + "  [admin]")
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func titleSuffix(title string) string {
	if title == "" {
		return ""
	}
	return labelStyle.Render(fmt.Sprintf("  %q", truncateTitle(title, maxTitleLen)))
}

// truncateTitle collapses a <title> value onto one line and bounds it to
// maxLength, appending "..." when it had to cut something off. HTTP titles
// are already collapsed to a single line by reconrules.ExtractTitle, but
// directory-probe titles go through the same renderer so newlines are
// normalized here too rather than assumed away.
func truncateTitle(title string, maxLength int) string {
	title = strings.TrimSpace(title)
	title = strings.ReplaceAll(title, "\n", " ")
	title = strings.ReplaceAll(title, "\r", "")

	if maxLength <= 0 {
		return ""
	}
	if len(title) <= maxLength {
		return title
	}
	if maxLength <= 3 {
		return title[:maxLength]
	}
	return title[:maxLength-3] + "..."
}

// statusColor maps an HTTP status code to the 2xx-green/3xx-yellow/4xx+5xx-red
// convention used for the text output's HTTP services list.
func statusColor(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen)
	case status >= 300 && status < 400:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
