// Package bannergrabber implements the BannerGrabber component: for each
// open port it opens a TCP connection, passively reads any server-initiated
// greeting, optionally nudges with an HTTP probe, and classifies the
// resulting banner against the reconrules tables.
package bannergrabber

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/parser"
	"github.com/pentora-ai/reconcore/pkg/reconrules"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// concurrency bounds how many banner grabs run in flight per target (§4.2).
const concurrency = 20

// passiveReadWindow is how long Grabber waits for an unsolicited greeting
// before deciding to send a nudge probe.
const passiveReadWindow = 2 * time.Second

// nudgeReadWindow is how long Grabber waits for a response after sending
// the HTTP nudge probe.
const nudgeReadWindow = 3 * time.Second

// Grabber is the BannerGrabber component.
type Grabber struct {
	Config recontypes.ScanConfig
	Logger zerolog.Logger
}

// New builds a Grabber from cfg.
func New(cfg recontypes.ScanConfig, logger zerolog.Logger) *Grabber {
	return &Grabber{Config: cfg, Logger: logger}
}

// Grab enriches each entry in ports with a banner and service classification,
// running up to `concurrency` probes in flight. Individual failures yield a
// minimal PortInfo whose service comes from the port table alone.
func (g *Grabber) Grab(ctx context.Context, ip string, ports []recontypes.PortInfo) []recontypes.PortInfo {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	out := make([]recontypes.PortInfo, len(ports))

	for i, p := range ports {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, port recontypes.PortInfo) {
			defer wg.Done()
			defer func() { <-sem }()
			out[idx] = g.grabOne(ctx, ip, port)
		}(i, p)
	}
	wg.Wait()
	return out
}

func (g *Grabber) grabOne(ctx context.Context, ip string, port recontypes.PortInfo) recontypes.PortInfo {
	banner, err := g.captureBanner(ctx, ip, port.Port)
	if err != nil {
		g.Logger.Debug().Err(err).Int("port", port.Port).Msg("banner capture failed")
		port.Service = portTableService(port.Port)
		port.Confidence = portTableConfidence(port.Port)
		return port
	}

	port.Banner = banner
	port.Service, port.Version, port.Confidence = classify(port.Port, banner)
	return port
}

// captureBanner opens a TCP connection with the configured total deadline,
// passively reads up to banner_max_bytes for up to passiveReadWindow, and
// if nothing arrived and the port is an HTTP-nudge candidate, sends a GET
// and reads again within nudgeReadWindow.
func (g *Grabber) captureBanner(ctx context.Context, ip string, port int) (string, error) {
	dialer := net.Dialer{Timeout: g.Config.BannerTimeout()}
	address := net.JoinHostPort(ip, strconv.Itoa(port))

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	deadline := time.Now().Add(g.Config.BannerTimeout())
	conn.SetDeadline(deadline)

	passiveDeadline := time.Now().Add(passiveReadWindow)
	if passiveDeadline.After(deadline) {
		passiveDeadline = deadline
	}
	conn.SetReadDeadline(passiveDeadline)

	buf := make([]byte, g.Config.BannerMaxBytes)
	n, _ := conn.Read(buf)
	if n > 0 {
		return normalizeBanner(buf[:n]), nil
	}

	if !isHTTPNudgeCandidate(g.Config, port) {
		return "", nil
	}

	request := "GET / HTTP/1.1\r\nHost: " + ip + "\r\n\r\n"
	if _, err := conn.Write([]byte(request)); err != nil {
		return "", err
	}

	nudgeDeadline := time.Now().Add(nudgeReadWindow)
	if nudgeDeadline.After(deadline) {
		nudgeDeadline = deadline
	}
	conn.SetReadDeadline(nudgeDeadline)

	n, readErr := conn.Read(buf)
	if n > 0 {
		return normalizeBanner(buf[:n]), nil
	}
	if readErr != nil && readErr != io.EOF {
		return "", readErr
	}
	return "", nil
}

// normalizeBanner decodes raw bytes as UTF-8 with lossy replacement, trims
// surrounding whitespace, and caps the result at 1024 bytes (§3 PortInfo.Banner).
func normalizeBanner(raw []byte) string {
	decoded := toValidUTF8(raw)
	decoded = strings.TrimSpace(decoded)
	if len(decoded) > 1024 {
		decoded = decoded[:1024]
	}
	return decoded
}

func toValidUTF8(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}

func isHTTPNudgeCandidate(cfg recontypes.ScanConfig, port int) bool {
	for _, p := range cfg.BannerHTTPNudgePorts {
		if p == port {
			return true
		}
	}
	return false
}

// classify resolves a port's service label, optional version token, and
// confidence score (§4.2): port table first, then banner content rules
// override the label. Confidence is scaled by how many signals matched.
func classify(port int, banner string) (service, version string, confidence float64) {
	service = portTableService(port)
	confidence = portTableConfidence(port)

	if banner == "" {
		return service, "", confidence
	}

	info := parser.Dispatch(banner)
	if info == nil {
		return service, "", confidence
	}

	service = info.Name
	confidence += 0.3
	if info.Version != "" {
		version = info.Version
		confidence += 0.2
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return service, version, confidence
}

func portTableService(port int) string {
	if svc, ok := reconrules.LookupPortService(port); ok {
		return svc.Name
	}
	return ""
}

func portTableConfidence(port int) float64 {
	if _, ok := reconrules.LookupPortService(port); ok {
		return 0.4
	}
	return 0.0
}
