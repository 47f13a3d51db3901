// Package httpfingerprinter implements Layer 2 of the recon pipeline: for
// each open port that looks like it might speak HTTP, issue a GET, capture
// status/headers/title, and decide HTTPS vs HTTP per port.
package httpfingerprinter

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/reconrules"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

// tlsFirstPorts always try HTTPS before HTTP, independent of banner content.
var tlsFirstPorts = map[int]struct{}{443: {}, 8443: {}}

// maxBodyBytes bounds how much of a 200 response body is read when looking
// for a <title>.
const maxBodyBytes = 64 * 1024

// Fingerprinter is the HTTPFingerprinter component.
type Fingerprinter struct {
	Config recontypes.ScanConfig
	Logger zerolog.Logger
}

// New builds a Fingerprinter from cfg.
func New(cfg recontypes.ScanConfig, logger zerolog.Logger) *Fingerprinter {
	return &Fingerprinter{Config: cfg, Logger: logger}
}

// Candidates filters ports down to the ones worth probing: HTTPCandidateScore
// reaching reconrules.CandidateThreshold, plus the always-candidate port set.
func (f *Fingerprinter) Candidates(ports []recontypes.PortInfo) []recontypes.PortInfo {
	var candidates []recontypes.PortInfo
	for _, p := range ports {
		if f.isCandidate(p) {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

func (f *Fingerprinter) isCandidate(p recontypes.PortInfo) bool {
	for _, webPort := range f.Config.WebPorts {
		if webPort == p.Port {
			return true
		}
	}
	if _, ok := reconrules.AdditionalHTTPCandidatePorts[p.Port]; ok {
		return true
	}
	return reconrules.HTTPCandidateScore(p.Service, p.Banner, p.Port) >= reconrules.CandidateThreshold
}

// Fingerprint probes every candidate port in parallel (bounded only by the
// caller's overall per-target concurrency) and returns one HTTPInfo per port
// that answered on either scheme.
func (f *Fingerprinter) Fingerprint(ctx context.Context, ip string, ports []recontypes.PortInfo) []recontypes.HTTPInfo {
	candidates := f.Candidates(ports)
	if len(candidates) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []recontypes.HTTPInfo

	for _, port := range candidates {
		wg.Add(1)
		go func(p recontypes.PortInfo) {
			defer wg.Done()
			info, ok := f.probePort(ctx, ip, p)
			if !ok {
				return
			}
			mu.Lock()
			results = append(results, info)
			mu.Unlock()
		}(port)
	}
	wg.Wait()
	return results
}

// probePort tries the scheme order dictated by the port/banner, accepting
// the first one that returns any HTTP response.
func (f *Fingerprinter) probePort(ctx context.Context, ip string, port recontypes.PortInfo) (recontypes.HTTPInfo, bool) {
	schemes := []string{"http", "https"}
	if f.prefersTLSFirst(port) {
		schemes = []string{"https", "http"}
	}

	for _, scheme := range schemes {
		info, err := f.probeScheme(ctx, scheme, ip, port.Port)
		if err != nil {
			f.Logger.Debug().Err(err).Int("port", port.Port).Str("scheme", scheme).Msg("http probe failed")
			continue
		}
		return info, true
	}
	return recontypes.HTTPInfo{}, false
}

func (f *Fingerprinter) prefersTLSFirst(port recontypes.PortInfo) bool {
	if _, ok := tlsFirstPorts[port.Port]; ok {
		return true
	}
	return strings.Contains(strings.ToLower(port.Banner), "ssl")
}

func (f *Fingerprinter) probeScheme(ctx context.Context, scheme, ip string, port int) (recontypes.HTTPInfo, error) {
	url := scheme + "://" + net.JoinHostPort(ip, strconv.Itoa(port)) + "/"

	reqCtx, cancel := context.WithTimeout(ctx, f.Config.HTTPTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return recontypes.HTTPInfo{}, err
	}
	req.Header.Set("User-Agent", f.Config.HTTPUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := f.client()
	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return recontypes.HTTPInfo{}, err
	}
	defer resp.Body.Close()

	info := recontypes.NewHTTPInfo(url, scheme == "https")
	info.StatusCode = resp.StatusCode
	info.Server = resp.Header.Get("Server")
	info.ResponseTimeSeconds = elapsed.Seconds()
	for key := range resp.Header {
		info.Headers[key] = resp.Header.Get(key)
	}
	if cl, parseErr := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); parseErr == nil {
		info.ContentLength = &cl
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		info.RedirectURL = resp.Header.Get("Location")
	}

	if resp.StatusCode == http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		info.Title = reconrules.ExtractTitle(string(body))
	}

	return info, nil
}

// client returns an http.Client that never follows redirects and never
// verifies TLS certificates, per §4.3.
func (f *Fingerprinter) client() *http.Client {
	return &http.Client{
		Timeout: f.Config.HTTPTimeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // intentional: unauthenticated recon probing
		},
	}
}
