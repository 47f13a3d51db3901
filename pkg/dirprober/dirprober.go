// Package dirprober implements Layer 3 of the recon pipeline: against each
// confirmed HTTP(S) endpoint, probe a technology-matched set of candidate
// paths and report the ones that look like real, and possibly
// administrative, content.
package dirprober

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pentora-ai/reconcore/pkg/reconrules"
	"github.com/pentora-ai/reconcore/pkg/recontypes"
)

const maxBodyBytes = 64 * 1024

// Prober is the DirectoryProber component.
type Prober struct {
	Config recontypes.ScanConfig
	Logger zerolog.Logger
}

// New builds a Prober from cfg.
func New(cfg recontypes.ScanConfig, logger zerolog.Logger) *Prober {
	return &Prober{Config: cfg, Logger: logger}
}

// Probe walks the candidate path set selected for endpoint's technology
// signature and returns the meaningful responses. Returns nil without
// probing anything if directory_scan_enabled is false.
func (p *Prober) Probe(ctx context.Context, endpoint recontypes.HTTPInfo) []recontypes.DirectoryInfo {
	if !p.Config.DirectoryScanEnabled {
		return nil
	}

	paths := candidatePaths(endpoint)
	if len(paths) == 0 {
		return nil
	}

	client := p.client()
	sem := make(chan struct{}, p.Config.DirectoryConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var results []recontypes.DirectoryInfo

	for _, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(candidate string) {
			defer wg.Done()
			defer func() { <-sem }()

			info, ok := p.probePath(ctx, client, endpoint.URL, candidate)
			if !ok {
				return
			}
			mu.Lock()
			results = append(results, info)
			mu.Unlock()
		}(path)
	}
	wg.Wait()
	return results
}

func (p *Prober) probePath(ctx context.Context, client *http.Client, baseURL, path string) (recontypes.DirectoryInfo, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, p.Config.DirectoryTimeout())
	defer cancel()

	// endpoint.URL always carries a trailing slash (httpfingerprinter builds
	// it as scheme://host:port/); every rule path starts with its own "/",
	// so a naive concatenation would double up ("GET //admin").
	target := strings.TrimSuffix(baseURL, "/") + path
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return recontypes.DirectoryInfo{}, false
	}
	req.Header.Set("User-Agent", p.Config.HTTPUserAgent)

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		p.Logger.Debug().Err(err).Str("path", path).Msg("directory probe failed")
		return recontypes.DirectoryInfo{}, false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	contentLength := int64(-1)
	if cl, parseErr := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); parseErr == nil {
		contentLength = cl
	}

	if !reconrules.IsMeaningfulResponse(resp.StatusCode, contentLength) {
		return recontypes.DirectoryInfo{}, false
	}

	// Body parsing (title extraction, keyword/form admin heuristics) is only
	// attempted on 200 responses; other statuses are classified on path alone.
	bodyText := ""
	if resp.StatusCode == http.StatusOK {
		bodyText = string(body)
	}

	info := recontypes.DirectoryInfo{
		Path:                path,
		StatusCode:          resp.StatusCode,
		ContentType:         resp.Header.Get("Content-Type"),
		Title:               reconrules.ExtractTitle(bodyText),
		IsAdmin:             reconrules.IsAdminInterface(bodyText, path),
		ResponseTimeSeconds: elapsed.Seconds(),
	}
	if cl, parseErr := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); parseErr == nil {
		info.ContentLength = &cl
	}
	return info, true
}

func (p *Prober) client() *http.Client {
	return &http.Client{
		Timeout: p.Config.DirectoryTimeout(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // intentional: unauthenticated recon probing
		},
	}
}

// candidatePaths selects the applicable rule set for endpoint's technology
// signature and flattens it into a de-duplicated, priority-ordered path list.
func candidatePaths(endpoint recontypes.HTTPInfo) []string {
	sig := reconrules.ServiceSignature{
		Server:       endpoint.Server,
		Technologies: endpoint.Technologies,
		Title:        endpoint.Title,
		Headers:      endpoint.Headers,
	}
	rules := reconrules.SelectApplicableRules(sig)

	seen := make(map[string]struct{})
	var paths []string
	for _, rule := range rules {
		for _, path := range rule.Paths {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			paths = append(paths, path)
		}
	}
	return paths
}
