package reconrules

import "regexp"

// HTTPDetectionRule is one additive-confidence signal HTTPFingerprinter
// weighs when deciding whether a port is an HTTP candidate.
type HTTPDetectionRule struct {
	Name            string
	BannerPattern   *regexp.Regexp
	PortHints       map[int]struct{}
	ConfidenceBoost float64
}

// CandidateThreshold is the minimum combined confidence score a port
// needs before HTTPFingerprinter will probe it.
const CandidateThreshold = 0.3

var httpDetectionRules = []HTTPDetectionRule{
	{
		Name:            "standard-http-response",
		BannerPattern:   regexp.MustCompile(`(?i)HTTP/\d\.\d|200 OK|404 Not Found|500 Internal Server Error`),
		PortHints:       portSet(80, 443, 8080, 8443),
		ConfidenceBoost: 0.3,
	},
	{
		Name:            "server-header",
		BannerPattern:   regexp.MustCompile(`(?i)Server:\s*(nginx|apache|iis|tomcat|jetty)`),
		PortHints:       portSet(),
		ConfidenceBoost: 0.4,
	},
	{
		Name:            "content-type-header",
		BannerPattern:   regexp.MustCompile(`(?i)Content-Type:\s*text/(html|plain)|application/json`),
		PortHints:       portSet(),
		ConfidenceBoost: 0.2,
	},
	{
		Name:            "web-application-servers",
		BannerPattern:   regexp.MustCompile(`(?i)Jetty|Tomcat|WebLogic|WebSphere|JBoss|Undertow`),
		PortHints:       portSet(8080, 8443, 9080, 9443),
		ConfidenceBoost: 0.3,
	},
	{
		Name:            "reverse-proxy",
		BannerPattern:   regexp.MustCompile(`(?i)Via:|X-Forwarded-For:|X-Real-IP:|CloudFlare|X-Served-By:`),
		PortHints:       portSet(80, 443),
		ConfidenceBoost: 0.2,
	},
	{
		Name:            "non-standard-http-ports",
		BannerPattern:   regexp.MustCompile(`(?i)HTTP/\d\.\d`),
		PortHints:       portSet(3000, 4000, 5000, 8000, 8081, 8082, 9000, 9090),
		ConfidenceBoost: 0.4,
	},
}

// httpServiceLabels are the port-table / banner-derived service names
// that alone already contribute base HTTP-candidate confidence.
var httpServiceLabels = map[string]struct{}{
	"http": {}, "https": {}, "http-alt": {}, "https-alt": {},
}

// HTTPCandidateScore computes the combined confidence that port speaks
// HTTP, given its classified service label, raw banner, and port number.
// The caller probes the port when the returned score is >= CandidateThreshold.
func HTTPCandidateScore(service, banner string, port int) float64 {
	score := 0.0
	if _, ok := httpServiceLabels[service]; ok {
		score += 0.5
	}
	for _, rule := range httpDetectionRules {
		if _, hinted := rule.PortHints[port]; hinted {
			score += 0.1
		}
		if banner != "" && rule.BannerPattern.MatchString(banner) {
			score += rule.ConfidenceBoost
		}
	}
	return score
}

// AdditionalHTTPCandidatePorts lists ports treated as HTTP candidates on
// port number alone, independent of any banner evidence.
var AdditionalHTTPCandidatePorts = portSet(3000, 4000, 5000, 8000, 8081, 8082, 9000, 9090)

func portSet(ports ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(ports))
	for _, p := range ports {
		set[p] = struct{}{}
	}
	return set
}
