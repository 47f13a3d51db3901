package reconrules

import (
	"regexp"
	"strings"
)

// BannerMatch is what a banner classification rule contributes: a service
// label, optionally a threat annotation, and the regex that extracts a
// version token when one is present.
type BannerMatch struct {
	Service     string
	Threat      string
	VersionExpr *regexp.Regexp
}

// bannerRule is one entry in the ordered banner classification table.
// Rules are tried in order; the first whose Match regex hits wins.
type bannerRule struct {
	Match  *regexp.Regexp
	Result BannerMatch
}

var bannerRules = []bannerRule{
	{
		Match:  regexp.MustCompile(`(?i)http/|server:`),
		Result: BannerMatch{Service: "http", VersionExpr: regexp.MustCompile(`(?i)server:\s*([^\r\n]+)`)},
	},
	{
		Match:  regexp.MustCompile(`(?i)ssh-`),
		Result: BannerMatch{Service: "ssh", VersionExpr: regexp.MustCompile(`(?i)ssh-[\d.]+`)},
	},
	{
		Match:  regexp.MustCompile(`(?i)220 .*smtp|220 .*mail`),
		Result: BannerMatch{Service: "smtp"},
	},
	{
		Match:  regexp.MustCompile(`(?i)220 .*ftp`),
		Result: BannerMatch{Service: "ftp"},
	},
	{
		Match:  regexp.MustCompile(`(?i)morte c2`),
		Result: BannerMatch{Service: "morte-c2", Threat: "c2"},
	},
	{
		Match:  regexp.MustCompile(`(?i)usoppgo|king of snipers`),
		Result: BannerMatch{Service: "usoppgo-ftp", Threat: "suspicious-ftp"},
	},
	{
		Match:  regexp.MustCompile(`(?i)cobaltstrike|beacon`),
		Result: BannerMatch{Service: "cobaltstrike", Threat: "c2"},
	},
}

// ClassifyBanner applies the ordered banner rule table to banner, the
// raw bytes read from an open port. ok is false when no rule matched, in
// which case the caller should fall back to the port-default label.
func ClassifyBanner(banner string) (match BannerMatch, version string, ok bool) {
	for _, rule := range bannerRules {
		if !rule.Match.MatchString(banner) {
			continue
		}
		match = rule.Result
		if match.VersionExpr != nil {
			if groups := match.VersionExpr.FindStringSubmatch(banner); len(groups) > 0 {
				if len(groups) > 1 {
					version = strings.TrimSpace(groups[1])
				} else {
					version = groups[0]
				}
			}
		}
		return match, version, true
	}
	return BannerMatch{}, "", false
}
