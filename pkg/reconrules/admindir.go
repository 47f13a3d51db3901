package reconrules

import (
	"regexp"
	"sort"
	"strings"
)

// AdminDirectoryRule groups a set of candidate paths under the technology
// stack that makes them worth probing, plus the indicators DirectoryProber
// matches against an HTTPInfo to decide the rule applies.
type AdminDirectoryRule struct {
	Technology string
	Paths      []string
	Indicators []string
	Priority   int
}

// adminDirectoryRules is ordered by priority ascending after init (lower
// value probes first). Generic always applies regardless of indicators.
var adminDirectoryRules = sortedAdminRules([]AdminDirectoryRule{
	{
		Technology: "Generic",
		Paths: []string{
			"/admin", "/admin/", "/administrator", "/administrator/",
			"/manage", "/manage/", "/management", "/management/",
			"/panel", "/panel/", "/control", "/control/",
			"/backend", "/backend/", "/dashboard", "/dashboard/",
			"/login", "/login.php", "/login.html", "/login.jsp",
			"/admin.php", "/admin.html", "/admin.jsp",
			"/wp-admin", "/wp-admin/", "/wp-login.php",
			"/phpmyadmin", "/phpmyadmin/", "/pma/",
			"/adminer", "/adminer.php",
		},
		Indicators: nil,
		Priority:   1,
	},
	{
		Technology: "Apache Tomcat",
		Paths: []string{
			"/manager", "/manager/", "/manager/html",
			"/host-manager", "/host-manager/",
			"/admin", "/admin/", "/admin/index.jsp",
		},
		Indicators: []string{"tomcat", "apache-coyote", "catalina"},
		Priority:   1,
	},
	{
		Technology: "JBoss",
		Paths: []string{
			"/admin-console", "/admin-console/",
			"/jmx-console", "/jmx-console/",
			"/web-console", "/web-console/",
			"/status", "/status/",
		},
		Indicators: []string{"jboss", "wildfly"},
		Priority:   1,
	},
	{
		Technology: "WebLogic",
		Paths: []string{
			"/console", "/console/",
			"/em", "/em/",
			"/wls-exporter", "/wls-exporter/",
		},
		Indicators: []string{"weblogic"},
		Priority:   1,
	},
	{
		Technology: "Nginx",
		Paths: []string{
			"/nginx_status", "/status",
			"/server-status", "/server-info",
		},
		Indicators: []string{"nginx"},
		Priority:   2,
	},
	{
		Technology: "Apache",
		Paths: []string{
			"/server-status", "/server-info",
			"/server-statistics", "/status",
		},
		Indicators: []string{"apache"},
		Priority:   2,
	},
	{
		Technology: "PHP",
		Paths: []string{
			"/phpinfo.php", "/info.php", "/test.php",
			"/phpmyadmin", "/phpmyadmin/",
			"/adminer.php", "/db.php",
		},
		Indicators: []string{"php", "x-powered-by: php"},
		Priority:   1,
	},
	{
		Technology: "WordPress",
		Paths: []string{
			"/wp-admin", "/wp-admin/", "/wp-login.php",
			"/wp-content/", "/wp-includes/",
			"/xmlrpc.php", "/readme.html",
		},
		Indicators: []string{"wordpress", "wp-content", "wp-includes"},
		Priority:   1,
	},
	{
		Technology: "Jenkins",
		Paths: []string{
			"/", "/login", "/manage", "/configure",
			"/script", "/systemInfo", "/asynchPeople",
		},
		Indicators: []string{"jenkins", "hudson"},
		Priority:   1,
	},
	{
		Technology: "GitLab",
		Paths: []string{
			"/admin", "/admin/", "/users/sign_in",
			"/explore", "/help", "/api/v4",
		},
		Indicators: []string{"gitlab"},
		Priority:   1,
	},
	{
		Technology: "Grafana",
		Paths: []string{
			"/login", "/admin", "/api/health",
			"/api/admin/stats", "/public/build/",
		},
		Indicators: []string{"grafana"},
		Priority:   1,
	},
	{
		Technology: "Elastic",
		Paths: []string{
			"/", "/_cluster/health", "/_cat/nodes",
			"/_plugin/head/", "/app/kibana",
		},
		Indicators: []string{"elasticsearch", "kibana", "elastic"},
		Priority:   1,
	},
	{
		Technology: "API Endpoints",
		Paths: []string{
			"/api", "/api/", "/api/v1", "/api/v2",
			"/rest", "/rest/", "/graphql",
			"/swagger", "/swagger-ui", "/docs",
			"/openapi.json", "/api-docs",
		},
		Indicators: []string{"api", "rest", "json"},
		Priority:   2,
	},
	{
		Technology: "Backup Files",
		Paths: []string{
			"/backup", "/backup/", "/backups", "/backups/",
			"/dump", "/dump/", "/export", "/export/",
			"/backup.sql", "/dump.sql", "/database.sql",
			"/config.bak", "/web.config.bak",
		},
		Indicators: nil,
		Priority:   3,
	},
})

func sortedAdminRules(rules []AdminDirectoryRule) []AdminDirectoryRule {
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return rules
}

// AdminDirectoryRules returns the ordered rule table.
func AdminDirectoryRules() []AdminDirectoryRule {
	return adminDirectoryRules
}

// ServiceSignature is the subset of an HTTPInfo DirectoryProber matches
// a rule's indicators against.
type ServiceSignature struct {
	Server       string
	Technologies []string
	Title        string
	Headers      map[string]string
}

// SelectApplicableRules returns the rules whose indicators match sig,
// ordered by priority. Generic always matches.
func SelectApplicableRules(sig ServiceSignature) []AdminDirectoryRule {
	server := strings.ToLower(sig.Server)
	title := strings.ToLower(sig.Title)
	technologies := make([]string, len(sig.Technologies))
	for i, t := range sig.Technologies {
		technologies[i] = strings.ToLower(t)
	}
	headers := make(map[string]string, len(sig.Headers))
	for k, v := range sig.Headers {
		headers[strings.ToLower(k)] = strings.ToLower(v)
	}

	var applicable []AdminDirectoryRule
	for _, rule := range adminDirectoryRules {
		if rule.Technology == "Generic" {
			applicable = append(applicable, rule)
			continue
		}
		if ruleMatches(rule, server, title, technologies, headers) {
			applicable = append(applicable, rule)
		}
	}
	return sortedAdminRules(applicable)
}

func ruleMatches(rule AdminDirectoryRule, server, title string, technologies []string, headers map[string]string) bool {
	for _, indicator := range rule.Indicators {
		ind := strings.ToLower(indicator)
		if strings.Contains(server, ind) {
			return true
		}
		for _, tech := range technologies {
			if strings.Contains(tech, ind) {
				return true
			}
		}
		if strings.Contains(title, ind) {
			return true
		}
		for _, headerValue := range headers {
			if strings.Contains(headerValue, ind) {
				return true
			}
		}
	}
	return false
}

var meaningfulStatusCodes = map[int]struct{}{
	200: {}, 201: {}, 301: {}, 302: {}, 401: {}, 403: {}, 500: {}, 503: {},
}

// IsMeaningfulResponse filters out responses unlikely to represent a real
// path: status codes outside the meaningful set, or a content-length that
// suggests a generic catch-all page (too small) or an unrelated asset
// (too large). contentLength < 0 means the header was absent or unparsable
// and is not used to filter.
func IsMeaningfulResponse(statusCode int, contentLength int64) bool {
	if _, ok := meaningfulStatusCodes[statusCode]; !ok {
		return false
	}
	if contentLength >= 0 && (contentLength < 50 || contentLength > 1024*1024) {
		return false
	}
	return true
}

var titleRegexp = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
var whitespaceRunRegexp = regexp.MustCompile(`\s+`)

// ExtractTitle pulls the <title> text out of an HTML document, collapses
// internal whitespace runs, and truncates to 200 characters. It returns
// "" when no title element is present.
func ExtractTitle(body string) string {
	groups := titleRegexp.FindStringSubmatch(body)
	if len(groups) < 2 {
		return ""
	}
	title := whitespaceRunRegexp.ReplaceAllString(strings.TrimSpace(groups[1]), " ")
	if runes := []rune(title); len(runes) > 200 {
		title = string(runes[:200])
	}
	return title
}

var adminPathKeywords = []string{
	"admin", "manage", "control", "panel", "dashboard",
	"console", "backend", "login",
}

var adminContentKeywords = []string{
	"administration", "admin panel", "control panel",
	"management console", "dashboard", "login",
	"username", "password", "sign in", "log in",
	"administrative", "manager", "control",
}

var passwordInputRegexp = regexp.MustCompile(`(?i)<input[^>]*type=["']password["']`)
var loginFormRegexp = regexp.MustCompile(`(?i)<form[^>]*action[^>]*login`)

// IsAdminInterface decides whether a probed path's response looks like an
// administrative interface, based on the path itself, keyword hits in the
// response body, or the presence of a password input / login form.
func IsAdminInterface(body, path string) bool {
	pathLower := strings.ToLower(path)
	for _, keyword := range adminPathKeywords {
		if strings.Contains(pathLower, keyword) {
			return true
		}
	}

	bodyLower := strings.ToLower(body)
	for _, keyword := range adminContentKeywords {
		if strings.Contains(bodyLower, keyword) {
			return true
		}
	}

	if passwordInputRegexp.MatchString(bodyLower) {
		return true
	}
	if loginFormRegexp.MatchString(bodyLower) {
		return true
	}
	return false
}
