package parser

import "github.com/pentora-ai/reconcore/pkg/reconrules"

// ruleTablePlugin adapts reconrules' ordered banner regex table to the
// Plugin interface, making it the default (and currently only) registered
// classifier.
type ruleTablePlugin struct{}

func (ruleTablePlugin) Match(banner string) bool {
	_, _, ok := reconrules.ClassifyBanner(banner)
	return ok
}

func (ruleTablePlugin) Extract(banner string) *ServiceInfo {
	match, version, ok := reconrules.ClassifyBanner(banner)
	if !ok {
		return nil
	}
	return &ServiceInfo{Name: match.Service, Version: version}
}

func init() {
	Register(ruleTablePlugin{})
}
