package recontypes

import (
	"net/url"
	"strconv"
)

func portFromURL(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		return port
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}
