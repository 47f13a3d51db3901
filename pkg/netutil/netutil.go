// Package netutil parses CLI-level port and target notations into the
// concrete port numbers and IP strings the scan pipeline operates on.
package netutil

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParsePortString expands a comma-separated list of ports and port ranges
// (e.g. "80,443,1000-1002") into a sorted, de-duplicated slice of port
// numbers. An empty string yields an empty, non-nil slice. Each port and
// range endpoint must fall within [0, 65535]; a range's start must not
// exceed its end.
func ParsePortString(s string) ([]int, error) {
	ports := make(map[int]struct{})

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		if strings.Contains(field, "-") {
			parts := strings.SplitN(field, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", field, err)
			}
			end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", field, err)
			}
			if start < 0 || start > 65535 || end < 0 || end > 65535 {
				return nil, fmt.Errorf("port range %q out of bounds [0, 65535]", field)
			}
			if start > end {
				return nil, fmt.Errorf("port range %q has start greater than end", field)
			}
			for p := start; p <= end; p++ {
				ports[p] = struct{}{}
			}
			continue
		}

		port, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", field, err)
		}
		if port < 0 || port > 65535 {
			return nil, fmt.Errorf("port %q out of bounds [0, 65535]", field)
		}
		ports[port] = struct{}{}
	}

	result := make([]int, 0, len(ports))
	for p := range ports {
		result = append(result, p)
	}
	sort.Ints(result)
	return result, nil
}

// ParseAndExpandTargets expands CIDR blocks and IP ranges in targets into a
// flat, de-duplicated list of individual IP strings, dropping multicast,
// unspecified, and link-local addresses. Plain IPs pass through unchanged;
// anything that does not parse as an IP address, hostnames included, is
// dropped without a DNS lookup.
func ParseAndExpandTargets(targets []string) []string {
	var expanded []string
	for _, t := range targets {
		target := strings.TrimSpace(t)
		if target == "" {
			continue
		}

		switch {
		case strings.Contains(target, "/"):
			expanded = append(expanded, expandCIDR(target)...)
		case strings.Contains(target, "-"):
			if ips, handled := expandRange(target); handled {
				expanded = append(expanded, ips...)
			} else {
				expanded = append(expanded, target)
			}
		default:
			expanded = append(expanded, target)
		}
	}

	seen := make(map[string]struct{})
	return filterNonScanableIPs(expanded, seen)
}

func expandCIDR(target string) []string {
	var out []string
	ipAddr, ipNet, err := net.ParseCIDR(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] target-expansion: error parsing CIDR %q: %v, skipping\n", target, err)
		return nil
	}

	ones, bits := ipNet.Mask.Size()
	filterBoundary := bits == 32 && ones > 0 && ones < 31

	var networkIP, broadcastIP net.IP
	if filterBoundary {
		networkIP = ipNet.IP.To4()
		broadcastIP = make(net.IP, net.IPv4len)
		for i := 0; i < net.IPv4len; i++ {
			broadcastIP[i] = networkIP[i] | ^ipNet.Mask[i]
		}
	}

	for ip := ipAddr.Mask(ipNet.Mask); ipNet.Contains(ip); incIP(ip) {
		ipCopy := make(net.IP, len(ip))
		copy(ipCopy, ip)

		if filterBoundary && ip.To4() != nil && (ip.Equal(networkIP) || ip.Equal(broadcastIP)) {
			continue
		}
		out = append(out, ipCopy.String())

		if len(out) > 200000 {
			fmt.Fprintf(os.Stderr, "[WARN] target-expansion: CIDR %s exceeds expansion limit, truncating at %d IPs\n", target, len(out))
			break
		}
	}
	return out
}

// expandRange expands "192.168.1.10-20" and "192.168.1.10-192.168.1.20"
// forms. handled is false when target doesn't look like a range at all,
// in which case the caller should treat target as an opaque hostname/IP.
// A recognized-but-invalid range (start > end, mismatched families) is
// handled (dropped) rather than passed through literally.
func expandRange(target string) (out []string, handled bool) {
	parts := strings.SplitN(target, "-", 2)
	if len(parts) != 2 {
		return nil, false
	}
	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	// Last-octet short form: "192.168.1.10-20". Only tried when the tail
	// is a bare integer, so a full second IP always takes the branch below.
	if baseParts := strings.Split(startStr, "."); len(baseParts) == 4 {
		if startOctet, errStart := cast.ToIntE(baseParts[3]); errStart == nil {
			if endOctet, errEnd := cast.ToIntE(endStr); errEnd == nil {
				if startOctet < 0 || startOctet > 255 || endOctet < 0 || endOctet > 255 || endOctet < startOctet {
					fmt.Fprintf(os.Stderr, "[WARN] target-expansion: invalid last-octet range %q, skipping\n", target)
					return nil, true
				}
				base := strings.Join(baseParts[:3], ".")
				for i := startOctet; i <= endOctet; i++ {
					out = append(out, fmt.Sprintf("%s.%d", base, i))
				}
				return out, true
			}
		}
	}

	startIP := net.ParseIP(startStr)
	endIP := net.ParseIP(endStr)
	if startIP == nil || endIP == nil {
		return nil, false
	}

	startIsV4 := startIP.To4() != nil
	endIsV4 := endIP.To4() != nil
	if startIsV4 != endIsV4 {
		fmt.Fprintf(os.Stderr, "[WARN] target-expansion: mismatched IP versions in range %q, skipping\n", target)
		return nil, true
	}

	cmp := bytes.Compare(startIP, endIP)
	if startIsV4 {
		cmp = bytes.Compare(startIP.To4(), endIP.To4())
	}
	if cmp > 0 {
		fmt.Fprintf(os.Stderr, "[WARN] target-expansion: start IP greater than end IP in range %q, skipping\n", target)
		return nil, true
	}

	current := make(net.IP, len(startIP))
	copy(current, startIP)
	for {
		currentCopy := make(net.IP, len(current))
		copy(currentCopy, current)
		out = append(out, currentCopy.String())

		currentCmp := bytes.Compare(current, endIP)
		if startIsV4 {
			currentCmp = bytes.Compare(current.To4(), endIP.To4())
		}
		if currentCmp == 0 {
			break
		}
		incIP(current)

		if len(out) > 20000 {
			fmt.Fprintf(os.Stderr, "[WARN] target-expansion: range %s exceeds expansion limit, truncating at %d IPs\n", target, len(out))
			break
		}
		if bytes.Compare(current, startIP) < 0 && len(startIP) == len(current) {
			fmt.Fprintf(os.Stderr, "[WARN] target-expansion: range %s wrapped around, stopping\n", target)
			break
		}
	}
	return out, true
}

// incIP increments an IP address in place, carrying across byte
// boundaries. Works for both 4-byte and 16-byte representations.
func incIP(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

// filterNonScanableIPs trims, validates, and de-duplicates candidate IP
// strings, dropping anything that can't be a meaningful scan target:
// invalid addresses, multicast, unspecified, and link-local. alreadySeen
// tracks IPs across calls so repeated expansions don't reintroduce
// duplicates.
func filterNonScanableIPs(ips []string, alreadySeen map[string]struct{}) []string {
	var result []string
	for _, raw := range ips {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if _, dup := alreadySeen[trimmed]; dup {
			continue
		}

		ip := net.ParseIP(trimmed)
		if ip == nil ||
			ip.IsMulticast() ||
			ip.IsUnspecified() ||
			ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() {
			continue
		}

		alreadySeen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
