package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Subnet prefix bounds. Anything outside this range is almost certainly a
// misconfiguration for a boot network.
const (
	minPrefix = 8
	maxPrefix = 30
)

// ValidationError aggregates every validation failure found in a single
// pass over the raw configuration.
type ValidationError struct {
	Failures []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid environment configuration (%d problems):\n  - %s",
		len(e.Failures), strings.Join(e.Failures, "\n  - "))
}

// Validate runs every check against the raw key/value set and returns the
// ordered list of failures. All checks always run; an empty result means
// the configuration is valid. Validate has no side effects.
func Validate(raw map[string]string) []string {
	var failures []string

	present := make(map[string]bool, len(requiredKeys))
	for _, key := range requiredKeys {
		if raw[key] == "" {
			failures = append(failures, fmt.Sprintf("missing required key %s", key))
			continue
		}
		present[key] = true
	}

	if present[KeySubnet] {
		if msg := checkSubnet(raw[KeySubnet]); msg != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", KeySubnet, msg))
		}
	}
	for _, key := range []string{KeyGateway, KeyServerIP} {
		if present[key] && !isIPv4(raw[key]) {
			failures = append(failures, fmt.Sprintf("%s: %q is not a valid IPv4 address", key, raw[key]))
		}
	}
	if present[KeyDNSServers] {
		for _, entry := range splitList(raw[KeyDNSServers]) {
			if !isIPv4(entry) {
				failures = append(failures, fmt.Sprintf("%s: entry %q is not a valid IPv4 address", KeyDNSServers, entry))
			}
		}
	}

	if v := raw[KeyHTTPPort]; v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			failures = append(failures, fmt.Sprintf("%s: %q is not a valid TCP port", KeyHTTPPort, v))
		}
	}

	return failures
}

// isIPv4 reports whether s is four dot-separated decimal octets, each in
// [0,255].
func isIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
		if n, _ := strconv.Atoi(p); n > 255 {
			return false
		}
	}
	return true
}

// checkSubnet validates "<IPv4>/<prefix>" with prefix in [minPrefix,maxPrefix].
// It returns an empty string when the subnet is well formed.
func checkSubnet(s string) string {
	ip, prefixStr, found := strings.Cut(s, "/")
	if !found {
		return fmt.Sprintf("%q is not in CIDR <address>/<prefix> form", s)
	}
	if !isIPv4(ip) {
		return fmt.Sprintf("address %q is not a valid IPv4 address", ip)
	}
	prefix, err := strconv.Atoi(prefixStr)
	if err != nil {
		return fmt.Sprintf("prefix %q is not a number", prefixStr)
	}
	if prefix < minPrefix || prefix > maxPrefix {
		return fmt.Sprintf("prefix /%d is outside the supported range /%d-/%d", prefix, minPrefix, maxPrefix)
	}
	return ""
}
