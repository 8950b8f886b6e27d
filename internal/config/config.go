// Package config defines the immutable environment configuration for a
// provisioning run and its validation rules.
//
// The configuration is constructed exactly once at process start from the
// raw key/value set read by the env package. No other component reads the
// process environment; everything receives a *Config.
package config

import (
	"net"
	"strconv"
	"strings"
)

// Required configuration keys.
const (
	KeySubnet             = "SUBNET"
	KeyGateway            = "GATEWAY"
	KeyDNSServers         = "DNS_SERVERS"
	KeyServerIP           = "SERVER_IP"
	KeyDomainName         = "DOMAIN_NAME"
	KeyDomainJoinUser     = "DOMAIN_JOIN_USER"
	KeyDomainJoinPassword = "DOMAIN_JOIN_PASSWORD"
	KeyAdminUser          = "ADMIN_USER"
	KeyAdminPassword      = "ADMIN_PASSWORD"
)

// Optional configuration keys with documented defaults.
const (
	KeyHTTPPort       = "HTTP_PORT"
	KeyDebianMirror   = "DEBIAN_MIRROR"
	KeyBootMirror     = "BOOT_MIRROR"
	KeyHostnamePrefix = "HOSTNAME_PREFIX"
)

// Defaults for the optional keys.
const (
	DefaultHTTPPort       = 80
	DefaultDebianMirror   = "http://deb.debian.org/debian"
	DefaultBootMirror     = "http://boot.ipxe.org"
	DefaultHostnamePrefix = "pxe"
)

// requiredKeys is the fixed order in which presence failures are reported.
var requiredKeys = []string{
	KeySubnet,
	KeyGateway,
	KeyDNSServers,
	KeyServerIP,
	KeyDomainName,
	KeyDomainJoinUser,
	KeyDomainJoinPassword,
	KeyAdminUser,
	KeyAdminPassword,
}

// Config is the validated, immutable environment configuration.
type Config struct {
	Subnet     string // CIDR, e.g. 10.0.0.0/24
	Gateway    string
	DNSServers []string
	ServerIP   string

	DomainName         string
	DomainJoinUser     string
	DomainJoinPassword string
	AdminUser          string
	AdminPassword      string

	HTTPPort       int
	DebianMirror   string
	BootMirror     string
	HostnamePrefix string
}

// FromEnv validates the raw key/value set and builds a Config from it.
// On failure it returns a *ValidationError carrying every problem found,
// not just the first.
func FromEnv(raw map[string]string) (*Config, error) {
	if failures := Validate(raw); len(failures) > 0 {
		return nil, &ValidationError{Failures: failures}
	}

	cfg := &Config{
		Subnet:             raw[KeySubnet],
		Gateway:            raw[KeyGateway],
		DNSServers:         splitList(raw[KeyDNSServers]),
		ServerIP:           raw[KeyServerIP],
		DomainName:         raw[KeyDomainName],
		DomainJoinUser:     raw[KeyDomainJoinUser],
		DomainJoinPassword: raw[KeyDomainJoinPassword],
		AdminUser:          raw[KeyAdminUser],
		AdminPassword:      raw[KeyAdminPassword],
		HTTPPort:           DefaultHTTPPort,
		DebianMirror:       DefaultDebianMirror,
		BootMirror:         DefaultBootMirror,
		HostnamePrefix:     DefaultHostnamePrefix,
	}

	if v, ok := raw[KeyHTTPPort]; ok && v != "" {
		// Validate already proved this parses.
		cfg.HTTPPort, _ = strconv.Atoi(v)
	}
	if v, ok := raw[KeyDebianMirror]; ok && v != "" {
		cfg.DebianMirror = strings.TrimRight(v, "/")
	}
	if v, ok := raw[KeyBootMirror]; ok && v != "" {
		cfg.BootMirror = strings.TrimRight(v, "/")
	}
	if v, ok := raw[KeyHostnamePrefix]; ok && v != "" {
		cfg.HostnamePrefix = v
	}

	return cfg, nil
}

// NetworkAddress returns the network base address of the configured subnet,
// e.g. "10.0.0.0" for 10.0.0.4/24. The proxy-DHCP service identifies the
// network it answers on by this address.
func (c *Config) NetworkAddress() string {
	ipStr, prefixStr, _ := strings.Cut(c.Subnet, "/")
	prefix, _ := strconv.Atoi(prefixStr)
	ip := net.ParseIP(ipStr).To4()
	if ip == nil {
		return ipStr
	}
	return ip.Mask(net.CIDRMask(prefix, 32)).String()
}

// splitList splits a comma-separated value into trimmed entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
