package artifact

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bootforge/bootforge/internal/config"
	"github.com/bootforge/bootforge/internal/template"
)

// TemplateVars builds the renderer bindings from the environment
// configuration and the serving roots. Every token used by the built-in
// templates has a binding here; a custom template referencing anything
// else surfaces as an unresolved-token error at render time.
func TemplateVars(cfg *config.Config, roots Roots) template.Vars {
	mirrorHost, mirrorPath := splitMirror(cfg.DebianMirror)

	return template.Vars{
		"SUBNET":    template.String(cfg.Subnet),
		"NETWORK":   template.String(cfg.NetworkAddress()),
		"GATEWAY":   template.String(cfg.Gateway),
		"SERVER_IP": template.String(cfg.ServerIP),
		"HTTP_PORT": template.String(strconv.Itoa(cfg.HTTPPort)),
		"TFTP_ROOT": template.String(roots.TFTPRoot),
		"HTTP_ROOT": template.String(roots.HTTPRoot),

		// One dnsmasq upstream directive line per configured DNS server.
		"DNS_SERVERS": template.List(cfg.DNSServers, "server=%s"),
		// Space-joined form for single-line formats (preseed netcfg).
		"DNS_SPACE": template.String(strings.Join(cfg.DNSServers, " ")),

		"DOMAIN_NAME":          template.String(cfg.DomainName),
		"DOMAIN_JOIN_USER":     template.String(cfg.DomainJoinUser),
		"DOMAIN_JOIN_PASSWORD": template.String(cfg.DomainJoinPassword),
		"ADMIN_USER":           template.String(cfg.AdminUser),
		"ADMIN_PASSWORD":       template.String(cfg.AdminPassword),
		"HOSTNAME_PREFIX":      template.String(cfg.HostnamePrefix),

		"DEBIAN_MIRROR_HOST": template.String(mirrorHost),
		"DEBIAN_MIRROR_PATH": template.String(mirrorPath),
	}
}

// splitMirror splits a mirror URL into the host and path form the Debian
// installer expects.
func splitMirror(mirror string) (host, path string) {
	u, err := url.Parse(mirror)
	if err != nil || u.Host == "" {
		return mirror, "/"
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return u.Host, path
}
