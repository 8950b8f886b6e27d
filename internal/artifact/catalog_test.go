package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bootforge/bootforge/internal/artifact"
	"github.com/bootforge/bootforge/internal/config"
	"github.com/bootforge/bootforge/internal/template"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.FromEnv(map[string]string{
		config.KeySubnet:             "10.0.0.0/24",
		config.KeyGateway:            "10.0.0.1",
		config.KeyDNSServers:         "10.0.0.11,10.0.0.12",
		config.KeyServerIP:           "10.0.0.2",
		config.KeyDomainName:         "corp.example.com",
		config.KeyDomainJoinUser:     "joiner",
		config.KeyDomainJoinPassword: "join-secret",
		config.KeyAdminUser:          "operator",
		config.KeyAdminPassword:      "admin-secret",
	})
	require.NoError(t, err)
	return cfg
}

func TestLoadCatalog(t *testing.T) {
	roots := artifact.Roots{TFTPRoot: "/srv/tftp", HTTPRoot: "/srv/http"}

	catalogue, err := artifact.LoadCatalog(roots)
	require.NoError(t, err)
	require.Len(t, catalogue, 6)

	byName := make(map[string]*artifact.Artifact, len(catalogue))
	for _, a := range catalogue {
		byName[a.Name] = a
	}

	require.Contains(t, byName, "proxy_dhcp")
	assert.Equal(t, "/srv/tftp/dnsmasq.conf", byName["proxy_dhcp"].Dest)
	assert.False(t, byName["proxy_dhcp"].Executable)

	require.Contains(t, byName, "boot_menu")
	assert.Equal(t, "/srv/tftp/boot.ipxe", byName["boot_menu"].Dest)

	require.Contains(t, byName, "windows_unattend")
	assert.False(t, byName["windows_unattend"].Executable)

	require.Contains(t, byName, "debian_postinstall")
	assert.True(t, byName["debian_postinstall"].Executable)

	require.Contains(t, byName, "domain_join")
	assert.True(t, byName["domain_join"].Executable)
	assert.Equal(t, "/srv/http/winpe/domainjoin.ps1", byName["domain_join"].Dest)
}

func TestTemplateVars(t *testing.T) {
	vars := artifact.TemplateVars(testConfig(t), artifact.Roots{TFTPRoot: "/t", HTTPRoot: "/h"})

	out, err := template.Render("__NETWORK__ __HTTP_PORT__ __TFTP_ROOT__\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0 80 /t\n", out)

	out, err = template.Render("__DNS_SERVERS__\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "server=10.0.0.11\nserver=10.0.0.12\n", out)

	out, err = template.Render("__DNS_SPACE__\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.11 10.0.0.12\n", out)

	out, err = template.Render("__DEBIAN_MIRROR_HOST__ __DEBIAN_MIRROR_PATH__\n", vars)
	require.NoError(t, err)
	assert.Equal(t, "deb.debian.org /debian\n", out)
}
