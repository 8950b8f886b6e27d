package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bootforge/bootforge/internal/app"
)

// writeEnvFile writes a complete, valid environment configuration and
// returns its path.
func writeEnvFile(t *testing.T, dir string, extra string) string {
	t.Helper()
	content := `SUBNET=10.0.0.0/24
GATEWAY=10.0.0.1
DNS_SERVERS=10.0.0.11,10.0.0.12
SERVER_IP=10.0.0.2
DOMAIN_NAME=corp.example.com
DOMAIN_JOIN_USER=joiner
DOMAIN_JOIN_PASSWORD=join-secret
ADMIN_USER=operator
ADMIN_PASSWORD=admin-secret
` + extra
	path := filepath.Join(dir, "provision.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, cfg app.Config) *app.App {
	t.Helper()
	cfg.LogFormat = "text"
	cfg.LogLevel = "error"
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	validated, err := app.NewConfig(cfg)
	require.NoError(t, err)
	return app.New(io.Discard, validated)
}

func TestRun_GenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	tftpRoot := filepath.Join(dir, "tftp")
	httpRoot := filepath.Join(dir, "http")

	a := newTestApp(t, app.Config{
		Command:  app.CommandGenerate,
		EnvPath:  writeEnvFile(t, dir, ""),
		TFTPRoot: tftpRoot,
		HTTPRoot: httpRoot,
	})
	require.NoError(t, a.Run(context.Background()))

	expected := []string{
		filepath.Join(tftpRoot, "dnsmasq.conf"),
		filepath.Join(tftpRoot, "boot.ipxe"),
		filepath.Join(httpRoot, "winpe", "autounattend.xml"),
		filepath.Join(httpRoot, "debian", "preseed.cfg"),
		filepath.Join(httpRoot, "debian", "postinstall.sh"),
		filepath.Join(httpRoot, "winpe", "domainjoin.ps1"),
	}
	for _, path := range expected {
		_, err := os.Stat(path)
		require.NoError(t, err, path)
	}

	conf, err := os.ReadFile(filepath.Join(tftpRoot, "dnsmasq.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "server=10.0.0.11\nserver=10.0.0.12")

	script, err := os.Stat(filepath.Join(httpRoot, "debian", "postinstall.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), script.Mode().Perm())
}

func TestRun_ValidationIsAHardGate(t *testing.T) {
	dir := t.TempDir()
	tftpRoot := filepath.Join(dir, "tftp")
	httpRoot := filepath.Join(dir, "http")

	envPath := filepath.Join(dir, "provision.env")
	require.NoError(t, os.WriteFile(envPath, []byte("SUBNET=10.0.0.0/24\nGATEWAY=bogus\n"), 0o644))

	a := newTestApp(t, app.Config{
		Command:  app.CommandGenerate,
		EnvPath:  envPath,
		TFTPRoot: tftpRoot,
		HTTPRoot: httpRoot,
	})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GATEWAY")

	_, statErr := os.Stat(tftpRoot)
	assert.True(t, os.IsNotExist(statErr), "no artifact is written when validation fails")
	_, statErr = os.Stat(httpRoot)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_FetchWithCustomCatalogue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/loader.bin" {
			w.Write([]byte("loader"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	tftpRoot := filepath.Join(dir, "tftp")
	httpRoot := filepath.Join(dir, "http")

	catalogPath := filepath.Join(dir, "assets.hcl")
	catalogSrc := `
asset "loader" {
  url        = "` + server.URL + `/loader.bin"
  dest       = "${tftp_root}/loader.bin"
  required   = true
  executable = true
}

directory "media" {
  path        = "${http_root}/winpe/media"
  placeholder = "Supply the installation media here.\n"
}
`
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogSrc), 0o644))

	a := newTestApp(t, app.Config{
		Command:     app.CommandFetch,
		EnvPath:     writeEnvFile(t, dir, ""),
		CatalogPath: catalogPath,
		TFTPRoot:    tftpRoot,
		HTTPRoot:    httpRoot,
	})
	require.NoError(t, a.Run(context.Background()))

	info, err := os.Stat(filepath.Join(tftpRoot, "loader.bin"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	_, err = os.Stat(filepath.Join(httpRoot, "winpe", "media", "README-PLACE-MEDIA-HERE.txt"))
	require.NoError(t, err)
}

func TestRun_CustomTemplatesDirectory(t *testing.T) {
	dir := t.TempDir()
	tftpRoot := filepath.Join(dir, "tftp")
	httpRoot := filepath.Join(dir, "http")

	// A template set missing a binding must fail the whole generation.
	tmplDir := filepath.Join(dir, "templates")
	require.NoError(t, os.MkdirAll(tmplDir, 0o755))
	for _, name := range []string{
		"dnsmasq.conf.tmpl", "boot.ipxe.tmpl", "autounattend.xml.tmpl",
		"preseed.cfg.tmpl", "postinstall.sh.tmpl", "domainjoin.ps1.tmpl",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(tmplDir, name), []byte("host=__SERVER_IP__\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "boot.ipxe.tmpl"), []byte("__NOT_A_BINDING__\n"), 0o644))

	a := newTestApp(t, app.Config{
		Command:      app.CommandGenerate,
		EnvPath:      writeEnvFile(t, dir, ""),
		TemplatesDir: tmplDir,
		TFTPRoot:     tftpRoot,
		HTTPRoot:     httpRoot,
	})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_A_BINDING")

	_, statErr := os.Stat(filepath.Join(tftpRoot, "dnsmasq.conf"))
	assert.True(t, os.IsNotExist(statErr), "fail-fast render leaves nothing committed")
}
