package cli

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/ratestub/internal/config"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRoot_WithoutRunPrintsHelp(t *testing.T) {
	out, err := executeRoot(t)
	require.NoError(t, err)

	assert.Contains(t, out, "|_.__/\nA stub HTTP server for load and performance testing.",
		"banner is followed directly by the description")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--delay")
	assert.Contains(t, out, "--format")
	assert.Contains(t, out, "--run")
}

func TestRoot_Version(t *testing.T) {
	out, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestRoot_InvalidConfigRejectedBeforeBind(t *testing.T) {
	// Hold the port: a bind attempt would fail with a different error.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"min greater than max", []string{"--run", "--host", "127.0.0.1", "-p", port, "-d", "150-30"}, "delay"},
		{"unknown format", []string{"--run", "--host", "127.0.0.1", "-p", port, "-f", "xml"}, "format"},
		{"bad port", []string{"--run", "-p", "70000"}, "port"},
		{"bad log level", []string{"--run", "--host", "127.0.0.1", "-p", port, "--log-level", "loud"}, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			assert.True(t, config.IsValidationError(err), "want validation error, got %v", err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestBuildConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratestub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 4000
delay: "10-20"
format: text
dashboard:
  recentEntries: 7
`), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-c", path, "-p", "5000", "--no-tui", "--refresh", "1s", "--pretty"}))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port, "explicit flag wins")
	assert.Equal(t, "10-20", cfg.Delay, "file value kept when flag not set")
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 7, cfg.Dashboard.RecentEntries)
	assert.True(t, cfg.Dashboard.Disabled)
	assert.Equal(t, time.Second, cfg.RefreshInterval())
	assert.True(t, cfg.Pretty)
	assert.False(t, cfg.Run)
}

func TestBuildConfig_Defaults(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := buildConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestBuildConfig_MissingFile(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := buildConfig(cmd)
	assert.ErrorContains(t, err, "config file not found")
}

func TestReportError(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Delay = "200-100"
	reportError(&out, cfg.Validate())
	assert.True(t, strings.HasPrefix(out.String(), "Invalid configuration: "), out.String())
	assert.Contains(t, out.String(), "--help")

	out.Reset()
	reportError(&out, errors.New("listen tcp: address already in use"))
	assert.Equal(t, "Error: listen tcp: address already in use\n", out.String())
}
