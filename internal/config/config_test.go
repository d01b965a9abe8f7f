package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/pictl/internal/model"
)

// chdir changes the working directory for the duration of the test.
// It stands in for t.Chdir, which needs a newer Go than this toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}

// writeTempConfig creates a config file in a temp dir and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_ValidJSONC verifies that a configuration file with comments
// and trailing commas parses, since JSONC is the documented format.
func TestLoad_ValidJSONC(t *testing.T) {
	path := writeTempConfig(t, `{
		// Stage controller on the optical bench.
		"portGlobs": ["/dev/ttyUSB*"],
		"baudRate": 57600,
		"probeTimeoutMs": 500,
		"sessionTimeoutMs": 5000,
		"defaultAxis": "2", // the vertical axis
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/dev/ttyUSB*"}, cfg.PortGlobs)
	assert.Equal(t, 57600, cfg.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout())
	assert.Equal(t, 5*time.Second, cfg.SessionTimeout())
	assert.Equal(t, "2", cfg.DefaultAxis)
}

// TestLoad_MissingFile verifies the CLIError mapping for an explicit
// path that does not exist.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "not found")
}

// TestLoad_InvalidJSON verifies that a file that exists but cannot be
// parsed is an error, not a silent fallback to defaults.
func TestLoad_InvalidJSON(t *testing.T) {
	path := writeTempConfig(t, `{"portGlobs": [`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

// TestLoadOrDefault_NoFile verifies that the absence of any
// configuration file yields the zero configuration.
func TestLoadOrDefault_NoFile(t *testing.T) {
	// Run from an empty directory so no working-directory config is found.
	chdir(t, t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, cfg.PortGlobs)
	assert.Zero(t, cfg.BaudRate)
	assert.Zero(t, cfg.ProbeTimeout())
}

// TestLoadOrDefault_ExplicitPath verifies that an explicit path wins
// over the search order.
func TestLoadOrDefault_ExplicitPath(t *testing.T) {
	path := writeTempConfig(t, `{"baudRate": 9600}`)

	cfg, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, 9600, cfg.BaudRate)
}

// TestFind_WorkingDirectory verifies the first entry of the search
// order: a pictl.jsonc in the working directory.
func TestFind_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{}"), 0o644))
	chdir(t, dir)

	assert.Equal(t, FileName, Find())
}
