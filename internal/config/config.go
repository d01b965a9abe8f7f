// Package config handles loading of the pictl tool configuration.
//
// The configuration file uses JSONC (JSON with Comments), so this
// package uses github.com/tidwall/jsonc to strip comments before
// parsing with the standard encoding/json library. Comments matter here
// because the file typically documents which physical port belongs to
// which instrument.
//
// Search order when no --config flag is given:
//  1. ./pictl.jsonc (working directory)
//  2. $HOME/.config/pictl/pictl.jsonc
//
// A missing configuration file is not an error — every setting has a
// default — but a file that exists and fails to parse is.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/pictl/internal/model"
)

// FileName is the canonical configuration file name.
const FileName = "pictl.jsonc"

// Config is the parsed tool configuration. JSON field names are the
// ones users write in pictl.jsonc.
type Config struct {
	// PortGlobs selects candidate serial ports for enumeration.
	// Empty means the built-in platform defaults.
	PortGlobs []string `json:"portGlobs,omitempty"`

	// BaudRate for serial connections. Zero means the driver default
	// (115200).
	BaudRate int `json:"baudRate,omitempty"`

	// ProbeTimeoutMS bounds identification probes during enumeration,
	// in milliseconds. Zero means the driver default.
	ProbeTimeoutMS int `json:"probeTimeoutMs,omitempty"`

	// SessionTimeoutMS is the reply deadline for open sessions, in
	// milliseconds. Zero means the driver default.
	SessionTimeoutMS int `json:"sessionTimeoutMs,omitempty"`

	// DefaultAxis is the axis targeted by motion commands when --axis
	// is not given. Empty means the controller's first axis.
	DefaultAxis string `json:"defaultAxis,omitempty"`
}

// ProbeTimeout returns the probe timeout as a duration (0 = default).
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// SessionTimeout returns the session timeout as a duration (0 = default).
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMS) * time.Millisecond
}

// Load reads and parses the configuration file at the given path.
//
// Returns a CLIError with ExitGeneralError if the file does not exist —
// Load is only called with explicit paths (--config) or paths that
// Find already verified, so a missing file here is a user error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitGeneralError,
				fmt.Sprintf("configuration file not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// parsing with the standard library.
	cleanJSON := jsonc.ToJSON(data)

	var cfg Config
	if err := json.Unmarshal(cleanJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration at %s: %w", path, err)
	}

	return &cfg, nil
}

// Find locates the configuration file using the documented search
// order. Returns the empty string when no file exists, which callers
// treat as "use defaults".
func Find() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "pictl", FileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}

	return ""
}

// LoadOrDefault loads the configuration from the explicit path if one
// is given, otherwise from the search path, otherwise returns the zero
// configuration (all defaults).
func LoadOrDefault(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}
	if path := Find(); path != "" {
		return Load(path)
	}
	return &Config{}, nil
}
