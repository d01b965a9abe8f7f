// types.go defines the domain types for the pictl CLI.
//
// These types are shared between the protocol layer (internal/gcs), the
// driver layer (internal/driver), and the CLI layer (internal/cli). They
// represent data as reported by the controller hardware; nothing here is
// persisted on disk except where a command explicitly exports a snapshot.
package model

import (
	"fmt"
	"strings"
)

// DeviceKind classifies how a discovered device is attached to the host.
//
//	standalone    — a single controller answering on its own serial port
//	daisy-member  — a controller reached through a daisy chain on a
//	                shared port, addressed by its chain index
type DeviceKind string

const (
	// KindStandalone indicates a controller that owns its serial port
	// exclusively and is addressed without a device-address prefix.
	KindStandalone DeviceKind = "standalone"

	// KindDaisyMember indicates a controller that shares a serial port
	// with other chain members and is addressed by its daisy-chain index.
	KindDaisyMember DeviceKind = "daisy-member"
)

// String returns the string representation of DeviceKind.
// This satisfies fmt.Stringer for human-readable CLI output.
func (k DeviceKind) String() string {
	return string(k)
}

// IsValid checks whether the DeviceKind value is one of the
// predefined valid kinds.
func (k DeviceKind) IsValid() bool {
	switch k {
	case KindStandalone, KindDaisyMember:
		return true
	default:
		return false
	}
}

// ParseDeviceKind converts a string to a DeviceKind.
// Returns an error if the string does not match any valid kind.
func ParseDeviceKind(s string) (DeviceKind, error) {
	kind := DeviceKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid device kind: %q (valid: standalone, daisy-member)", s)
	}
	return kind, nil
}

// DeviceInfo holds the identification of a single controller as reported
// by its *IDN? reply. All fields are plain strings exactly as the
// controller reported them, with surrounding whitespace trimmed.
type DeviceInfo struct {
	// Vendor is the manufacturer string, e.g. "Physik Instrumente (PI) GmbH & Co. KG".
	Vendor string `json:"vendor" yaml:"vendor"`

	// Model is the controller model designation, e.g. "C-884.4DC".
	Model string `json:"model" yaml:"model"`

	// SerialNumber is the unit serial number.
	SerialNumber string `json:"serialNumber" yaml:"serialNumber"`

	// Version is the firmware version string from the identification reply,
	// or the GCS library version when the identification reply omits it.
	Version string `json:"version" yaml:"version"`
}

// String returns a compact single-line summary of the device identity.
// Format: "<vendor> <model> (s/n <serial>, fw <version>)".
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %s (s/n %s, fw %s)", d.Vendor, d.Model, d.SerialNumber, d.Version)
}

// Parameter describes a single controller parameter as listed by the
// HPA? (help on parameters) reply. The controller reports one line per
// parameter; internal/gcs parses those lines into this struct.
type Parameter struct {
	// ID is the numeric parameter identifier. HPA? reports it in
	// hexadecimal notation (e.g. "0x7000000").
	ID uint32 `json:"id" yaml:"id"`

	// CommandLevel is the minimum command level required to change the
	// parameter. Level 0 parameters are user-writable; higher levels
	// require a service password.
	CommandLevel int `json:"commandLevel" yaml:"commandLevel"`

	// MaxItems is the number of items the parameter holds, typically the
	// number of axes it applies to.
	MaxItems int `json:"maxItems" yaml:"maxItems"`

	// DataType is the controller's type designation (e.g. "FLOAT", "INT",
	// "CHAR"). Reported verbatim.
	DataType string `json:"dataType" yaml:"dataType"`

	// Description is the human-readable parameter description.
	Description string `json:"description" yaml:"description"`

	// Options maps enumeration values to their descriptions for
	// parameters with a fixed value set. Empty for free-form parameters.
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// String returns a short "0x<id> <description>" form used in text output.
func (p Parameter) String() string {
	return fmt.Sprintf("0x%X %s", p.ID, p.Description)
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitNoDevice indicates no controller was found during enumeration,
	// or the requested controller index/port does not exist.
	ExitNoDevice ExitCode = 2

	// ExitSerialError indicates a serial port could not be opened or the
	// connection failed mid-session.
	ExitSerialError ExitCode = 3

	// ExitProtocolError indicates the controller answered, but the reply
	// could not be parsed or the controller reported a GCS error code.
	ExitProtocolError ExitCode = 4

	// ExitUnsupportedDevice indicates a device answered the probe but is
	// not a usable GCS controller.
	ExitUnsupportedDevice ExitCode = 5

	// ExitMotionError indicates an axis motion command failed or a
	// wait-on-target did not complete.
	ExitMotionError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate driver and protocol errors
// into appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
