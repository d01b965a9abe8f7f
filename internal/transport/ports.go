// ports.go implements candidate serial port discovery for device
// enumeration. The driver probes every candidate port with an
// identification query; this file only decides which ports are worth
// probing.
package transport

import (
	"fmt"
	"path"
	"path/filepath"

	"go.bug.st/serial"
)

// DefaultPortGlobs are the patterns used to select candidate ports when
// the configuration does not specify any. They cover the common USB
// serial device names on Linux, macOS, and Windows.
var DefaultPortGlobs = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/cu.usbserial*",
	"COM*",
}

// ListCandidatePorts returns the serial ports present on the system that
// match at least one of the given glob patterns. If globs is empty,
// DefaultPortGlobs is used.
//
// The returned order follows the operating system's enumeration order,
// which is stable across calls on all supported platforms. This makes
// "open the first device" deterministic for a fixed hardware setup.
func ListCandidatePorts(globs []string) ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return FilterPorts(ports, globs), nil
}

// FilterPorts returns the subset of ports matching at least one glob.
// If globs is empty, DefaultPortGlobs is used. Matching is attempted
// against both the full port path and its base name, because Windows
// port names ("COM3") have no directory component while Unix device
// paths do.
func FilterPorts(ports, globs []string) []string {
	if len(globs) == 0 {
		globs = DefaultPortGlobs
	}

	matched := make([]string, 0, len(ports))
	for _, port := range ports {
		if matchesAny(port, globs) {
			matched = append(matched, port)
		}
	}
	return matched
}

// matchesAny reports whether the port matches at least one pattern,
// either as a full path or by base name.
func matchesAny(port string, globs []string) bool {
	base := filepath.Base(port)
	for _, glob := range globs {
		// Malformed patterns are treated as non-matching rather than
		// failing the whole enumeration.
		if ok, err := path.Match(glob, port); err == nil && ok {
			return true
		}
		if ok, err := path.Match(glob, base); err == nil && ok {
			return true
		}
	}
	return false
}
