// Package transport provides the byte-level communication layer between
// the GCS protocol engine and controller hardware.
//
// The Transport interface abstracts a half-duplex byte stream so the
// protocol layer can run unchanged over a real serial port or a scripted
// mock during tests. The serial implementation uses go.bug.st/serial,
// which also supplies cross-platform port enumeration for device
// discovery (see ports.go).
package transport

import (
	"io"
	"time"
)

// Transport is the interface for low-level communication with a
// controller. This abstraction allows testing with mock implementations.
//
// Read is expected to honor the timeout set via SetReadTimeout and
// return (0, nil) when the timeout expires with no data, matching the
// behavior of go.bug.st/serial ports. The protocol layer treats a
// zero-byte read as "nothing arrived yet" rather than a hard error.
type Transport interface {
	io.ReadWriteCloser

	// SetReadTimeout sets the read timeout duration for subsequent
	// Read calls.
	SetReadTimeout(timeout time.Duration) error

	// Flush discards any buffered input data. Called before sending a
	// command so that a stale, partially read reply from a previous
	// (possibly failed) exchange cannot be mistaken for the new reply.
	Flush() error
}
