// serial.go implements Transport over a hardware serial port using
// go.bug.st/serial. PI controllers with a USB or RS-232 interface expose
// a plain 8N1 byte stream; the GCS2 dialect on top of it is handled by
// internal/gcs.
package transport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// defaultBaudRate is the factory default for PI USB CDC interfaces.
// Controllers on plain RS-232 may need a lower rate via SerialConfig.
const defaultBaudRate = 115200

// defaultTimeout is the read timeout applied when SerialConfig leaves
// Timeout zero. One second is enough for every documented GCS2 query on
// a healthy link while keeping enumeration of dead ports reasonably fast.
const defaultTimeout = time.Second

// Serial implements Transport using a hardware serial port.
type Serial struct {
	port     serial.Port
	portName string
	timeout  time.Duration
}

// SerialConfig holds configuration for opening a serial port.
type SerialConfig struct {
	// Port is the serial port path (e.g. "/dev/ttyUSB0" or "COM3").
	Port string

	// BaudRate is the communication speed. Default is 115200.
	BaudRate int

	// Timeout is the read timeout. Default is 1 second.
	Timeout time.Duration
}

// OpenSerial opens a serial port with the given configuration.
//
// The port is configured as 8 data bits, no parity, one stop bit, which
// is the fixed framing for GCS2 serial interfaces. Returns an error if
// the port path is empty, the port cannot be opened, or the read timeout
// cannot be applied.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = defaultBaudRate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.Timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Port, err)
	}

	return &Serial{
		port:     port,
		portName: cfg.Port,
		timeout:  cfg.Timeout,
	}, nil
}

func (t *Serial) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

func (t *Serial) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *Serial) Close() error {
	return t.port.Close()
}

func (t *Serial) SetReadTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return t.port.SetReadTimeout(timeout)
}

// Flush discards unread input bytes buffered by the OS driver.
func (t *Serial) Flush() error {
	return t.port.ResetInputBuffer()
}

// PortName returns the path this transport was opened on. Used for
// diagnostics and device listings.
func (t *Serial) PortName() string {
	return t.portName
}
