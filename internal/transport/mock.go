// mock.go implements Transport for testing without hardware.
//
// The mock plays the controller side of a GCS2 conversation: each Write
// is recorded and, when the written command matches a scripted reply,
// the reply bytes are queued for subsequent Reads. Reads drain the queue
// and return (0, nil) when it is empty, mimicking a serial read timeout.
package transport

import (
	"strings"
	"sync"
	"time"
)

// Mock implements Transport for testing.
type Mock struct {
	mu sync.Mutex

	// Replies maps a command line (without the trailing LF) to the raw
	// reply bytes the mock queues when that command is written. Reply
	// strings must include GCS2 framing: continuation lines end with
	// " \n", the final line with "\n".
	Replies map[string]string

	// WriteErr, when set, is returned by every Write call.
	WriteErr error

	// Writes records every command line written to the mock, without
	// the trailing LF, in order.
	Writes []string

	// CloseCount is incremented on every Close call. Lifecycle tests
	// assert on it to verify close-exactly-once guarantees.
	CloseCount int

	// FlushCount is incremented on every Flush call.
	FlushCount int

	// ReadTimeout records the most recent SetReadTimeout value.
	ReadTimeout time.Duration

	pending []byte
}

// Stub is a convenience constructor creating a Mock with the given
// command→reply script.
func Stub(replies map[string]string) *Mock {
	return &Mock{Replies: replies}
}

func (m *Mock) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending) == 0 {
		// Nothing queued — behave like a serial read timeout.
		return 0, nil
	}
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

func (m *Mock) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	cmd := strings.TrimSuffix(string(p), "\n")
	m.Writes = append(m.Writes, cmd)

	if reply, ok := m.Replies[cmd]; ok {
		m.pending = append(m.pending, []byte(reply)...)
	}
	return len(p), nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCount++
	return nil
}

func (m *Mock) SetReadTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadTimeout = timeout
	return nil
}

// Flush counts the call but deliberately keeps queued reply bytes, so a
// scripted reply queued by a Write survives the pre-command flush the
// protocol layer performs.
func (m *Mock) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCount++
	return nil
}

// QueueRaw appends raw bytes to the pending read buffer without any
// command trigger. Useful for tests exercising unsolicited or malformed
// input.
func (m *Mock) QueueRaw(data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, []byte(data)...)
}
