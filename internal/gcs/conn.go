// conn.go implements the request/response engine for GCS2 exchanges.
//
// A Conn is a lightweight addressed view onto a shared link. Standalone
// controllers use the zero address (no prefix on the wire); daisy-chain
// members share one link and each gets a Conn carrying its chain index.
// The link's mutex guarantees that only one command/reply cycle is in
// flight on a physical port at a time, regardless of how many addressed
// views exist.
package gcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmr-tortoise/pictl/internal/transport"
)

// readPollInterval is the per-iteration read timeout used while
// accumulating a reply. Short polls keep context cancellation responsive
// without busy-waiting on the port.
const readPollInterval = 20 * time.Millisecond

// DefaultTimeout is the overall reply deadline applied when NewConn is
// given a zero timeout.
const DefaultTimeout = 2 * time.Second

// link is the shared state behind one physical connection. All Conn
// views on the same transport share a single link.
type link struct {
	mu      sync.Mutex
	t       transport.Transport
	timeout time.Duration
	closed  bool
}

// Conn is an addressed view onto a GCS2 link.
type Conn struct {
	link *link

	// addr is the daisy-chain device address. Zero means unaddressed
	// (standalone controller): no prefix is sent and none is expected.
	addr int
}

// NewConn creates a Conn over the given transport with the zero
// (standalone) address. If timeout is zero, DefaultTimeout is used.
func NewConn(t transport.Transport, timeout time.Duration) *Conn {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Conn{link: &link{t: t, timeout: timeout}}
}

// WithAddress returns a view of the same link addressed to the given
// daisy-chain device. The returned Conn shares the link's mutex and
// transport with the receiver; closing either closes the link.
func (c *Conn) WithAddress(addr int) *Conn {
	return &Conn{link: c.link, addr: addr}
}

// Address returns the daisy-chain address of this view (0 = standalone).
func (c *Conn) Address() int {
	return c.addr
}

// SetTimeout changes the overall reply deadline for all views sharing
// this link. Enumeration probes use a short timeout, then extend it for
// the working session.
func (c *Conn) SetTimeout(timeout time.Duration) {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()
	if timeout > 0 {
		c.link.timeout = timeout
	}
}

// Close closes the underlying transport. Safe to call multiple times;
// only the first call reaches the transport.
func (c *Conn) Close() error {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()

	if c.link.closed {
		return nil
	}
	c.link.closed = true
	return c.link.t.Close()
}

// Query sends a command and returns its reply with framing removed:
// continuation markers stripped, address prefixes removed, lines joined
// with "\n", and the trailing newline dropped.
func (c *Conn) Query(ctx context.Context, cmd string) (string, error) {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()
	return c.queryLocked(ctx, cmd)
}

// Send transmits a set command (one that produces no reply) and then
// verifies it with an ERR? query. A nonzero error code is returned as a
// *CommandError naming the offending command.
func (c *Conn) Send(ctx context.Context, cmd string) error {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()

	if err := c.writeLocked(cmd); err != nil {
		return err
	}

	code, err := c.errorCodeLocked(ctx)
	if err != nil {
		return err
	}
	if code != 0 {
		return &CommandError{Cmd: cmd, Code: code}
	}
	return nil
}

// ErrorCode queries the controller's error memory (ERR?). Reading the
// code also clears it on the controller.
func (c *Conn) ErrorCode(ctx context.Context) (int, error) {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()
	return c.errorCodeLocked(ctx)
}

// Stop sends the STP stop command to halt all axes immediately. STP
// deliberately raises the "stopped by command" code in the controller's
// error memory, so Stop clears it and treats it as success.
func (c *Conn) Stop(ctx context.Context) error {
	c.link.mu.Lock()
	defer c.link.mu.Unlock()

	if err := c.writeLocked("STP"); err != nil {
		return err
	}

	code, err := c.errorCodeLocked(ctx)
	if err != nil {
		return err
	}
	if code != 0 && code != errCodeStopped {
		return &CommandError{Cmd: "STP", Code: code}
	}
	return nil
}

// Internal locked operations. Callers must hold link.mu.

// queryLocked performs one command/reply cycle.
func (c *Conn) queryLocked(ctx context.Context, cmd string) (string, error) {
	if err := c.writeLocked(cmd); err != nil {
		return "", err
	}

	raw, err := c.readReplyLocked(ctx)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", cmd, err)
	}

	reply, err := normalizeReply(raw, c.addr)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", cmd, err)
	}
	return reply, nil
}

// writeLocked frames and transmits a single command. Stale input is
// flushed first so a leftover partial reply from an earlier exchange
// cannot corrupt the one we are about to read.
func (c *Conn) writeLocked(cmd string) error {
	if c.link.closed {
		return ErrClosed
	}

	_ = c.link.t.Flush()

	framed := formatCommand(c.addr, cmd)
	n, err := c.link.t.Write([]byte(framed))
	if err != nil {
		return &CommError{Op: "send", Err: err}
	}
	if n != len(framed) {
		return &CommError{Op: "send", Err: fmt.Errorf("incomplete write: %d of %d bytes", n, len(framed))}
	}
	return nil
}

// readReplyLocked accumulates bytes until the GCS2 reply is complete:
// the buffer ends with a linefeed whose line does not carry the
// continuation marker (a trailing space before the linefeed).
func (c *Conn) readReplyLocked(ctx context.Context) ([]byte, error) {
	deadline := time.Now().Add(c.link.timeout)
	buf := make([]byte, 0, 256)
	chunk := make([]byte, 256)

	for !replyComplete(buf) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if time.Now().After(deadline) {
			if len(buf) == 0 {
				return nil, ErrNoReply
			}
			return nil, fmt.Errorf("%w: partial reply %q", ErrTimeout, string(buf))
		}

		// Poll in short slices so a cancelled context is noticed
		// promptly even though transport reads cannot be interrupted.
		poll := min(time.Until(deadline), readPollInterval)
		if poll <= 0 {
			poll = time.Millisecond
		}
		if err := c.link.t.SetReadTimeout(poll); err != nil {
			return nil, &CommError{Op: "read", Err: err}
		}

		n, err := c.link.t.Read(chunk)
		if err != nil {
			return nil, &CommError{Op: "read", Err: err}
		}
		if n == 0 {
			// Read timeout tick — nothing arrived yet.
			continue
		}
		buf = append(buf, chunk[:n]...)
	}

	return buf, nil
}

// errorCodeLocked queries ERR? and parses the integer code.
func (c *Conn) errorCodeLocked(ctx context.Context) (int, error) {
	reply, err := c.queryLocked(ctx, "ERR?")
	if err != nil {
		return 0, err
	}

	code, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil {
		return 0, fmt.Errorf("%w: ERR? returned %q", ErrBadReply, reply)
	}
	return code, nil
}

// formatCommand frames a command for the wire: optional address prefix,
// then the command, terminated with a linefeed.
func formatCommand(addr int, cmd string) string {
	if addr > 0 {
		return fmt.Sprintf("%d %s\n", addr, cmd)
	}
	return cmd + "\n"
}

// replyComplete reports whether buf holds a full GCS2 reply. A reply is
// complete when it ends with a linefeed and the character before it
// (ignoring an optional carriage return) is not the continuation space.
func replyComplete(buf []byte) bool {
	if len(buf) == 0 || buf[len(buf)-1] != '\n' {
		return false
	}
	i := len(buf) - 2
	if i >= 0 && buf[i] == '\r' {
		i--
	}
	return i < 0 || buf[i] != ' '
}

// normalizeReply strips framing from a raw reply: per-line carriage
// returns, continuation spaces, and (for addressed views) the
// "0 <addr> " reply prefix. Lines are re-joined with "\n" and the
// trailing newline is dropped.
func normalizeReply(raw []byte, addr int) (string, error) {
	text := strings.TrimSuffix(string(raw), "\n")
	lines := strings.Split(text, "\n")

	prefix := ""
	if addr > 0 {
		prefix = fmt.Sprintf("0 %d ", addr)
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSuffix(line, " ")

		if prefix != "" {
			if !strings.HasPrefix(line, prefix) {
				return "", fmt.Errorf("%w: expected reply prefix %q in line %q", ErrBadReply, prefix, line)
			}
			line = strings.TrimPrefix(line, prefix)
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n"), nil
}
