package gcs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout  = errors.New("communication timeout")
	ErrNoReply  = errors.New("no reply from controller")
	ErrClosed   = errors.New("connection is closed")
	ErrBadReply = errors.New("malformed reply")
)

// CommError represents a transport-level communication failure.
type CommError struct {
	Op  string // Operation that failed (e.g. "query", "send")
	Err error  // Underlying error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// CommandError represents a nonzero GCS error code reported by the
// controller after a command, as returned by the ERR? query.
type CommandError struct {
	Cmd  string // Command that triggered the error
	Code int    // GCS error code
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: GCS error %d (%s)", e.Cmd, e.Code, ErrorMessage(e.Code))
}

// IsTimeout returns true if the error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNoReply returns true if the error indicates the controller never
// answered. Enumeration uses this to classify silent ports.
func IsNoReply(err error) bool {
	return errors.Is(err, ErrNoReply)
}

// GetCommandError extracts a CommandError from an error chain, if present.
func GetCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}
