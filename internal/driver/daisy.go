// daisy.go implements the shared-link bookkeeping for daisy chains.
//
// A daisy chain is several controllers wired behind a single serial
// port, each answering to a device address. The chain link is reference
// counted through member registration: the first member to open dials
// the port, later members reuse the link, and the link closes when the
// last open member closes.
package driver

import (
	"sync"

	"github.com/mmr-tortoise/pictl/internal/gcs"
)

// DaisyChain owns the shared serial link for one chain of controllers.
type DaisyChain struct {
	drv  *Driver
	port string

	// memberCount is the number of members discovered at enumeration
	// time. It does not change afterwards.
	memberCount int

	mu      sync.Mutex
	conn    *gcs.Conn
	members map[int]*Controller
}

// newDaisyChain creates the chain bookkeeping for a port with the given
// number of discovered members. The link is not dialed until the first
// member opens.
func newDaisyChain(d *Driver, port string, memberCount int) *DaisyChain {
	return &DaisyChain{
		drv:         d,
		port:        port,
		memberCount: memberCount,
		members:     make(map[int]*Controller),
	}
}

// Port returns the serial port the chain is attached to.
func (ch *DaisyChain) Port() string {
	return ch.port
}

// MemberCount returns the number of members discovered at enumeration.
func (ch *DaisyChain) MemberCount() int {
	return ch.memberCount
}

// ActiveMembers returns the number of members with an open session.
func (ch *DaisyChain) ActiveMembers() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.members)
}

// IsOpen reports whether the shared link is currently dialed.
func (ch *DaisyChain) IsOpen() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.conn != nil
}

// openMember acquires the shared link for a member, dialing it if this
// is the first open member, registers the member, and returns its
// addressed view of the link.
func (ch *DaisyChain) openMember(m *Controller) (*gcs.Conn, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.conn == nil {
		tr, err := ch.drv.dial(ch.port)
		if err != nil {
			return nil, err
		}
		ch.conn = gcs.NewConn(tr, ch.drv.cfg.SessionTimeout)
	}

	ch.members[m.addr] = m
	return ch.conn.WithAddress(m.addr), nil
}

// closeMember unregisters a member and closes the shared link when no
// open members remain.
func (ch *DaisyChain) closeMember(m *Controller) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	delete(ch.members, m.addr)
	if len(ch.members) > 0 {
		return nil
	}

	err := ch.conn.Close()
	ch.conn = nil
	return err
}

// Close closes the shared link directly. It refuses with ErrChainBusy
// while any member session is open — members must close first so their
// handles do not dangle over a dead link.
func (ch *DaisyChain) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if len(ch.members) > 0 {
		return ErrChainBusy
	}
	if ch.conn == nil {
		return nil
	}

	err := ch.conn.Close()
	ch.conn = nil
	return err
}
