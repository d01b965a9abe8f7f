// controller.go implements the per-device session: open/close lifecycle
// with once-only guarantees, identification, and property introspection.
package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mmr-tortoise/pictl/internal/gcs"
	"github.com/mmr-tortoise/pictl/internal/model"
)

// Properties retrievable through GetProperty, in the order
// EnumerateProperties reports them.
const (
	PropertyHelp       = "help"
	PropertyParameters = "parameters"
	PropertyVersions   = "versions"
)

// Controller is a single motion controller discovered during
// enumeration. It starts closed; Open establishes the session and Close
// tears it down. Open and Close are strictly paired: a second Open
// without an intervening Close fails, and Close on a closed controller
// fails. This makes "close exactly once iff open succeeded" checkable
// by construction.
type Controller struct {
	drv   *Driver
	port  string
	kind  model.DeviceKind
	addr  int
	chain *DaisyChain
	info  model.DeviceInfo

	mu   sync.Mutex
	conn *gcs.Conn
}

// newStandalone creates a handle for a controller that owns its port.
func newStandalone(d *Driver, port string, info model.DeviceInfo) *Controller {
	return &Controller{
		drv:  d,
		port: port,
		kind: model.KindStandalone,
		info: info,
	}
}

// newDaisyMember creates a handle for a controller reached through a
// daisy chain at the given address.
func newDaisyMember(d *Driver, chain *DaisyChain, addr int, info model.DeviceInfo) *Controller {
	return &Controller{
		drv:   d,
		port:  chain.Port(),
		kind:  model.KindDaisyMember,
		addr:  addr,
		chain: chain,
		info:  info,
	}
}

// Port returns the serial port path this controller is reached through.
func (c *Controller) Port() string {
	return c.port
}

// Kind reports whether the controller is standalone or a daisy-chain
// member.
func (c *Controller) Kind() model.DeviceKind {
	return c.kind
}

// Address returns the daisy-chain address, or 0 for standalone
// controllers.
func (c *Controller) Address() int {
	return c.addr
}

// Chain returns the daisy chain this controller belongs to, or nil for
// standalone controllers.
func (c *Controller) Chain() *DaisyChain {
	return c.chain
}

// Info returns the identification captured during enumeration. It does
// not require an open session.
func (c *Controller) Info() model.DeviceInfo {
	return c.info
}

// IsOpen reports whether a session is currently established.
func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Open establishes the controller session. Standalone controllers dial
// their own serial link; daisy members acquire the shared chain link
// (dialing it if this is the first open member) and register themselves
// on the chain.
//
// Returns ErrAlreadyOpen if a session is already established and
// ErrShutdown if the driver has been shut down.
func (c *Controller) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return ErrAlreadyOpen
	}
	if c.drv.down {
		return ErrShutdown
	}

	if c.chain != nil {
		conn, err := c.chain.openMember(c)
		if err != nil {
			return err
		}
		c.conn = conn
	} else {
		tr, err := c.drv.dial(c.port)
		if err != nil {
			return err
		}
		c.conn = gcs.NewConn(tr, c.drv.cfg.SessionTimeout)
	}

	c.drv.track(c)
	return nil
}

// Close tears down the session. For daisy members the shared link is
// released and closed once the last member has closed. Returns
// ErrNotOpen if there is no session to close.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotOpen
	}

	var err error
	if c.chain != nil {
		err = c.chain.closeMember(c)
	} else {
		err = c.conn.Close()
	}

	c.conn = nil
	c.drv.untrack(c)
	return err
}

// connection returns the session connection, or ErrNotOpen.
func (c *Controller) connection() (*gcs.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNotOpen
	}
	return c.conn, nil
}

// EnumerateProperties lists the introspective property names this
// controller supports through GetProperty.
func (c *Controller) EnumerateProperties() []string {
	return []string{PropertyHelp, PropertyParameters, PropertyVersions}
}

// GetProperty retrieves one introspective property by name:
//
//	"help"        → map[string]string of command descriptions
//	"parameters"  → []model.Parameter
//	"versions"    → map[string]string of component versions
//
// Returns ErrUnknownProperty for any other name.
func (c *Controller) GetProperty(ctx context.Context, name string) (any, error) {
	switch name {
	case PropertyHelp:
		return c.Help(ctx)
	case PropertyParameters:
		return c.Parameters(ctx)
	case PropertyVersions:
		return c.Versions(ctx)
	default:
		return nil, fmt.Errorf("%w: %q (valid: %s)",
			ErrUnknownProperty, name, strings.Join(c.EnumerateProperties(), ", "))
	}
}

// Help returns the controller's command help catalog (HLP?).
func (c *Controller) Help(ctx context.Context) (map[string]string, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Help(ctx)
}

// Parameters returns the controller's parameter catalog (HPA?).
func (c *Controller) Parameters(ctx context.Context) ([]model.Parameter, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Parameters(ctx)
}

// SyntaxVersion returns the GCS syntax version the controller speaks
// (CSV?), e.g. "2.0".
func (c *Controller) SyntaxVersion(ctx context.Context) (string, error) {
	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	return conn.SyntaxVersion(ctx)
}

// Stop halts all axes immediately (STP). The deliberate-stop error code
// the controller raises is cleared and not treated as a failure.
func (c *Controller) Stop(ctx context.Context) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	return conn.Stop(ctx)
}

// Versions returns the firmware component versions (VER?).
func (c *Controller) Versions(ctx context.Context) (map[string]string, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	return conn.Versions(ctx)
}

// Identification queries the controller's live identity (*IDN?) and
// refreshes the cached Info. Daisy members always identify over the
// addressed link, which is how chained devices must be asked.
func (c *Controller) Identification(ctx context.Context) (model.DeviceInfo, error) {
	conn, err := c.connection()
	if err != nil {
		return model.DeviceInfo{}, err
	}

	info, err := conn.Identification(ctx)
	if err != nil {
		return model.DeviceInfo{}, err
	}
	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
	return info, nil
}

// Axes enumerates the configured axes (SAI?) and returns motion handles
// for them.
func (c *Controller) Axes(ctx context.Context) ([]*Axis, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	ids, err := conn.Axes(ctx)
	if err != nil {
		return nil, err
	}

	axes := make([]*Axis, 0, len(ids))
	for _, id := range ids {
		axes = append(axes, &Axis{ctrl: c, id: id})
	}
	return axes, nil
}

// Busy reports whether any axis is still settling toward its target.
// It queries on-target status for all axes at once (bare ONT?).
func (c *Controller) Busy(ctx context.Context) (bool, error) {
	conn, err := c.connection()
	if err != nil {
		return false, err
	}

	reply, err := conn.Query(ctx, "ONT?")
	if err != nil {
		return false, err
	}
	values, err := gcs.ParseAxisValues(reply)
	if err != nil {
		return false, err
	}

	for _, v := range values {
		if v == "0" {
			return true, nil
		}
	}
	return false, nil
}
