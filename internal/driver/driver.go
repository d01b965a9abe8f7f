// driver.go implements the process-wide Driver: configuration,
// initialization/shutdown lifecycle, and device enumeration.
package driver

import (
	"context"
	"time"

	"github.com/mmr-tortoise/pictl/internal/gcs"
	"github.com/mmr-tortoise/pictl/internal/model"
	"github.com/mmr-tortoise/pictl/internal/transport"
)

const (
	// defaultProbeTimeout bounds the wait for an identification reply
	// during enumeration. Ports with no GCS device stay silent, so every
	// dead candidate port costs one probe timeout per probed address.
	defaultProbeTimeout = 300 * time.Millisecond

	// defaultSessionTimeout is the reply deadline for a working session.
	// Large introspection replies (HPA? lists hundreds of parameters)
	// need more headroom than a probe.
	defaultSessionTimeout = 3 * time.Second

	// maxDaisyAddress is the highest daisy-chain device address probed
	// during enumeration. Chains longer than this are uncommon and can
	// be reached by configuring explicit addresses later if needed.
	maxDaisyAddress = 4
)

// Config holds driver configuration. The zero value is usable: all
// fields fall back to defaults in New.
type Config struct {
	// PortGlobs selects candidate serial ports for enumeration.
	// Empty means transport.DefaultPortGlobs.
	PortGlobs []string

	// BaudRate for serial connections. Zero means the transport default.
	BaudRate int

	// ProbeTimeout bounds identification probes during enumeration.
	ProbeTimeout time.Duration

	// SessionTimeout is the reply deadline applied to open sessions.
	SessionTimeout time.Duration

	// ListPorts enumerates candidate port paths. Defaults to
	// transport.ListCandidatePorts over PortGlobs. Injected in tests.
	ListPorts func() ([]string, error)

	// Dial opens a transport to a port path. Defaults to
	// transport.OpenSerial. Injected in tests.
	Dial func(port string) (transport.Transport, error)
}

// Driver grants access to the family of controllers reachable from this
// process. It owns every connection opened through it: Shutdown closes
// whatever is still open, so a deferred Shutdown guarantees cleanup on
// any exit path.
type Driver struct {
	cfg Config

	initialized bool
	down        bool

	// open tracks controllers with an established session, so Shutdown
	// can close them. Keyed by the controller pointer; insertion order
	// does not matter for cleanup.
	open map[*Controller]struct{}
}

// New creates a Driver with the given configuration, applying defaults
// for unset fields.
func New(cfg Config) *Driver {
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = defaultSessionTimeout
	}
	if cfg.ListPorts == nil {
		globs := cfg.PortGlobs
		cfg.ListPorts = func() ([]string, error) {
			return transport.ListCandidatePorts(globs)
		}
	}
	if cfg.Dial == nil {
		baud := cfg.BaudRate
		cfg.Dial = func(port string) (transport.Transport, error) {
			return transport.OpenSerial(transport.SerialConfig{
				Port:     port,
				BaudRate: baud,
			})
		}
	}

	return &Driver{
		cfg:  cfg,
		open: make(map[*Controller]struct{}),
	}
}

// Initialize prepares the driver for use. It is idempotent; calling it
// on an already initialized driver is a no-op. A driver that has been
// shut down cannot be re-initialized.
func (d *Driver) Initialize() error {
	if d.down {
		return ErrShutdown
	}
	d.initialized = true
	return nil
}

// Shutdown releases everything the driver owns: every controller still
// open is closed (which also tears down daisy-chain links). Shutdown is
// idempotent — the second and later calls are no-ops — so callers can
// defer it unconditionally.
func (d *Driver) Shutdown() error {
	if d.down {
		return nil
	}
	d.down = true

	// Close remaining sessions. Errors are collected into the first
	// non-nil error; cleanup continues regardless, because a failure to
	// close one controller must not leak the others.
	var firstErr error
	for ctrl := range d.open {
		if err := ctrl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EnumerateDevices probes every candidate serial port and returns the
// controllers found, in port enumeration order. Daisy-chain members are
// returned as individual controllers, ordered by chain address.
//
// The returned slice is a snapshot: it is built once per call and never
// mutated afterwards by the driver.
//
// Ports that cannot be opened or hold no GCS device are skipped
// silently, mirroring how unsupported devices are shunted aside during
// discovery rather than failing the whole enumeration.
func (d *Driver) EnumerateDevices(ctx context.Context) ([]*Controller, error) {
	if d.down {
		return nil, ErrShutdown
	}
	if !d.initialized {
		return nil, ErrNotInitialized
	}

	ports, err := d.cfg.ListPorts()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitSerialError, "failed to enumerate serial ports", err)
	}

	var devices []*Controller
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		found, err := d.probePort(ctx, port)
		if err != nil {
			// Context cancellation is the only probe error that aborts
			// the sweep; anything else means "no usable device here".
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		devices = append(devices, found...)
	}

	return devices, nil
}

// probePort opens one candidate port, classifies what answers, and
// returns controller handles for it. The probe connection is always
// closed before returning — controllers dial their own session on Open.
func (d *Driver) probePort(ctx context.Context, port string) ([]*Controller, error) {
	tr, err := d.cfg.Dial(port)
	if err != nil {
		return nil, err
	}

	conn := gcs.NewConn(tr, d.cfg.ProbeTimeout)
	defer func() { _ = conn.Close() }()

	// Probe daisy-chain addresses first. On a chain, every member
	// answers an addressed *IDN?; a standalone controller ignores
	// addressed commands entirely.
	type member struct {
		addr int
		info model.DeviceInfo
	}
	var members []member

	for addr := 1; addr <= maxDaisyAddress; addr++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		info, err := conn.WithAddress(addr).Identification(ctx)
		if err != nil {
			continue
		}
		members = append(members, member{addr: addr, info: info})
	}

	if len(members) >= 2 {
		chain := newDaisyChain(d, port, len(members))
		ctrls := make([]*Controller, 0, len(members))
		for _, m := range members {
			ctrls = append(ctrls, newDaisyMember(d, chain, m.addr, m.info))
		}
		return ctrls, nil
	}

	// Zero or one addressed responder: treat the port as a standalone
	// candidate. A single-member "chain" is indistinguishable from a
	// standalone controller in practice, so it is rebuilt as one.
	info, err := conn.Identification(ctx)
	if err != nil {
		return nil, err
	}
	return []*Controller{newStandalone(d, port, info)}, nil
}

// dial opens a session transport for a controller, wrapping failures
// with the serial exit code so the CLI maps them correctly.
func (d *Driver) dial(port string) (transport.Transport, error) {
	tr, err := d.cfg.Dial(port)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitSerialError, "failed to open serial port "+port, err)
	}
	return tr, nil
}

// track registers a controller with an established session for cleanup
// at Shutdown.
func (d *Driver) track(c *Controller) {
	d.open[c] = struct{}{}
}

// untrack removes a controller after its session closed.
func (d *Driver) untrack(c *Controller) {
	delete(d.open, c)
}
