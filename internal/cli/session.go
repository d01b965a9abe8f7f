// session.go holds the connection plumbing shared by all subcommands:
// flag wiring for port/baud selection, configuration loading, driver
// construction, and controller selection from enumeration results.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/pictl/internal/config"
	"github.com/mmr-tortoise/pictl/internal/driver"
	"github.com/mmr-tortoise/pictl/internal/model"
	"github.com/mmr-tortoise/pictl/internal/transport"
)

// connectFlags holds the device-selection flag values shared by every
// subcommand that talks to hardware.
type connectFlags struct {
	// port, when set, bypasses port discovery and probes exactly this
	// serial port.
	port string

	// baud overrides the serial baud rate (0 = config/default).
	baud int

	// index selects which enumerated device to operate on (0-based).
	index int
}

// addConnectFlags registers the shared device-selection flags on a
// subcommand.
func addConnectFlags(cmd *cobra.Command, flags *connectFlags) {
	cmd.Flags().StringVar(&flags.port, "port", "", "Serial port to use (skips discovery)")
	cmd.Flags().IntVar(&flags.baud, "baud", 0, "Serial baud rate (default 115200)")
	cmd.Flags().IntVar(&flags.index, "index", 0, "Device index from enumeration (0-based)")
}

// buildDriver loads the configuration and constructs a Driver honoring
// the shared connection flags. The caller owns the driver lifecycle:
// Initialize, then defer Shutdown.
func buildDriver(flags *connectFlags) (*driver.Driver, *config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, nil, err
	}

	drvCfg := driver.Config{
		PortGlobs:      cfg.PortGlobs,
		BaudRate:       cfg.BaudRate,
		ProbeTimeout:   cfg.ProbeTimeout(),
		SessionTimeout: cfg.SessionTimeout(),
	}
	if flags.baud != 0 {
		drvCfg.BaudRate = flags.baud
	}
	if flags.port != "" {
		// An explicit port becomes the only enumeration candidate.
		// GetPortsList may not report virtual ports (ptys, symlinks),
		// so the path is passed through rather than glob-matched.
		port := flags.port
		drvCfg.ListPorts = func() ([]string, error) {
			return []string{port}, nil
		}
	}

	VerboseLog("driver configuration: globs=%v baud=%d", drvCfg.PortGlobs, drvCfg.BaudRate)
	return driver.New(drvCfg), cfg, nil
}

// selectController enumerates devices and returns the one addressed by
// --index, along with the full enumeration snapshot.
func selectController(ctx context.Context, drv *driver.Driver, flags *connectFlags) (*driver.Controller, []*driver.Controller, error) {
	devices, err := drv.EnumerateDevices(ctx)
	if err != nil {
		return nil, nil, err
	}
	VerboseLog("enumeration found %d device(s)", len(devices))

	if len(devices) == 0 {
		return nil, nil, model.NewCLIError(model.ExitNoDevice, "no controllers found")
	}
	if flags.index < 0 || flags.index >= len(devices) {
		return nil, nil, model.NewCLIError(model.ExitNoDevice,
			fmt.Sprintf("device index %d out of range (found %d device(s))", flags.index, len(devices)))
	}

	return devices[flags.index], devices, nil
}

// probeGlobsFromPort is a helper for messages that show where discovery
// looked.
func probeGlobsFromPort(flags *connectFlags, cfg *config.Config) []string {
	if flags.port != "" {
		return []string{flags.port}
	}
	if len(cfg.PortGlobs) > 0 {
		return cfg.PortGlobs
	}
	return transport.DefaultPortGlobs
}
