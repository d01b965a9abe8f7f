// Package cli — list.go implements the "pictl list" command.
//
// The list command enumerates attached controllers by probing candidate
// serial ports with an identification query. Results are presented as a
// text table or JSON array, depending on the --json flag. Enumeration
// only probes; it leaves no session open.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/pictl/internal/driver"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attached controllers",
		Long: `List all controllers reachable on the candidate serial ports.

Each controller is shown with its port, attachment kind (standalone or
daisy-member), chain address, model, and serial number.

Examples:
  pictl list
  pictl list --port /dev/ttyUSB0
  pictl list --json`,

		// No positional arguments are required for the list command.
		Args: cobra.NoArgs,

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), flags)
		},
	}

	addConnectFlags(cmd, flags)
	return cmd
}

// runList is the main logic function for the list command.
// It initializes the driver, enumerates devices, and outputs results
// in the appropriate format.
func runList(ctx context.Context, flags *connectFlags) error {
	drv, cfg, err := buildDriver(flags)
	if err != nil {
		return err
	}
	if err := drv.Initialize(); err != nil {
		return err
	}
	// defer ensures the driver is shut down when this function returns,
	// closing any connection enumeration may have left behind.
	defer func() { _ = drv.Shutdown() }()

	devices, err := drv.EnumerateDevices(ctx)
	if err != nil {
		return err
	}
	VerboseLog("found %d device(s) on globs %v", len(devices), probeGlobsFromPort(flags, cfg))

	printListResult(devices)
	return nil
}

// printListResult outputs the device list in text or JSON format,
// depending on the global --json flag.
func printListResult(devices []*driver.Controller) {
	if IsJSONOutput() {
		printListResultJSON(devices)
	} else {
		fmt.Print(FormatDeviceTable(devices))
	}
}

// listDeviceJSON is the JSON output structure for a single device in
// the list command.
type listDeviceJSON struct {
	Port         string `json:"port"`
	Kind         string `json:"kind"`
	Address      int    `json:"address,omitempty"`
	Vendor       string `json:"vendor"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Version      string `json:"version,omitempty"`
}

// printListResultJSON outputs the device list as structured JSON.
// The top-level key is "devices" containing an array of device objects.
func printListResultJSON(devices []*driver.Controller) {
	type resultJSON struct {
		Devices []listDeviceJSON `json:"devices"`
	}

	result := resultJSON{
		// Use an empty slice instead of nil to ensure JSON output shows []
		// instead of null when no devices are found.
		Devices: make([]listDeviceJSON, 0, len(devices)),
	}

	for _, dev := range devices {
		info := dev.Info()
		result.Devices = append(result.Devices, listDeviceJSON{
			Port:         dev.Port(),
			Kind:         dev.Kind().String(),
			Address:      dev.Address(),
			Vendor:       info.Vendor,
			Model:        info.Model,
			SerialNumber: info.SerialNumber,
			Version:      info.Version,
		})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// FormatDeviceTable renders the enumerated devices as a human-readable
// text table with aligned columns. Returns a "No controllers found."
// line when the list is empty.
//
// The table format is:
//
//	PORT           KIND          ADDR  MODEL       SERIAL
//	/dev/ttyUSB0   standalone    -     C-884.4DC   0123456789
//	/dev/ttyUSB1   daisy-member  1     C-863.11    0017800222
//
// This function is exported for testing purposes (tested in list_test.go).
func FormatDeviceTable(devices []*driver.Controller) string {
	if len(devices) == 0 {
		return "No controllers found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-14s %-5s %-14s %s\n",
		"PORT", "KIND", "ADDR", "MODEL", "SERIAL")

	for _, dev := range devices {
		info := dev.Info()
		fmt.Fprintf(&b, "%-16s %-14s %-5s %-14s %s\n",
			dev.Port(),
			dev.Kind().String(),
			FormatChainAddress(dev.Address()),
			info.Model,
			info.SerialNumber,
		)
	}
	return b.String()
}

// FormatChainAddress renders a daisy-chain address for table output.
// Standalone controllers have no address and show "-".
//
// Example:
//
//	0 → "-"
//	3 → "3"
func FormatChainAddress(addr int) string {
	if addr == 0 {
		return "-"
	}
	return strconv.Itoa(addr)
}
