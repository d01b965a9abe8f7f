// info.go implements the "pictl info" command, which opens a controller
// and reports its live identity, GCS syntax version, and firmware
// component versions.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewInfoCommand creates the "info" cobra command.
func NewInfoCommand() *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show controller identity and firmware versions",
		Long: `Open a controller session and query its live identification, GCS
syntax version, and the version of every firmware component it reports.

Examples:
  pictl info
  pictl info --index 1
  pictl info --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), flags)
		},
	}

	addConnectFlags(cmd, flags)
	return cmd
}

// runInfo is the main logic function for the info command.
func runInfo(ctx context.Context, flags *connectFlags) error {
	drv, _, err := buildDriver(flags)
	if err != nil {
		return err
	}
	if err := drv.Initialize(); err != nil {
		return err
	}
	defer func() { _ = drv.Shutdown() }()

	ctrl, _, err := selectController(ctx, drv, flags)
	if err != nil {
		return err
	}

	if err := ctrl.Open(ctx); err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	// Live identification, not the enumeration snapshot: the session may
	// outlive a firmware update or a chain re-plug since the probe ran.
	info, err := ctrl.Identification(ctx)
	if err != nil {
		return err
	}

	// The GCS syntax version is informational; very old firmware does
	// not implement CSV?, so a failure here is not fatal.
	syntax, err := ctrl.SyntaxVersion(ctx)
	if err != nil {
		VerboseLog("CSV? query failed: %v", err)
		syntax = ""
	}

	versions, err := ctrl.Versions(ctx)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		result := struct {
			Port         string            `json:"port"`
			Kind         string            `json:"kind"`
			Address      int               `json:"address,omitempty"`
			Vendor       string            `json:"vendor"`
			Model        string            `json:"model"`
			SerialNumber string            `json:"serialNumber"`
			Version      string            `json:"version,omitempty"`
			GCSSyntax    string            `json:"gcsSyntax,omitempty"`
			Components   map[string]string `json:"components"`
		}{
			Port:         ctrl.Port(),
			Kind:         ctrl.Kind().String(),
			Address:      ctrl.Address(),
			Vendor:       info.Vendor,
			Model:        info.Model,
			SerialNumber: info.SerialNumber,
			Version:      info.Version,
			GCSSyntax:    syntax,
			Components:   versions,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Port:    %s\n", ctrl.Port())
	fmt.Printf("Kind:    %s\n", ctrl.Kind())
	if ctrl.Address() != 0 {
		fmt.Printf("Address: %d\n", ctrl.Address())
	}
	fmt.Printf("Device:  %s\n", info)
	if syntax != "" {
		fmt.Printf("GCS:     syntax version %s\n", syntax)
	}

	if len(versions) > 0 {
		fmt.Println("\nFirmware components:")
		components := make([]string, 0, len(versions))
		for name := range versions {
			components = append(components, name)
		}
		sort.Strings(components)
		for _, name := range components {
			fmt.Printf("  %-20s %s\n", name, versions[name])
		}
	}
	return nil
}
