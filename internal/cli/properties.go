// properties.go implements the "pictl properties" command: listing and
// dumping the introspective properties a controller exposes, with an
// optional YAML snapshot for archiving a controller's catalog.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/pictl/internal/driver"
	"github.com/mmr-tortoise/pictl/internal/model"
)

// NewPropertiesCommand creates the "properties" cobra command.
func NewPropertiesCommand() *cobra.Command {
	flags := &connectFlags{}
	var savePath string

	cmd := &cobra.Command{
		Use:   "properties [name]",
		Short: "List or dump controller properties",
		Long: `Without arguments, list the property names the controller supports.
With a property name, dump that property's value.

With --save, retrieve every property and write them to a YAML snapshot
file. Snapshots taken before and after a firmware update make catalog
changes easy to diff.

Examples:
  pictl properties
  pictl properties help
  pictl properties parameters --json
  pictl properties --save c884-catalog.yaml`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runProperties(cmd.Context(), flags, name, savePath)
		},
	}

	addConnectFlags(cmd, flags)
	cmd.Flags().StringVar(&savePath, "save", "", "Write all properties to a YAML snapshot file")
	return cmd
}

// runProperties is the main logic function for the properties command.
func runProperties(ctx context.Context, flags *connectFlags, name, savePath string) error {
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

	// Listing property names needs no session; everything else does.
	if name == "" && savePath == "" {
		printPropertyNames(ctrl.EnumerateProperties())
		return nil
	}

	if err := ctrl.Open(ctx); err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	if savePath != "" {
		return saveSnapshot(ctx, ctrl, savePath)
	}

	value, err := ctrl.GetProperty(ctx, name)
	if err != nil {
		return err
	}
	printPropertyValue(name, value)
	return nil
}

// printPropertyNames outputs the supported property names.
func printPropertyNames(names []string) {
	if IsJSONOutput() {
		result := struct {
			Properties []string `json:"properties"`
		}{Properties: names}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

// printPropertyValue outputs one property value in text or JSON form.
func printPropertyValue(name string, value any) {
	if IsJSONOutput() {
		result := map[string]any{name: value}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Print(FormatProperty(value))
}

// snapshot is the YAML document written by --save. The device block
// records where the catalog came from; the properties block holds one
// entry per property name.
type snapshot struct {
	Device struct {
		Port         string `yaml:"port"`
		Model        string `yaml:"model"`
		SerialNumber string `yaml:"serialNumber"`
		Version      string `yaml:"version,omitempty"`
	} `yaml:"device"`
	Properties map[string]any `yaml:"properties"`
}

// saveSnapshot retrieves every property and writes the YAML snapshot.
// A property that fails to retrieve fails the whole snapshot; a partial
// snapshot would silently lie when diffed later.
func saveSnapshot(ctx context.Context, ctrl *driver.Controller, path string) error {
	var snap snapshot
	info := ctrl.Info()
	snap.Device.Port = ctrl.Port()
	snap.Device.Model = info.Model
	snap.Device.SerialNumber = info.SerialNumber
	snap.Device.Version = info.Version
	snap.Properties = make(map[string]any)

	for _, name := range ctrl.EnumerateProperties() {
		value, err := ctrl.GetProperty(ctx, name)
		if err != nil {
			return model.WrapCLIError(
				model.ExitProtocolError,
				fmt.Sprintf("failed to retrieve property %q", name),
				err,
			)
		}
		snap.Properties[name] = value
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	VerboseLog("wrote %d properties to %s", len(snap.Properties), path)
	fmt.Printf("Snapshot written to %s\n", path)
	return nil
}
