// diag.go implements the "pictl diag" command.
//
// diag is the bring-up smoke test: it walks the full driver lifecycle
// against the first enumerated controller and dumps the controller's
// command help and parameter catalog between fenced markers, so the
// output can be diffed between firmware revisions or captured for a
// support ticket.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/pictl/internal/driver"
	"github.com/mmr-tortoise/pictl/internal/model"
)

// NewDiagCommand creates the "diag" cobra command.
func NewDiagCommand() *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "diag",
		Short: "Run a connection diagnostic against the first controller",
		Long: `Run a full lifecycle diagnostic: initialize the driver, enumerate
controllers, open the first one, dump its command help and parameter
catalog, then close the session and shut the driver down.

The help and parameter sections are bracketed by >>> and <<< markers so
the dump can be split mechanically.

Examples:
  pictl diag
  pictl diag --port /dev/ttyUSB0 --verbose`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiag(cmd.Context(), flags)
		},
	}

	addConnectFlags(cmd, flags)
	return cmd
}

// runDiag builds the driver from configuration and flags, then hands
// off to the testable diagnostic core.
func runDiag(ctx context.Context, flags *connectFlags) error {
	drv, _, err := buildDriver(flags)
	if err != nil {
		return err
	}
	return RunDiagnostic(ctx, drv, os.Stdout)
}

// RunDiagnostic executes the diagnostic sequence against drv, writing
// the report to out.
//
// The sequence is fixed:
//
//	Step 1: initialize the driver (shutdown deferred, runs on all paths)
//	Step 2: enumerate controllers; no controllers is an error
//	Step 3: open the first controller (close deferred, runs iff open
//	        succeeded)
//	Step 4: dump the "help" property between >>> HELP / <<< HELP
//	Step 5: dump the "parameters" property between >>> PARAMETERS /
//	        <<< PARAMETERS
//
// Cleanup is nested: the controller session closes before the driver
// shuts down, whether the dump succeeded or not.
func RunDiagnostic(ctx context.Context, drv *driver.Driver, out io.Writer) error {
	// Step 1: driver lifecycle. The deferred Shutdown is the single
	// shutdown point for every return path below.
	if err := drv.Initialize(); err != nil {
		return err
	}
	defer func() { _ = drv.Shutdown() }()

	// Step 2: enumeration. The snapshot is immutable; devices found here
	// stay valid handles even if later probes would differ.
	devices, err := drv.EnumerateDevices(ctx)
	if err != nil {
		return err
	}
	for _, dev := range devices {
		fmt.Fprintln(out, dev.Info().String())
	}
	if len(devices) == 0 {
		return model.NewCLIError(model.ExitNoDevice, "no controllers found")
	}

	// Step 3: open the first controller. Close is deferred here, after a
	// successful Open, so a failed open never triggers a close.
	ctrl := devices[0]
	VerboseLog("opening controller on %s", ctrl.Port())
	if err := ctrl.Open(ctx); err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	// Steps 4 and 5: property dumps. Both go through GetProperty so diag
	// exercises the same lookup path the properties command uses.
	for _, name := range []string{driver.PropertyHelp, driver.PropertyParameters} {
		marker := strings.ToUpper(name)
		fmt.Fprintf(out, ">>> %s\n", marker)

		value, err := ctrl.GetProperty(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprint(out, FormatProperty(value))

		fmt.Fprintf(out, "<<< %s\n\n", marker)
	}

	return nil
}

// FormatProperty renders a property value for the diagnostic dump.
// Maps are rendered as sorted "key: value" lines, parameter catalogs as
// one line per parameter, anything else through fmt. The result always
// ends with a newline unless the value is empty.
func FormatProperty(value any) string {
	switch v := value.(type) {
	case map[string]string:
		return formatStringMap(v)
	case []model.Parameter:
		return FormatParameterList(v)
	case string:
		if v == "" {
			return ""
		}
		return v + "\n"
	default:
		return fmt.Sprintf("%v\n", v)
	}
}

// formatStringMap renders a string map as sorted "key: value" lines.
// Sorting makes the dump stable across runs, which matters for diffing.
func formatStringMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, m[k])
	}
	return b.String()
}

// FormatParameterList renders the parameter catalog one parameter per
// line, sorted by parameter ID:
//
//	0x0000000E  INT    Numerator of the motor output factor
//	0x0000000F  INT    Denominator of the motor output factor
func FormatParameterList(params []model.Parameter) string {
	sorted := make([]model.Parameter, len(params))
	copy(sorted, params)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var b strings.Builder
	for _, p := range sorted {
		fmt.Fprintf(&b, "0x%08X  %-6s %s\n", p.ID, p.DataType, p.Description)
	}
	return b.String()
}
