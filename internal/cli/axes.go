// axes.go implements the "pictl axes" command, which reports the
// configured axes of a controller with their stage assignment, position,
// and status flags.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/pictl/internal/driver"
)

// NewAxesCommand creates the "axes" cobra command.
func NewAxesCommand() *cobra.Command {
	flags := &connectFlags{}

	cmd := &cobra.Command{
		Use:   "axes",
		Short: "Show axis configuration and status",
		Long: `Open a controller session and report every configured axis: the
assigned stage, current position, whether the axis is referenced, and
whether it is on target.

Examples:
  pictl axes
  pictl axes --port /dev/ttyUSB0 --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAxes(cmd.Context(), flags)
		},
	}

	addConnectFlags(cmd, flags)
	return cmd
}

// axisStatus is one row of the axes report.
type axisStatus struct {
	ID         string  `json:"id"`
	Stage      string  `json:"stage"`
	Position   float64 `json:"position"`
	Referenced bool    `json:"referenced"`
	OnTarget   bool    `json:"onTarget"`
}

// runAxes is the main logic function for the axes command.
func runAxes(ctx context.Context, flags *connectFlags) error {
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

	axes, err := ctrl.Axes(ctx)
	if err != nil {
		return err
	}

	statuses := make([]axisStatus, 0, len(axes))
	for _, ax := range axes {
		st, err := collectAxisStatus(ctx, ax)
		if err != nil {
			return err
		}
		statuses = append(statuses, st)
	}

	if IsJSONOutput() {
		result := struct {
			Axes []axisStatus `json:"axes"`
		}{Axes: statuses}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(FormatAxisTable(statuses))
	return nil
}

// collectAxisStatus queries the full status of one axis.
func collectAxisStatus(ctx context.Context, ax *driver.Axis) (axisStatus, error) {
	st := axisStatus{ID: ax.ID()}

	var err error
	if st.Stage, err = ax.StageType(ctx); err != nil {
		return st, err
	}
	if st.Position, err = ax.Position(ctx); err != nil {
		return st, err
	}
	if st.Referenced, err = ax.Referenced(ctx); err != nil {
		return st, err
	}
	if st.OnTarget, err = ax.OnTarget(ctx); err != nil {
		return st, err
	}
	return st, nil
}

// FormatAxisTable renders the axis report as an aligned text table.
func FormatAxisTable(statuses []axisStatus) string {
	if len(statuses) == 0 {
		return "No axes configured.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-14s %-14s %-11s %s\n",
		"AXIS", "STAGE", "POSITION", "REFERENCED", "ON-TARGET")
	for _, st := range statuses {
		fmt.Fprintf(&b, "%-6s %-14s %-14.6f %-11s %s\n",
			st.ID, st.Stage, st.Position,
			formatYesNo(st.Referenced), formatYesNo(st.OnTarget))
	}
	return b.String()
}

// formatYesNo renders a boolean flag for table output.
func formatYesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
