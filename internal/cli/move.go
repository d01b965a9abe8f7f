// move.go implements the "pictl move" command: absolute and relative
// axis motion, reference moves, and optional blocking until the axis
// settles on target.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/pictl/internal/driver"
	"github.com/mmr-tortoise/pictl/internal/model"
)

// moveFlags holds the motion-specific flag values.
type moveFlags struct {
	axis     string
	relative bool
	home     bool
	stop     bool
	wait     bool
	timeout  time.Duration
}

// NewMoveCommand creates the "move" cobra command.
func NewMoveCommand() *cobra.Command {
	flags := &connectFlags{}
	mf := &moveFlags{}

	cmd := &cobra.Command{
		Use:   "move [target]",
		Short: "Move an axis",
		Long: `Command axis motion on a controller. The target is an absolute
position in physical units, or a delta with --relative. With --home the
axis performs a reference move instead and no target is given.

Absolute moves require a referenced axis; run with --home first on a
freshly powered controller.

Examples:
  pictl move 10.5
  pictl move --axis 2 --relative -0.25 --wait
  pictl move --home --wait
  pictl move --stop`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseMoveTarget(args, mf)
			if err != nil {
				return err
			}
			return runMove(cmd.Context(), flags, mf, target)
		},
	}

	addConnectFlags(cmd, flags)
	cmd.Flags().StringVar(&mf.axis, "axis", "", "Axis identifier (default: configured or first axis)")
	cmd.Flags().BoolVar(&mf.relative, "relative", false, "Treat target as a delta from the current target")
	cmd.Flags().BoolVar(&mf.home, "home", false, "Perform a reference move instead of a positioning move")
	cmd.Flags().BoolVar(&mf.stop, "stop", false, "Halt all axes immediately instead of moving")
	cmd.Flags().BoolVar(&mf.wait, "wait", false, "Block until the axis reports on-target")
	cmd.Flags().DurationVar(&mf.timeout, "timeout", 30*time.Second, "Maximum time to wait with --wait")
	return cmd
}

// parseMoveTarget validates the positional target against the flags.
// --home and --stop take no target; every other mode requires one.
func parseMoveTarget(args []string, mf *moveFlags) (float64, error) {
	if mf.home || mf.stop {
		if len(args) != 0 {
			return 0, model.NewCLIError(model.ExitGeneralError,
				"--home and --stop take no target position")
		}
		return 0, nil
	}

	if len(args) == 0 {
		return 0, model.NewCLIError(model.ExitGeneralError,
			"a target position is required (or use --home or --stop)")
	}
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid target position %q", args[0]))
	}
	return target, nil
}

// runMove is the main logic function for the move command.
func runMove(ctx context.Context, flags *connectFlags, mf *moveFlags, target float64) error {
	drv, cfg, err := buildDriver(flags)
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

	// --stop is controller-wide, not per axis, and must not be delayed
	// by axis enumeration.
	if mf.stop {
		if err := ctrl.Stop(ctx); err != nil {
			return model.WrapCLIError(model.ExitMotionError, "stop command failed", err)
		}
		fmt.Println("All axes stopped.")
		return nil
	}

	axisID := mf.axis
	if axisID == "" {
		axisID = cfg.DefaultAxis
	}
	ax, err := resolveAxis(ctx, ctrl, axisID)
	if err != nil {
		return err
	}

	switch {
	case mf.home:
		VerboseLog("referencing axis %s", ax.ID())
		err = ax.Home(ctx)
	case mf.relative:
		VerboseLog("moving axis %s by %v", ax.ID(), target)
		err = ax.MoveBy(ctx, target)
	default:
		VerboseLog("moving axis %s to %v", ax.ID(), target)
		err = ax.MoveTo(ctx, target)
	}
	if err != nil {
		return model.WrapCLIError(model.ExitMotionError, "motion command rejected", err)
	}

	if mf.wait {
		waitCtx, cancel := context.WithTimeout(ctx, mf.timeout)
		defer cancel()
		if err := ax.WaitOnTarget(waitCtx, 0); err != nil {
			return model.WrapCLIError(model.ExitMotionError,
				fmt.Sprintf("axis %s did not settle within %v", ax.ID(), mf.timeout), err)
		}
	}

	pos, err := ax.Position(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Axis %s at %s\n", ax.ID(), strconv.FormatFloat(pos, 'f', -1, 64))
	return nil
}

// resolveAxis finds the requested axis on the controller, or the first
// configured axis when no identifier is given.
func resolveAxis(ctx context.Context, ctrl *driver.Controller, id string) (*driver.Axis, error) {
	axes, err := ctrl.Axes(ctx)
	if err != nil {
		return nil, err
	}
	if len(axes) == 0 {
		return nil, model.NewCLIError(model.ExitUnsupportedDevice, "controller reports no configured axes")
	}

	if id == "" {
		return axes[0], nil
	}
	for _, ax := range axes {
		if ax.ID() == id {
			return ax, nil
		}
	}
	return nil, model.NewCLIError(model.ExitGeneralError,
		fmt.Sprintf("axis %q not configured on this controller", id))
}
