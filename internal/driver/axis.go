// axis.go implements the per-axis motion handle. An Axis is a thin view
// onto its controller's session; it holds no connection state of its
// own and becomes unusable (ErrNotOpen) once the controller closes.
package driver

import (
	"context"
	"time"
)

// defaultWaitPoll is the polling interval used by WaitOnTarget when the
// caller does not specify one. Target settling is mechanical, so
// polling faster than this just burns serial bandwidth.
const defaultWaitPoll = 50 * time.Millisecond

// Axis is a motion handle for one axis of an open controller.
type Axis struct {
	ctrl *Controller
	id   string
}

// ID returns the controller's identifier for this axis (e.g. "1", "X").
func (a *Axis) ID() string {
	return a.id
}

// Position returns the current axis position in physical units (POS?).
func (a *Axis) Position(ctx context.Context) (float64, error) {
	conn, err := a.ctrl.connection()
	if err != nil {
		return 0, err
	}
	return conn.Position(ctx, a.id)
}

// OnTarget reports whether the axis has settled on its target (ONT?).
func (a *Axis) OnTarget(ctx context.Context) (bool, error) {
	conn, err := a.ctrl.connection()
	if err != nil {
		return false, err
	}
	return conn.OnTarget(ctx, a.id)
}

// Referenced reports whether the axis has completed a reference move
// since power-up (FRF?). Absolute moves on an unreferenced axis are
// rejected by the controller with GCS error 5.
func (a *Axis) Referenced(ctx context.Context) (bool, error) {
	conn, err := a.ctrl.connection()
	if err != nil {
		return false, err
	}
	return conn.Referenced(ctx, a.id)
}

// StageType returns the name of the stage configured on this axis
// (CST?), or "NOSTAGE" when none is assigned.
func (a *Axis) StageType(ctx context.Context) (string, error) {
	conn, err := a.ctrl.connection()
	if err != nil {
		return "", err
	}
	return conn.StageType(ctx, a.id)
}

// Home starts a reference move to the reference switch (FRF). The move
// runs asynchronously on the controller; use WaitOnTarget to block
// until it completes.
func (a *Axis) Home(ctx context.Context) error {
	conn, err := a.ctrl.connection()
	if err != nil {
		return err
	}
	return conn.Reference(ctx, a.id)
}

// MoveTo commands an absolute move (MOV) and returns once the
// controller has accepted it. The motion itself completes
// asynchronously.
func (a *Axis) MoveTo(ctx context.Context, position float64) error {
	conn, err := a.ctrl.connection()
	if err != nil {
		return err
	}
	return conn.Move(ctx, a.id, position)
}

// MoveBy commands a relative move (MVR) from the current target
// position.
func (a *Axis) MoveBy(ctx context.Context, delta float64) error {
	conn, err := a.ctrl.connection()
	if err != nil {
		return err
	}
	return conn.MoveRelative(ctx, a.id, delta)
}

// WaitOnTarget polls the on-target flag until the axis settles, the
// context is cancelled, or a query fails. A zero poll interval selects
// the default.
func (a *Axis) WaitOnTarget(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = defaultWaitPoll
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		ont, err := a.OnTarget(ctx)
		if err != nil {
			return err
		}
		if ont {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
