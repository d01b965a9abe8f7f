package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/pictl/internal/transport"
)

// motionReplies scripts a standalone controller with two axes ready for
// motion commands. ERR? answers 0, so set commands succeed.
func motionReplies() map[string]string {
	return map[string]string{
		"*IDN?":  "PI, C-884.4DC, 0119024343, 1.0.0.1\n",
		"SAI?":   "1 \n2\n",
		"POS? 1": "1=10.000025\n",
		"ONT? 1": "1=1\n",
		"FRF? 1": "1=0\n",
		"CST? 1": "1=M-111.1DG\n",
		"ERR?":   "0\n",
	}
}

// openTestController enumerates and opens a single mocked controller.
func openTestController(t *testing.T, replies map[string]string) (*Controller, []*transport.Mock) {
	t.Helper()

	drv, dialed := newTestDriver(t,
		map[string]map[string]string{"/dev/ttyUSB0": replies},
		[]string{"/dev/ttyUSB0"})
	require.NoError(t, drv.Initialize())
	t.Cleanup(func() { _ = drv.Shutdown() })

	devices, err := drv.EnumerateDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)

	ctrl := devices[0]
	require.NoError(t, ctrl.Open(context.Background()))
	return ctrl, dialed["/dev/ttyUSB0"]
}

// TestAxes verifies SAI? enumeration into axis handles.
func TestAxes(t *testing.T) {
	ctrl, _ := openTestController(t, motionReplies())

	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)
	require.Len(t, axes, 2)
	assert.Equal(t, "1", axes[0].ID())
	assert.Equal(t, "2", axes[1].ID())
}

// TestAxis_Status verifies the per-axis status queries.
func TestAxis_Status(t *testing.T) {
	ctrl, _ := openTestController(t, motionReplies())

	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)
	ax := axes[0]

	pos, err := ax.Position(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10.000025, pos, 1e-9)

	ont, err := ax.OnTarget(context.Background())
	require.NoError(t, err)
	assert.True(t, ont)

	ref, err := ax.Referenced(context.Background())
	require.NoError(t, err)
	assert.False(t, ref)

	stage, err := ax.StageType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "M-111.1DG", stage)
}

// TestAxis_Move verifies that motion commands frame the target in plain
// decimal notation and verify with ERR?.
func TestAxis_Move(t *testing.T) {
	ctrl, mocks := openTestController(t, motionReplies())

	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)
	ax := axes[0]

	require.NoError(t, ax.MoveTo(context.Background(), 10.5))
	require.NoError(t, ax.MoveBy(context.Background(), -0.25))
	require.NoError(t, ax.Home(context.Background()))

	// The session transport is the second dial (after the probe).
	require.Len(t, mocks, 2)
	writes := mocks[1].Writes
	assert.Contains(t, writes, "MOV 1 10.5")
	assert.Contains(t, writes, "MVR 1 -0.25")
	assert.Contains(t, writes, "FRF 1")
}

// TestAxis_MoveRejected verifies that a nonzero ERR? code after a move
// surfaces to the caller.
func TestAxis_MoveRejected(t *testing.T) {
	replies := motionReplies()
	replies["ERR?"] = "5\n" // unreferenced axis

	ctrl, _ := openTestController(t, replies)
	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)

	err = axes[0].MoveTo(context.Background(), 10.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS error 5")
}

// TestAxis_WaitOnTarget verifies that WaitOnTarget returns promptly once
// the axis reports on target.
func TestAxis_WaitOnTarget(t *testing.T) {
	ctrl, _ := openTestController(t, motionReplies())
	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)

	err = axes[0].WaitOnTarget(context.Background(), time.Millisecond)
	require.NoError(t, err)
}

// TestAxis_WaitOnTarget_Cancelled verifies that a context deadline stops
// the wait on an axis that never settles.
func TestAxis_WaitOnTarget_Cancelled(t *testing.T) {
	replies := motionReplies()
	replies["ONT? 1"] = "1=0\n" // never on target

	ctrl, _ := openTestController(t, replies)
	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = axes[0].WaitOnTarget(ctx, time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestAxis_ClosedController verifies that axis handles fail cleanly once
// their controller session closes.
func TestAxis_ClosedController(t *testing.T) {
	ctrl, _ := openTestController(t, motionReplies())
	axes, err := ctrl.Axes(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.Close())

	_, err = axes[0].Position(context.Background())
	assert.ErrorIs(t, err, ErrNotOpen)
}

// TestController_Stop verifies that Stop halts without failing on the
// deliberate-stop code the controller raises after STP.
func TestController_Stop(t *testing.T) {
	replies := motionReplies()
	replies["ERR?"] = "10\n" // controller was stopped by command

	ctrl, mocks := openTestController(t, replies)
	require.NoError(t, ctrl.Stop(context.Background()))

	require.Len(t, mocks, 2)
	assert.Contains(t, mocks[1].Writes, "STP")
}

// TestController_SyntaxVersion verifies the CSV? query path.
func TestController_SyntaxVersion(t *testing.T) {
	replies := motionReplies()
	replies["CSV?"] = "2.0\n"

	ctrl, _ := openTestController(t, replies)

	syntax, err := ctrl.SyntaxVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.0", syntax)
}

// TestBusy verifies the all-axes on-target aggregation.
func TestBusy(t *testing.T) {
	replies := motionReplies()
	replies["ONT?"] = "1=1 \n2=0\n" // axis 2 still settling

	ctrl, _ := openTestController(t, replies)

	busy, err := ctrl.Busy(context.Background())
	require.NoError(t, err)
	assert.True(t, busy)
}
