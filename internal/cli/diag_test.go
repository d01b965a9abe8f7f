package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/pictl/internal/driver"
	"github.com/mmr-tortoise/pictl/internal/model"
	"github.com/mmr-tortoise/pictl/internal/transport"
)

// diagReplies scripts a standalone controller that can answer the full
// diagnostic sequence.
func diagReplies() map[string]string {
	return map[string]string{
		"*IDN?": "PI, C-884.4DC, 0119024343, 1.0.0.1\n",
		"HLP?":  "*IDN? Get Device Identification \nMOV Set Target Position\n",
		"HPA?":  "valid parameters: \n0x1=\t0\t1\tINT\tgroup\tP term\n",
	}
}

// newDiagDriver builds a fully mocked driver for diagnostic tests and
// returns the mocks dialed per port so lifecycle can be asserted.
func newDiagDriver(t *testing.T, ports map[string]map[string]string, order []string) (*driver.Driver, map[string][]*transport.Mock) {
	t.Helper()

	dialed := make(map[string][]*transport.Mock)
	drv := driver.New(driver.Config{
		ProbeTimeout:   30 * time.Millisecond,
		SessionTimeout: 30 * time.Millisecond,
		ListPorts: func() ([]string, error) {
			return order, nil
		},
		Dial: func(port string) (transport.Transport, error) {
			replies, ok := ports[port]
			if !ok {
				return nil, errors.New("no such port: " + port)
			}
			mock := transport.Stub(replies)
			dialed[port] = append(dialed[port], mock)
			return mock, nil
		},
	})
	return drv, dialed
}

// TestRunDiagnostic_Output verifies the diagnostic report structure:
// the identity line, then the help and parameter dumps inside their
// >>> / <<< markers, in that order.
func TestRunDiagnostic_Output(t *testing.T) {
	drv, _ := newDiagDriver(t,
		map[string]map[string]string{"/dev/ttyUSB0": diagReplies()},
		[]string{"/dev/ttyUSB0"})

	var out strings.Builder
	require.NoError(t, RunDiagnostic(context.Background(), drv, &out))

	report := out.String()
	assert.Contains(t, report, "PI C-884.4DC (s/n 0119024343, fw 1.0.0.1)")
	assert.Contains(t, report, ">>> HELP\n")
	assert.Contains(t, report, "*IDN?: Get Device Identification\n")
	assert.Contains(t, report, "<<< HELP\n")
	assert.Contains(t, report, ">>> PARAMETERS\n")
	assert.Contains(t, report, "0x00000001  INT    P term\n")
	assert.Contains(t, report, "<<< PARAMETERS\n")

	// Section order is fixed: help first, then parameters.
	assert.Less(t,
		strings.Index(report, ">>> HELP"),
		strings.Index(report, ">>> PARAMETERS"))
	assert.Less(t,
		strings.Index(report, "<<< HELP"),
		strings.Index(report, ">>> PARAMETERS"))
}

// TestRunDiagnostic_Cleanup verifies the lifecycle invariants: every
// dialed transport (probe and session) is closed exactly once, even
// though the diagnostic itself never calls Shutdown explicitly.
func TestRunDiagnostic_Cleanup(t *testing.T) {
	drv, dialed := newDiagDriver(t,
		map[string]map[string]string{"/dev/ttyUSB0": diagReplies()},
		[]string{"/dev/ttyUSB0"})

	var out strings.Builder
	require.NoError(t, RunDiagnostic(context.Background(), drv, &out))

	require.Len(t, dialed["/dev/ttyUSB0"], 2, "expected one probe dial and one session dial")
	for i, mock := range dialed["/dev/ttyUSB0"] {
		assert.Equal(t, 1, mock.CloseCount, "transport %d must be closed exactly once", i)
	}

	// The driver is down afterwards; the deferred Shutdown ran.
	_, err := drv.EnumerateDevices(context.Background())
	assert.ErrorIs(t, err, driver.ErrShutdown)
}

// TestRunDiagnostic_NoDevices verifies the no-controller path: the
// error carries the no-device exit code, no session transport is ever
// dialed, and the driver still shuts down.
func TestRunDiagnostic_NoDevices(t *testing.T) {
	drv, dialed := newDiagDriver(t,
		map[string]map[string]string{"/dev/ttyUSB0": nil}, // silent port
		[]string{"/dev/ttyUSB0"})

	var out strings.Builder
	err := RunDiagnostic(context.Background(), drv, &out)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitNoDevice, cliErr.Code)

	// Only the probe dial happened, and it was closed.
	require.Len(t, dialed["/dev/ttyUSB0"], 1)
	assert.Equal(t, 1, dialed["/dev/ttyUSB0"][0].CloseCount)

	_, err = drv.EnumerateDevices(context.Background())
	assert.ErrorIs(t, err, driver.ErrShutdown)
}

// TestRunDiagnostic_PropertyFailure verifies that a mid-dump failure
// still tears down the session and the driver. The help reply is
// missing, so the HLP? query times out after the session deadline.
func TestRunDiagnostic_PropertyFailure(t *testing.T) {
	replies := diagReplies()
	delete(replies, "HLP?")

	drv, dialed := newDiagDriver(t,
		map[string]map[string]string{"/dev/ttyUSB0": replies},
		[]string{"/dev/ttyUSB0"})

	var out strings.Builder
	err := RunDiagnostic(context.Background(), drv, &out)
	require.Error(t, err)

	// The report stops after the opening marker; the close marker never
	// printed.
	assert.Contains(t, out.String(), ">>> HELP")
	assert.NotContains(t, out.String(), "<<< HELP")

	// Both transports still closed exactly once.
	require.Len(t, dialed["/dev/ttyUSB0"], 2)
	for _, mock := range dialed["/dev/ttyUSB0"] {
		assert.Equal(t, 1, mock.CloseCount)
	}
}

// TestFormatProperty verifies rendering of the property value shapes.
func TestFormatProperty(t *testing.T) {
	assert.Equal(t, "A: 1\nB: 2\n",
		FormatProperty(map[string]string{"B": "2", "A": "1"}))

	params := []model.Parameter{
		{ID: 0xF, DataType: "INT", Description: "Denominator"},
		{ID: 0xE, DataType: "INT", Description: "Numerator"},
	}
	assert.Equal(t,
		"0x0000000E  INT    Numerator\n0x0000000F  INT    Denominator\n",
		FormatProperty(params))

	assert.Equal(t, "", FormatProperty(""))
	assert.Equal(t, "2.0\n", FormatProperty("2.0"))
}
