package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/pictl/internal/driver"
)

// enumerateTestDevices runs a mocked enumeration to obtain controller
// handles for formatting tests. Controllers are only constructed by the
// driver, so the table formatter is fed through the same path the list
// command uses.
func enumerateTestDevices(t *testing.T, ports map[string]map[string]string, order []string) []*driver.Controller {
	t.Helper()

	drv, _ := newDiagDriver(t, ports, order)
	require.NoError(t, drv.Initialize())
	t.Cleanup(func() { _ = drv.Shutdown() })

	devices, err := drv.EnumerateDevices(context.Background())
	require.NoError(t, err)
	return devices
}

// TestFormatDeviceTable verifies the text table layout for a mixed
// enumeration result: a standalone controller and a daisy chain.
func TestFormatDeviceTable(t *testing.T) {
	devices := enumerateTestDevices(t,
		map[string]map[string]string{
			"/dev/ttyUSB0": {
				"*IDN?": "PI, C-884.4DC, 0119024343, 1.0.0.1\n",
			},
			"/dev/ttyUSB1": {
				"1 *IDN?": "0 1 PI, C-863.11, 0017800111, 1.2.0\n",
				"2 *IDN?": "0 2 PI, C-863.11, 0017800222, 1.2.0\n",
			},
		},
		[]string{"/dev/ttyUSB0", "/dev/ttyUSB1"})
	require.Len(t, devices, 3)

	table := FormatDeviceTable(devices)
	lines := splitLines(table)
	require.Len(t, lines, 4)

	assert.Contains(t, lines[0], "PORT")
	assert.Contains(t, lines[0], "KIND")
	assert.Contains(t, lines[0], "SERIAL")

	assert.Contains(t, lines[1], "/dev/ttyUSB0")
	assert.Contains(t, lines[1], "standalone")
	assert.Contains(t, lines[1], "0119024343")

	assert.Contains(t, lines[2], "daisy-member")
	assert.Contains(t, lines[2], "0017800111")
	assert.Contains(t, lines[3], "0017800222")
}

// TestFormatDeviceTable_Empty verifies the empty-enumeration message.
func TestFormatDeviceTable_Empty(t *testing.T) {
	assert.Equal(t, "No controllers found.\n", FormatDeviceTable(nil))
}

// TestFormatChainAddress verifies the address column rendering.
func TestFormatChainAddress(t *testing.T) {
	assert.Equal(t, "-", FormatChainAddress(0))
	assert.Equal(t, "1", FormatChainAddress(1))
	assert.Equal(t, "4", FormatChainAddress(4))
}

// TestFormatAxisTable verifies the axis report layout.
func TestFormatAxisTable(t *testing.T) {
	table := FormatAxisTable([]axisStatus{
		{ID: "1", Stage: "M-111.1DG", Position: 10.000025, Referenced: true, OnTarget: false},
	})

	lines := splitLines(table)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "STAGE")
	assert.Contains(t, lines[1], "M-111.1DG")
	assert.Contains(t, lines[1], "10.000025")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[1], "no")
}

// TestFormatAxisTable_Empty verifies the no-axes message.
func TestFormatAxisTable_Empty(t *testing.T) {
	assert.Equal(t, "No axes configured.\n", FormatAxisTable(nil))
}

// splitLines splits table output into its non-empty lines.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
