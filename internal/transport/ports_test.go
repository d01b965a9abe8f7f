package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFilterPorts verifies glob filtering of candidate ports, including
// the base-name match that covers Windows-style port names.
func TestFilterPorts(t *testing.T) {
	tests := []struct {
		name  string
		ports []string
		globs []string
		want  []string
	}{
		{
			name:  "default globs match common usb serial names",
			ports: []string{"/dev/ttyUSB0", "/dev/ttyS0", "/dev/ttyACM1", "COM3"},
			globs: nil,
			want:  []string{"/dev/ttyUSB0", "/dev/ttyACM1", "COM3"},
		},
		{
			name:  "explicit glob narrows the candidates",
			ports: []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0"},
			globs: []string{"/dev/ttyUSB*"},
			want:  []string{"/dev/ttyUSB0", "/dev/ttyUSB1"},
		},
		{
			name:  "base name matching for bare port names",
			ports: []string{"/dev/serial/by-id/ttyUSB0"},
			globs: []string{"ttyUSB*"},
			want:  []string{"/dev/serial/by-id/ttyUSB0"},
		},
		{
			name:  "no matches yields empty slice",
			ports: []string{"/dev/ttyS0"},
			globs: []string{"/dev/ttyUSB*"},
			want:  []string{},
		},
		{
			name:  "malformed pattern is skipped not fatal",
			ports: []string{"/dev/ttyUSB0"},
			globs: []string{"[", "/dev/ttyUSB*"},
			want:  []string{"/dev/ttyUSB0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPorts(tt.ports, tt.globs)
			assert.Equal(t, tt.want, got)
		})
	}
}
