package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/pictl/internal/model"
)

// TestParseIDN verifies parsing of the comma-separated identification
// reply, including the optional firmware field and whitespace trimming.
func TestParseIDN(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    model.DeviceInfo
		wantErr bool
	}{
		{
			name:  "full identification with firmware",
			reply: "Physik Instrumente (PI) GmbH & Co. KG, C-884.4DC, 0119024343, 1.0.0.1",
			want: model.DeviceInfo{
				Vendor:       "Physik Instrumente (PI) GmbH & Co. KG",
				Model:        "C-884.4DC",
				SerialNumber: "0119024343",
				Version:      "1.0.0.1",
			},
		},
		{
			name:  "three fields without firmware",
			reply: "PI, E-873, 0017550042",
			want: model.DeviceInfo{
				Vendor:       "PI",
				Model:        "E-873",
				SerialNumber: "0017550042",
			},
		},
		{
			name:    "too few fields",
			reply:   "PI, C-863",
			wantErr: true,
		},
		{
			name:    "empty reply",
			reply:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDN(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseHelp verifies that HLP? lines split into mnemonic and
// description, and that blank lines are skipped.
func TestParseHelp(t *testing.T) {
	reply := "#4 Request Status Register\n" +
		"*IDN? Get Device Identification\n" +
		"\n" +
		"MOV {<AxisID> <Position>} Set Target Position\n" +
		"STP"

	help := ParseHelp(reply)

	require.Len(t, help, 4)
	assert.Equal(t, "Request Status Register", help["#4"])
	assert.Equal(t, "Get Device Identification", help["*IDN?"])
	assert.Equal(t, "{<AxisID> <Position>} Set Target Position", help["MOV"])
	// A mnemonic with no description maps to the empty string.
	assert.Equal(t, "", help["STP"])
}

// TestParseVersions verifies component/version splitting on the colon
// separator, skipping decorative lines without one.
func TestParseVersions(t *testing.T) {
	reply := "FW_DSP: V01.015\n" +
		"Firmware components:\n" +
		"FW_ARM: 1.1.0.2"

	versions := ParseVersions(reply)

	require.Len(t, versions, 2)
	assert.Equal(t, "V01.015", versions["FW_DSP"])
	assert.Equal(t, "1.1.0.2", versions["FW_ARM"])
}

// TestParseParameters verifies the HPA? catalog format: the prose header
// is skipped, the hex ID and tab-separated fields are parsed, and
// trailing "<Value>=<Desc>" fields become enumeration options.
func TestParseParameters(t *testing.T) {
	reply := "The following parameters are valid:\n" +
		"0x1=\t0\t1\tINT\tmotorcontroller\tP term\n" +
		"0x7000000=\t0\t1\tCHAR\tmotorcontroller\tAxis unit\tMM=millimeter\tDEG=degree"

	params, err := ParseParameters(reply)
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, uint32(0x1), params[0].ID)
	assert.Equal(t, 0, params[0].CommandLevel)
	assert.Equal(t, 1, params[0].MaxItems)
	assert.Equal(t, "INT", params[0].DataType)
	assert.Equal(t, "P term", params[0].Description)
	assert.Nil(t, params[0].Options)

	assert.Equal(t, uint32(0x7000000), params[1].ID)
	assert.Equal(t, "Axis unit", params[1].Description)
	require.Len(t, params[1].Options, 2)
	assert.Equal(t, "millimeter", params[1].Options["MM"])
	assert.Equal(t, "degree", params[1].Options["DEG"])
}

// TestParseParameters_Malformed verifies that broken catalog lines fail
// with ErrBadReply instead of being silently dropped.
func TestParseParameters_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{
			name:  "missing equals sign",
			reply: "0x1\t0\t1\tINT\tgroup\tdesc",
		},
		{
			name:  "non-hex id",
			reply: "0xZZ=\t0\t1\tINT\tgroup\tdesc",
		},
		{
			name:  "too few fields",
			reply: "0x1=\t0\t1\tINT",
		},
		{
			name:  "non-numeric command level",
			reply: "0x1=\tx\t1\tINT\tgroup\tdesc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParameters(tt.reply)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadReply)
		})
	}
}

// TestParseAxisValues verifies the "<axis>=<value>" reply format shared
// by POS?, ONT?, FRF?, and CST?.
func TestParseAxisValues(t *testing.T) {
	values, err := ParseAxisValues("1=10.000025\n2=-0.5")
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "10.000025", values["1"])
	assert.Equal(t, "-0.5", values["2"])
}

// TestParseAxisValues_NoSeparator verifies that a line without '=' is a
// protocol error.
func TestParseAxisValues_NoSeparator(t *testing.T) {
	_, err := ParseAxisValues("garbage")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadReply)
}
