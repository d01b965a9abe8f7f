// errorcodes.go maps the GCS error codes most commonly seen in practice
// to their documented descriptions. The table is not exhaustive — the
// full controller manual lists several hundred codes — but covers the
// codes a user can trigger through this tool.
package gcs

import "fmt"

// gcsErrorMessages maps GCS error codes to human-readable descriptions.
// Positive codes are controller errors; negative codes are interface
// errors reported by the communication layer of the controller firmware.
var gcsErrorMessages = map[int]string{
	0:  "no error",
	1:  "parameter syntax error",
	2:  "unknown command",
	3:  "command length out of limits or command buffer overrun",
	5:  "unallowable move attempted on unreferenced axis, or move attempted with servo off",
	7:  "position out of limits",
	8:  "velocity out of limits",
	10: "controller was stopped by command",
	15: "invalid axis identifier",
	17: "parameter out of range",
	23: "illegal axis",
	24: "incorrect number of parameters",
	25: "invalid floating point number",
	26: "parameter missing",
	46: "OEM password invalid",
	54: "unknown parameter",
	56: "password invalid",

	-1:  "error during com operation",
	-2:  "error while sending data",
	-3:  "error while receiving data",
	-5:  "unable to open connection",
	-7:  "timeout while waiting for reply",
	-8:  "reply invalid",
}

// ErrorMessage returns the description for a GCS error code, or a
// generic placeholder for codes not in the table.
func ErrorMessage(code int) string {
	if msg, ok := gcsErrorMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("unknown GCS error code %d", code)
}

// errCodeStopped is reported after a deliberate STP stop command. It is
// informational rather than a failure, so Stop clears and ignores it.
const errCodeStopped = 10
