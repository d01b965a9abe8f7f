// Package gcs implements the GCS2 ASCII command dialect spoken by PI
// motion controllers.
//
// This package handles:
//   - Request/response exchange over a transport.Transport, serialized
//     so only one command is in flight per physical link
//   - GCS2 reply framing: every line of a multi-line reply except the
//     last ends with " \n" (space before linefeed); the final line ends
//     with a bare "\n"
//   - Daisy-chain addressing: commands are prefixed with the target
//     device address, replies carry a "0 <addr> " prefix per line
//   - Controller error reporting via the ERR? query after set commands
//   - Parsing of the introspection replies (HLP?, HPA?, VER?, *IDN?)
//     and of axis value replies ("AXIS=VALUE" lines)
//
// The package knows nothing about serial ports or device discovery;
// those live in internal/transport and internal/driver respectively.
package gcs
