// Package driver provides device discovery and connection lifecycle
// management for PI motion controllers.
//
// This package handles:
//   - Driver initialization and shutdown (Shutdown closes every
//     connection the driver still owns, making cleanup safe on any
//     exit path)
//   - Device enumeration: candidate serial ports are probed with an
//     identification query and classified as standalone controllers or
//     daisy chains with addressable members
//   - Controller open/close with strict once-only semantics, property
//     introspection (help, parameters, versions), and identification
//   - Daisy chains: members share one serial link; the link opens with
//     the first member and closes when the last member closes
//   - Axis handles for motion: reference (home), absolute and relative
//     moves, position readout, and wait-on-target polling
//
// The package uses internal/gcs for the protocol dialect and
// internal/transport for port access; it never touches serial APIs
// directly, which keeps every code path testable against the mock
// transport.
package driver
