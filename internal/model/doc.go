// Package model defines the domain types and value objects for the
// pictl CLI and driver.
//
// This package contains pure data structures with no external dependencies.
// All entities (DeviceInfo, Parameter, etc.) are transient representations
// built from controller responses at runtime — there are no persistent
// state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
