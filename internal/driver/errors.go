package driver

import "errors"

// Sentinel errors for lifecycle misuse. These guard the once-only
// open/close guarantees the diagnostic flow depends on.
var (
	// ErrNotInitialized is returned when EnumerateDevices is called
	// before Initialize.
	ErrNotInitialized = errors.New("driver is not initialized")

	// ErrShutdown is returned when the driver is used after Shutdown.
	ErrShutdown = errors.New("driver has been shut down")

	// ErrAlreadyOpen is returned by Controller.Open when the controller
	// session is already established.
	ErrAlreadyOpen = errors.New("controller is already open")

	// ErrNotOpen is returned by controller operations that require an
	// established session, including a second Close.
	ErrNotOpen = errors.New("controller is not open")

	// ErrChainBusy is returned when closing a daisy chain that still
	// has open members.
	ErrChainBusy = errors.New("daisy chain has active members")

	// ErrUnknownProperty is returned by GetProperty for names outside
	// EnumerateProperties.
	ErrUnknownProperty = errors.New("unknown property")
)
