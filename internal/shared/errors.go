package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrUnavailableStorage = fmt.Errorf("storage unavailable")
	ErrStoreClosed        = fmt.Errorf("%w: store closed", ErrUnavailableStorage)

	// App lock errors
	ErrInvalidPassword   = fmt.Errorf("password must be 4-21 characters")
	ErrPasswordMismatch  = fmt.Errorf("%w: passwords do not match", ErrInvalidPassword)
	ErrIncorrectPassword = fmt.Errorf("incorrect password")
	ErrPasswordRequired  = fmt.Errorf("password setup required")
	ErrSystemLocked      = fmt.Errorf("system app cannot be unlocked while app lock is enabled")
	ErrTooManyAttempts   = fmt.Errorf("too many unlock attempts")

	// Launcher errors
	ErrFavoritesFull   = fmt.Errorf("favorites are full")
	ErrAlreadyFavorite = fmt.Errorf("app is already a favorite")
	ErrAppNotInstalled = fmt.Errorf("app is not installed")
	ErrSetupSelection  = fmt.Errorf("select between 3 and 10 apps")

	// Network errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Device capability errors
	ErrCapabilityUnavailable = fmt.Errorf("capability unavailable on this platform")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
