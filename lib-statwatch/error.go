package statwatch

import (
	"errors"
)

// The errors in statwatch can check the error type via errors.Is function.
var (
	// ErrFetch is a error for if failed to fetch the status page.
	ErrFetch = errors.New("failed to fetch status page")

	// ErrParse is a error for if both of overall status and components were not found in the page.
	ErrParse = errors.New("failed to parse status page")

	// ErrStoreCorrupted is a error for if the state file was not readable as a state.
	ErrStoreCorrupted = errors.New("state file is corrupted")

	// ErrIO is a error for if failed to read/write the state file.
	ErrIO = errors.New("failed to read/write state")

	// ErrInvalidConfig is a error for if the configuration was wrong.
	ErrInvalidConfig = errors.New("invalid configuration")
)
