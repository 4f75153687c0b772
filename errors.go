package main

import "errors"

// Stable error identifiers for the controller.  Configuration and resource
// errors are non-fatal and skip the offending chip or line; runtime I/O
// errors are reported per occurrence and the loop continues.
var (
	// ErrChipOpen indicates a GPIO chip could not be opened.
	ErrChipOpen = errors.New("cannot open chip")
	// ErrVariableNotFound indicates a bound variable does not exist in the store.
	ErrVariableNotFound = errors.New("variable not found")
	// ErrLineAcquireFailed indicates a line could not be reserved.
	ErrLineAcquireFailed = errors.New("line acquire failed")
	// ErrUnsupportedAttribute indicates an unrecognized line attribute value.
	ErrUnsupportedAttribute = errors.New("unsupported attribute")
	// ErrUnsupportedSignal indicates a signal kind the controller does not handle.
	ErrUnsupportedSignal = errors.New("unsupported signal")
	// ErrEventRead indicates an edge event could not be read from a line.
	ErrEventRead = errors.New("event read failed")
	// ErrInvalidType indicates a bound variable is not a uint16.
	ErrInvalidType = errors.New("invalid variable type")
)
