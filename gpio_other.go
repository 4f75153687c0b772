//go:build !linux

package main

import "fmt"

const defaultBackend = "periph"

// chipOpener selects the GPIO provider backend.  The character device
// backend only exists on Linux.
func chipOpener(backend string) (ChipOpener, error) {
	switch backend {
	case "", "periph":
		return openPeriphChip, nil
	case "chardev":
		return nil, fmt.Errorf("backend %q requires linux", backend)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
