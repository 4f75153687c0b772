package main

import (
	"context"
	"io"
)

// VarHandle identifies a variable in the store.
type VarHandle uint32

// VarInvalid is the zero handle, never assigned to a variable.
const VarInvalid VarHandle = 0

// NotifyKind selects which store activity on a variable raises a signal.
type NotifyKind int

const (
	// NotifyModified raises a signal whenever the variable is written.
	NotifyModified NotifyKind = iota + 1
	// NotifyCalc raises a signal whenever the variable is about to be read,
	// so its value can be computed on demand.
	NotifyCalc
	// NotifyPrint raises a signal whenever the variable is rendered,
	// handing the notifier a print session to write into.
	NotifyPrint
)

func (k NotifyKind) String() string {
	switch k {
	case NotifyModified:
		return "modified"
	case NotifyCalc:
		return "calc"
	case NotifyPrint:
		return "print"
	default:
		return "unknown"
	}
}

// SignalKind identifies the activity a signal reports.
//
// Kinds outside the known set may be delivered by a store; consumers must
// tolerate and ignore them.
type SignalKind int

const (
	// SigModified reports that a variable was written.
	SigModified SignalKind = iota + 1
	// SigCalc reports that a variable is about to be read.
	SigCalc
	// SigPrint reports that a variable is being rendered.
	SigPrint
)

// Signal is one notification delivered by the store's signal wait.
type Signal struct {
	Kind SignalKind
	// Var is the variable the signal concerns.
	Var VarHandle
	// Token identifies the print session for SigPrint signals.
	Token uint32
}

// PrintSession is a transient writable channel opened for a print signal.
type PrintSession interface {
	io.Writer
	Close() error
}

// VarStore is the external variable service the controller binds lines to:
// a pub/sub key-value store with typed values and change notifications.
type VarStore interface {
	// FindByName resolves a variable name to its handle.
	// Returns ErrVariableNotFound if the variable does not exist.
	FindByName(name string) (VarHandle, error)
	// GetUint16 reads the value of a variable.
	GetUint16(h VarHandle) (uint16, error)
	// SetUint16 writes the value of a variable.
	SetUint16(h VarHandle, v uint16) error
	// Notify registers interest in activity on a variable.
	Notify(h VarHandle, kind NotifyKind) error
	// WaitSignal blocks until a signal is delivered or the context ends.
	WaitSignal(ctx context.Context) (Signal, error)
	// OpenPrintSession opens the writable channel for a print signal token.
	OpenPrintSession(token uint32) (PrintSession, error)
}
