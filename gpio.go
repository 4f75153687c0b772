package main

import (
	"time"
)

// Edge refers to the rising or falling of a voltage value on the line.
type Edge int

const (
	// NoEdge means the line does not report transitions.
	NoEdge Edge = 0
	// RisingEdge means the voltage is moving from a low to a high state.
	RisingEdge Edge = 1
	// FallingEdge means the voltage is moving from a high to a low state.
	FallingEdge Edge = 2
	// BothEdges means a transition in either direction is reported.
	BothEdges Edge = 3
)

// String returns the string representation of the edge.
func (e Edge) String() string {
	switch e {
	case NoEdge:
		return "None"
	case RisingEdge:
		return "Rising"
	case FallingEdge:
		return "Falling"
	case BothEdges:
		return "Both"
	default:
		return "Unknown"
	}
}

// Bias refers to the pull resistor configuration of the line circuitry.
type Bias int

const (
	// BiasDefault leaves the bias as the provider default.
	BiasDefault Bias = 0
	// BiasDisabled disables the internal pull resistors.
	BiasDisabled Bias = 1
	// BiasPullDown applies pull-down resistance to the line.
	BiasPullDown Bias = 2
	// BiasPullUp applies pull-up resistance to the line.
	BiasPullUp Bias = 3
)

func (b Bias) String() string {
	switch b {
	case BiasDefault:
		return "Default"
	case BiasDisabled:
		return "Disabled"
	case BiasPullDown:
		return "Pull Down"
	case BiasPullUp:
		return "Pull Up"
	default:
		return "Unknown"
	}
}

// Drive refers to the output driver configuration of the line.
type Drive int

const (
	// PushPull drives the line both high and low.
	PushPull Drive = 0
	// OpenDrain drives the line low only.
	OpenDrain Drive = 1
	// OpenSource drives the line high only.
	OpenSource Drive = 2
)

func (d Drive) String() string {
	switch d {
	case PushPull:
		return "Push-Pull"
	case OpenDrain:
		return "Open-Drain"
	case OpenSource:
		return "Open-Source"
	default:
		return "Unknown"
	}
}

// Direction refers to the usage of the line.
type Direction int

const (
	// Input means the value of the line is read and controlled externally.
	Input Direction = 0
	// Output means the value of the line is written to and controlled internally.
	Output Direction = 1
	// PWMOutput means the line is an output toggled by a software PWM loop.
	PWMOutput Direction = 2
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case PWMOutput:
		return "PWM"
	default:
		return "Unknown"
	}
}

// IsOutput reports whether the line drives the hardware.
func (d Direction) IsOutput() bool {
	return d == Output || d == PWMOutput
}

// LineConfig carries everything a provider needs to request a line.
type LineConfig struct {
	Direction Direction
	ActiveLow bool
	Bias      Bias
	Drive     Drive
	Edge      Edge
	// Consumer is the label attached to the line request.
	Consumer string
	// Value is the initial value for output lines.
	Value int
}

// LineEvent is one observed edge transition on a requested line.
type LineEvent struct {
	Chip   string
	Offset int
	Rising bool
	Time   time.Time
}

// GpioLine is a single requested GPIO line on a chip.
type GpioLine interface {
	// Offset returns the line index on its chip.
	Offset() int
	// Name returns the hardware name of the line, or "" if it has none.
	Name() string
	// Value reads the current value of the line.
	Value() (int, error)
	// SetValue writes a value to the line.
	SetValue(v int) error
	// Close releases the line back to the provider.
	Close() error
}

// GpioChip is an open GPIO controller device exposing indexed lines.
//
// Requested lines are held exclusively until closed.  Edge-monitored lines
// deliver their transitions to the events channel passed to RequestLine;
// providers must never block on a full channel.
type GpioChip interface {
	// Name returns the name the chip was opened with.
	Name() string
	// RequestLine reserves the line at offset with the given configuration.
	RequestLine(offset int, cfg LineConfig, events chan<- LineEvent) (GpioLine, error)
	// Close releases the chip.  Lines must be closed first.
	Close() error
}

// ChipOpener opens a named GPIO chip.
type ChipOpener func(name string) (GpioChip, error)
