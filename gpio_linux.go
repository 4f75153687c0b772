//go:build linux

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

const defaultBackend = "chardev"

// chipOpener selects the GPIO provider backend.
func chipOpener(backend string) (ChipOpener, error) {
	switch backend {
	case "", "chardev":
		return openChardevChip, nil
	case "periph":
		return openPeriphChip, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// chardevChip adapts a character device GPIO chip to the GpioChip interface.
type chardevChip struct {
	name string
	chip *gpiocdev.Chip
}

// openChardevChip opens the named chip under /dev.
func openChardevChip(name string) (GpioChip, error) {
	path := name
	if !strings.HasPrefix(path, "/") {
		path = "/dev/" + path
	}
	chip, err := gpiocdev.NewChip(path)
	if err != nil {
		return nil, err
	}
	return &chardevChip{name: name, chip: chip}, nil
}

func (c *chardevChip) Name() string {
	return c.name
}

// RequestLine reserves a line, mapping the request configuration onto the
// character device request flags.  Edge-monitored lines deliver their
// transitions to events via the provider's event handler.
func (c *chardevChip) RequestLine(offset int, cfg LineConfig, events chan<- LineEvent) (GpioLine, error) {
	opts := []gpiocdev.LineReqOption{}
	if cfg.Consumer != "" {
		opts = append(opts, gpiocdev.WithConsumer(cfg.Consumer))
	}
	if cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	switch cfg.Bias {
	case BiasDisabled:
		opts = append(opts, gpiocdev.WithBiasDisabled)
	case BiasPullDown:
		opts = append(opts, gpiocdev.WithPullDown)
	case BiasPullUp:
		opts = append(opts, gpiocdev.WithPullUp)
	}

	if cfg.Edge != NoEdge {
		chip := c.name
		handler := func(ev gpiocdev.LineEvent) {
			le := LineEvent{
				Chip:   chip,
				Offset: ev.Offset,
				Rising: ev.Type == gpiocdev.LineEventRisingEdge,
				Time:   time.Now(),
			}
			select {
			case events <- le:
			default:
				// Never block the provider's event goroutine.
				Warn("event queue full, dropping edge on %s:%d", chip, ev.Offset)
			}
		}
		opts = append(opts, gpiocdev.WithEventHandler(handler))
		switch cfg.Edge {
		case RisingEdge:
			opts = append(opts, gpiocdev.WithRisingEdge)
		case FallingEdge:
			opts = append(opts, gpiocdev.WithFallingEdge)
		case BothEdges:
			opts = append(opts, gpiocdev.WithBothEdges)
		}
	} else if cfg.Direction.IsOutput() {
		opts = append(opts, gpiocdev.AsOutput(cfg.Value))
		switch cfg.Drive {
		case OpenDrain:
			opts = append(opts, gpiocdev.AsOpenDrain)
		case OpenSource:
			opts = append(opts, gpiocdev.AsOpenSource)
		default:
			opts = append(opts, gpiocdev.AsPushPull)
		}
	} else {
		opts = append(opts, gpiocdev.AsInput)
	}

	l, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, err
	}
	name := ""
	if info, err := c.chip.LineInfo(offset); err == nil {
		name = info.Name
	}
	return &chardevLine{line: l, offset: offset, name: name}, nil
}

func (c *chardevChip) Close() error {
	return c.chip.Close()
}

// chardevLine adapts a requested character device line.
type chardevLine struct {
	line   *gpiocdev.Line
	offset int
	name   string
}

func (l *chardevLine) Offset() int {
	return l.offset
}

func (l *chardevLine) Name() string {
	return l.name
}

func (l *chardevLine) Value() (int, error) {
	return l.line.Value()
}

func (l *chardevLine) SetValue(v int) error {
	return l.line.SetValue(v)
}

func (l *chardevLine) Close() error {
	return l.line.Close()
}
