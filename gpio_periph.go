package main

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var periphInit sync.Once

// periphChip resolves lines through the periph host pin registry.  It is
// the fallback when the GPIO character device is not available; every chip
// name maps onto the same host registry.
type periphChip struct {
	name string
}

func openPeriphChip(name string) (GpioChip, error) {
	var err error
	periphInit.Do(func() {
		_, err = host.Init()
	})
	if err != nil {
		return nil, err
	}
	return &periphChip{name: name}, nil
}

func (c *periphChip) Name() string {
	return c.name
}

func (c *periphChip) RequestLine(offset int, cfg LineConfig, events chan<- LineEvent) (GpioLine, error) {
	pin := gpioreg.ByName(fmt.Sprintf("GPIO%d", offset))
	if pin == nil {
		return nil, fmt.Errorf("no pin GPIO%d", offset)
	}
	l := &periphLine{
		chip:      c.name,
		pin:       pin,
		offset:    offset,
		activeLow: cfg.ActiveLow,
	}
	if cfg.Drive != PushPull {
		Debug("drive %s not supported by periph backend, using push-pull", cfg.Drive)
	}
	if cfg.Edge != NoEdge {
		if err := pin.In(periphPull(cfg.Bias), periphEdge(cfg.Edge, cfg.ActiveLow)); err != nil {
			return nil, err
		}
		l.stop = make(chan struct{})
		go l.watch(events)
		return l, nil
	}
	if cfg.Direction.IsOutput() {
		if err := pin.Out(l.level(cfg.Value)); err != nil {
			return nil, err
		}
		return l, nil
	}
	if err := pin.In(periphPull(cfg.Bias), gpio.NoEdge); err != nil {
		return nil, err
	}
	return l, nil
}

func (c *periphChip) Close() error {
	return nil
}

func periphPull(b Bias) gpio.Pull {
	switch b {
	case BiasDisabled:
		return gpio.Float
	case BiasPullDown:
		return gpio.PullDown
	case BiasPullUp:
		return gpio.PullUp
	default:
		return gpio.PullNoChange
	}
}

// periphEdge maps the configured trigger to the physical edge periph
// watches.  Active-low lines trigger on the opposite physical edge.
func periphEdge(e Edge, activeLow bool) gpio.Edge {
	if activeLow {
		switch e {
		case RisingEdge:
			e = FallingEdge
		case FallingEdge:
			e = RisingEdge
		}
	}
	switch e {
	case RisingEdge:
		return gpio.RisingEdge
	case FallingEdge:
		return gpio.FallingEdge
	case BothEdges:
		return gpio.BothEdges
	default:
		return gpio.NoEdge
	}
}

// periphLine adapts one registry pin.  Active-low inversion is applied in
// software since the host registry has no notion of it.
type periphLine struct {
	chip      string
	pin       gpio.PinIO
	offset    int
	activeLow bool

	closeOnce sync.Once
	stop      chan struct{}
}

func (l *periphLine) level(v int) gpio.Level {
	high := v > 0
	if l.activeLow {
		high = !high
	}
	if high {
		return gpio.High
	}
	return gpio.Low
}

func (l *periphLine) value(lv gpio.Level) int {
	high := lv == gpio.High
	if l.activeLow {
		high = !high
	}
	if high {
		return 1
	}
	return 0
}

func (l *periphLine) Offset() int {
	return l.offset
}

func (l *periphLine) Name() string {
	return l.pin.Name()
}

func (l *periphLine) Value() (int, error) {
	return l.value(l.pin.Read()), nil
}

func (l *periphLine) SetValue(v int) error {
	return l.pin.Out(l.level(v))
}

// watch blocks on the pin's edge detection and forwards transitions.  The
// wait uses a short timeout so a close is noticed within a bounded delay.
func (l *periphLine) watch(events chan<- LineEvent) {
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		if !l.pin.WaitForEdge(time.Second) {
			continue
		}
		ev := LineEvent{
			Chip:   l.chip,
			Offset: l.offset,
			Rising: l.value(l.pin.Read()) > 0,
			Time:   time.Now(),
		}
		select {
		case events <- ev:
		default:
			Warn("event queue full, dropping edge on %s:%d", l.chip, l.offset)
		}
	}
}

func (l *periphLine) Close() error {
	l.closeOnce.Do(func() {
		if l.stop != nil {
			close(l.stop)
		}
	})
	return l.pin.Halt()
}
