package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Mode is the fixed personality the controller runs in for its lifetime.
type Mode int

const (
	// Reactive drives hardware in response to variable signals.
	Reactive Mode = 0
	// Watch blocks on hardware edge events and pushes them into variables.
	Watch Mode = 1
)

func (m Mode) String() string {
	if m == Watch {
		return "watch"
	}
	return "reactive"
}

// ModeFromService derives the operating mode from the invoked process
// identity: a process named gpiowatch watches edges, anything else reacts
// to variable signals.
func ModeFromService(service string) Mode {
	if service == "gpiowatch" {
		return Watch
	}
	return Reactive
}

// Controller owns the chip and line registry and runs the event loop.
type Controller struct {
	mode    Mode
	service string
	store   VarStore
	open    ChipOpener

	chips  []*Chip
	byVar  map[VarHandle]*Line
	byLine map[lineKey]*Line
	pwms   []*Line

	// events multiplexes edge transitions from every monitored line.
	events    chan LineEvent
	monitored int

	pwmWG sync.WaitGroup
}

// NewController creates a controller in the given mode.  Chips and lines
// are attached with Build.
func NewController(service string, mode Mode, store VarStore, open ChipOpener) *Controller {
	return &Controller{
		mode:    mode,
		service: service,
		store:   store,
		open:    open,
		byVar:   map[VarHandle]*Line{},
		byLine:  map[lineKey]*Line{},
		events:  make(chan LineEvent, 64),
	}
}

// Run executes the event loop until the context is cancelled.  Cancellation
// is observed after the current wait returns.  PWM loops run for the same
// lifetime and are joined before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	Info("%s running in %s mode: %d chips, %d monitored lines, %d pwm lines",
		c.service, c.mode, len(c.chips), c.monitored, len(c.pwms))

	for _, ln := range c.pwms {
		c.pwmWG.Add(1)
		go c.runPWM(ctx, ln)
	}
	defer c.pwmWG.Wait()

	for {
		var err error
		if c.mode == Watch {
			err = c.waitLineEvent(ctx)
		} else {
			err = c.waitVarSignal(ctx)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
	}
}

// waitVarSignal blocks on the store's signal wait and dispatches one signal.
func (c *Controller) waitVarSignal(ctx context.Context) error {
	sig, err := c.store.WaitSignal(ctx)
	if err != nil {
		return err
	}
	switch sig.Kind {
	case SigModified:
		c.updateOutput(sig.Var)
	case SigCalc:
		c.updateInput(sig.Var)
	case SigPrint:
		c.printStatus(sig.Token)
	default:
		Debug("%v: kind %d", ErrUnsupportedSignal, sig.Kind)
	}
	return nil
}

// updateOutput propagates a variable write to its bound output line.
// Binary outputs are written 0 or 1; PWM outputs only update the shared
// duty, the toggling is done by the PWM loop.
func (c *Controller) updateOutput(h VarHandle) {
	ln := c.findByVar(h)
	if ln == nil {
		Debug("modified signal for unbound variable %d", h)
		return
	}
	if !ln.cfg.Direction.IsOutput() {
		return
	}
	v, err := c.store.GetUint16(h)
	if err != nil {
		Error("cannot read %s: %v", ln.varName, err)
		return
	}
	if ln.pwm {
		ln.value.Store(clampDuty(int32(v)))
		return
	}
	out := 0
	if v > 0 {
		out = 1
	}
	ln.value.Store(int32(out))
	if ln.hw == nil {
		return
	}
	if err := ln.hw.SetValue(out); err != nil {
		Error("cannot write line %d on %s: %v", ln.offset, ln.chip.name, err)
	}
}

// updateInput refreshes a variable from its bound input line.  Lines with
// an edge trigger are never read synchronously.
func (c *Controller) updateInput(h VarHandle) {
	ln := c.findByVar(h)
	if ln == nil {
		Debug("calc signal for unbound variable %d", h)
		return
	}
	if ln.cfg.Direction != Input || ln.cfg.Edge != NoEdge || ln.hw == nil {
		return
	}
	v, err := ln.hw.Value()
	if err != nil {
		Error("cannot read line %d on %s: %v", ln.offset, ln.chip.name, err)
		return
	}
	val := uint16(0)
	if v > 0 {
		val = 1
	}
	ln.value.Store(int32(val))
	if err := c.store.SetUint16(h, val); err != nil {
		Error("cannot set %s: %v", ln.varName, err)
	}
}

// waitLineEvent blocks on the merged edge-event channel and dispatches the
// batch of ready events.
func (c *Controller) waitLineEvent(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-c.events:
		c.handleLineEvent(ev)
	}
	// Drain whatever else is already pending.
	for {
		select {
		case ev := <-c.events:
			c.handleLineEvent(ev)
		default:
			return nil
		}
	}
}

// handleLineEvent maps one edge transition into its bound variable:
// rising to 1, falling to 0.  A failure affects only this line.
func (c *Controller) handleLineEvent(ev LineEvent) {
	ln := c.findByLine(ev.Chip, ev.Offset)
	if ln == nil {
		Debug("event for unknown line %d on %s", ev.Offset, ev.Chip)
		return
	}
	val := uint16(0)
	if ev.Rising {
		val = 1
	}
	ln.value.Store(int32(val))
	if err := c.store.SetUint16(ln.hvar, val); err != nil {
		Error("cannot set %s: %v", ln.varName, err)
	}
}

// chipStatus and lineStatus shape the status report document.
type chipStatus struct {
	Chip  string       `json:"chip"`
	Lines []lineStatus `json:"lines"`
}

type lineStatus struct {
	Line int    `json:"line"`
	Name string `json:"name"`
	Var  string `json:"var"`
}

// printStatus serializes the chip and line registry into the print session
// identified by token.
func (c *Controller) printStatus(token uint32) {
	sess, err := c.store.OpenPrintSession(token)
	if err != nil {
		Error("cannot open print session: %v", err)
		return
	}
	defer sess.Close()

	doc := make([]chipStatus, 0, len(c.chips))
	for _, chip := range c.chips {
		cs := chipStatus{Chip: chip.name, Lines: make([]lineStatus, 0, len(chip.lines))}
		for _, ln := range chip.lines {
			name := "unknown"
			if ln.hw != nil && ln.hw.Name() != "" {
				name = ln.hw.Name()
			}
			cs.Lines = append(cs.Lines, lineStatus{
				Line: ln.offset,
				Name: name,
				Var:  ln.varName,
			})
		}
		doc = append(doc, cs)
	}
	if err := json.NewEncoder(sess).Encode(doc); err != nil {
		Error("cannot write status: %v", err)
	}
}
