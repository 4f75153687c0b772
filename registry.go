package main

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// statusVarName is the fixed variable whose rendering produces the
// controller status document.
const statusVarName = "/SYS/GPIOCTRL/INFO"

// Chip is one GPIO controller device under control, with its bound lines
// in definition order.
type Chip struct {
	name  string
	hw    GpioChip
	lines []*Line
}

// Line binds one GPIO line to a variable.
//
// value caches the current line value.  For PWM lines it holds the duty and
// is read concurrently by the PWM loop, so it is an atomic scalar.
type Line struct {
	chip    *Chip
	offset  int
	hvar    VarHandle
	varName string
	cfg     LineConfig
	pwm     bool
	value   atomic.Int32
	// hw is nil when the line's role does not match the controller mode.
	hw GpioLine
}

// lineKey addresses a line by its chip and index.
type lineKey struct {
	chip   string
	offset int
}

// Build opens the defined chips, resolves their variables and acquires
// their lines.  Failures are non-fatal: a chip that cannot be opened or a
// line that cannot be bound is skipped and the rest proceed.
func (c *Controller) Build(defs []ChipDef) {
	c.setupPrintNotification()
	for _, def := range defs {
		c.buildChip(def)
	}
}

func (c *Controller) buildChip(def ChipDef) {
	if def.Chip == "" {
		Error("chip definition with no name, skipping")
		return
	}
	hw, err := c.open(def.Chip)
	if err != nil {
		Error("%v: %s: %v", ErrChipOpen, def.Chip, err)
		return
	}
	chip := &Chip{name: def.Chip, hw: hw}
	c.chips = append(c.chips, chip)
	for _, ld := range def.Lines {
		if err := c.buildLine(chip, ld); err != nil {
			Warn("skipping line %q on %s: %v", ld.Line, chip.name, err)
		}
	}
}

func (c *Controller) buildLine(chip *Chip, def LineDef) error {
	cfg, pwm, err := c.lineConfig(def)
	if err != nil {
		return err
	}
	if def.Var == "" {
		return fmt.Errorf("%w: no variable bound", ErrVariableNotFound)
	}
	hvar, err := c.store.FindByName(def.Var)
	if err != nil {
		return err
	}
	offset64, err := strconv.ParseUint(def.Line, 0, 31)
	if err != nil {
		return fmt.Errorf("%w: bad line number %q", ErrLineAcquireFailed, def.Line)
	}
	offset := int(offset64)
	key := lineKey{chip: chip.name, offset: offset}
	if _, ok := c.byLine[key]; ok {
		return fmt.Errorf("%w: line %d already requested", ErrLineAcquireFailed, offset)
	}
	if prev, ok := c.byVar[hvar]; ok {
		return fmt.Errorf("%w: %s already bound to line %d",
			ErrLineAcquireFailed, def.Var, prev.offset)
	}

	ln := &Line{
		chip:    chip,
		offset:  offset,
		hvar:    hvar,
		varName: def.Var,
		pwm:     pwm,
	}

	// Outputs are pre-seeded from the variable's present value.
	if cfg.Direction.IsOutput() {
		if v, err := c.store.GetUint16(hvar); err == nil {
			if pwm {
				ln.value.Store(clampDuty(int32(v)))
			} else if v > 0 {
				ln.value.Store(1)
			}
		}
	}
	cfg.Value = int(ln.value.Load())
	if pwm {
		// PWM lines always start low; the duty is applied by toggling.
		cfg.Value = 0
	}
	ln.cfg = cfg

	if c.requestWanted(cfg.Edge) {
		hw, err := chip.hw.RequestLine(offset, cfg, c.events)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrLineAcquireFailed, offset, err)
		}
		ln.hw = hw
		if cfg.Edge != NoEdge {
			c.monitored++
		}
	}

	chip.lines = append(chip.lines, ln)
	c.byVar[hvar] = ln
	c.byLine[key] = ln
	c.setupNotification(ln)
	if c.mode == Reactive && pwm {
		c.pwms = append(c.pwms, ln)
	}
	return nil
}

// requestWanted reports whether a line with the given edge trigger is
// acquired in the current mode.  Watch mode requests edge-triggered lines
// exclusively; reactive mode requests everything else exclusively.
func (c *Controller) requestWanted(edge Edge) bool {
	if c.mode == Watch {
		return edge != NoEdge
	}
	return edge == NoEdge
}

// lineConfig resolves the string attributes of a line definition into a
// request configuration.  Absent attributes take their defaults; an
// unrecognized value fails the whole line.
func (c *Controller) lineConfig(def LineDef) (LineConfig, bool, error) {
	cfg := LineConfig{Consumer: c.service}
	pwm := false

	switch def.Direction {
	case "", "input":
		cfg.Direction = Input
	case "output":
		cfg.Direction = Output
	case "pwm":
		cfg.Direction = PWMOutput
		pwm = true
	default:
		return cfg, false, fmt.Errorf("%w: direction %q", ErrUnsupportedAttribute, def.Direction)
	}

	switch def.ActiveState {
	case "", "high":
	case "low":
		cfg.ActiveLow = true
	default:
		return cfg, false, fmt.Errorf("%w: active_state %q", ErrUnsupportedAttribute, def.ActiveState)
	}

	switch def.Bias {
	case "":
		cfg.Bias = BiasDefault
	case "disabled":
		cfg.Bias = BiasDisabled
	case "pull-down":
		cfg.Bias = BiasPullDown
	case "pull-up":
		cfg.Bias = BiasPullUp
	default:
		return cfg, false, fmt.Errorf("%w: bias %q", ErrUnsupportedAttribute, def.Bias)
	}

	switch def.Drive {
	case "", "push-pull":
		cfg.Drive = PushPull
	case "open-drain":
		cfg.Drive = OpenDrain
	case "open-source":
		cfg.Drive = OpenSource
	default:
		return cfg, false, fmt.Errorf("%w: drive %q", ErrUnsupportedAttribute, def.Drive)
	}

	switch def.Event {
	case "":
		cfg.Edge = NoEdge
	case "RISING_EDGE":
		cfg.Edge = RisingEdge
	case "FALLING_EDGE":
		cfg.Edge = FallingEdge
	case "BOTH_EDGES":
		cfg.Edge = BothEdges
	default:
		return cfg, false, fmt.Errorf("%w: event %q", ErrUnsupportedAttribute, def.Event)
	}

	// An edge trigger makes the line an input regardless of direction.
	if cfg.Edge != NoEdge {
		cfg.Direction = Input
		pwm = false
	}
	return cfg, pwm, nil
}

// setupNotification registers the store notification a line needs in
// reactive mode: on-demand reads for plain inputs, write propagation for
// outputs.  Watch mode registers nothing.
func (c *Controller) setupNotification(ln *Line) {
	if c.mode != Reactive {
		return
	}
	var kind NotifyKind
	switch {
	case ln.cfg.Direction == Input && ln.cfg.Edge == NoEdge:
		kind = NotifyCalc
	case ln.cfg.Direction.IsOutput():
		kind = NotifyModified
	default:
		return
	}
	if err := c.store.Notify(ln.hvar, kind); err != nil {
		Error("cannot register %s notification for %s: %v", kind, ln.varName, err)
	}
}

// setupPrintNotification registers the status report variable.
func (c *Controller) setupPrintNotification() {
	if c.mode != Reactive {
		return
	}
	h, err := c.store.FindByName(statusVarName)
	if err != nil {
		Warn("status variable %s not available: %v", statusVarName, err)
		return
	}
	if err := c.store.Notify(h, NotifyPrint); err != nil {
		Error("cannot register print notification: %v", err)
	}
}

// findByVar returns the line bound to a variable, or nil.
func (c *Controller) findByVar(h VarHandle) *Line {
	return c.byVar[h]
}

// findByLine returns the line at a chip offset, or nil.
func (c *Controller) findByLine(chip string, offset int) *Line {
	return c.byLine[lineKey{chip: chip, offset: offset}]
}

// Close releases every acquired line and closes every opened chip, lines
// before their owning chip.  It is safe to call on a partially built
// registry and safe to call more than once.
func (c *Controller) Close() {
	for _, chip := range c.chips {
		for _, ln := range chip.lines {
			if ln.hw != nil {
				if err := ln.hw.Close(); err != nil {
					Warn("releasing line %d on %s: %v", ln.offset, chip.name, err)
				}
				ln.hw = nil
			}
		}
		if chip.hw != nil {
			if err := chip.hw.Close(); err != nil {
				Warn("closing chip %s: %v", chip.name, err)
			}
			chip.hw = nil
		}
	}
}
