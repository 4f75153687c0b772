package main

import (
	"context"
	"time"
)

// pwmQuantum is the time per duty unit.  A full cycle is 255 quanta,
// giving roughly 100Hz.
const pwmQuantum = 40 * time.Microsecond

// maxDuty is the full-scale duty value.
const maxDuty = 255

// clampDuty limits a duty to [0, maxDuty].
func clampDuty(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > maxDuty {
		return maxDuty
	}
	return v
}

// runPWM toggles one output line forever, high for duty quanta and low for
// (maxDuty - duty) quanta per cycle.  The duty is read fresh each cycle so
// variable writes take effect on the next cycle.  There is no phase
// relationship between lines.
func (c *Controller) runPWM(ctx context.Context, ln *Line) {
	defer c.pwmWG.Done()
	if ln.hw == nil {
		return
	}
	for ctx.Err() == nil {
		duty := clampDuty(ln.value.Load())
		if duty > 0 {
			if err := ln.hw.SetValue(1); err != nil {
				Error("pwm write line %d on %s: %v", ln.offset, ln.chip.name, err)
			}
			if !sleepCtx(ctx, time.Duration(duty)*pwmQuantum) {
				return
			}
		}
		if duty < maxDuty {
			if err := ln.hw.SetValue(0); err != nil {
				Error("pwm write line %d on %s: %v", ln.offset, ln.chip.name, err)
			}
			if !sleepCtx(ctx, time.Duration(maxDuty-duty)*pwmQuantum) {
				return
			}
		}
	}
}

// sleepCtx sleeps for d unless the context ends first.  It reports whether
// the full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
