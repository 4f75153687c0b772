package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampDuty(t *testing.T) {
	assert.Equal(t, int32(0), clampDuty(-5))
	assert.Equal(t, int32(0), clampDuty(0))
	assert.Equal(t, int32(128), clampDuty(128))
	assert.Equal(t, int32(255), clampDuty(255))
	assert.Equal(t, int32(255), clampDuty(1000))
}

func pwmLine(t *testing.T, duty int32) (*Controller, *TestLine, *Line) {
	t.Helper()
	store := seededStore()
	chip := NewTestChip("gpio0")
	c := NewController("gpioctrl", Reactive, store, testOpener(map[string]*TestChip{"gpio0": chip}))
	c.Build([]ChipDef{{
		Chip:  "gpio0",
		Lines: []LineDef{{Line: "0", Var: "/HW/GPIO/PWM", Direction: "pwm"}},
	}})
	require.Len(t, c.pwms, 1)
	ln := c.pwms[0]
	ln.value.Store(duty)
	return c, chip.Line(0), ln
}

func runPWMFor(c *Controller, ln *Line, d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	c.pwmWG.Add(1)
	c.runPWM(ctx, ln)
	c.pwmWG.Wait()
}

func TestPWMToggles(t *testing.T) {
	c, hw, ln := pwmLine(t, 128)
	runPWMFor(c, ln, 50*time.Millisecond)

	writes := hw.Writes()
	require.NotEmpty(t, writes)
	highs, lows := 0, 0
	for _, w := range writes {
		if w > 0 {
			highs++
		} else {
			lows++
		}
	}
	assert.Greater(t, highs, 0)
	assert.Greater(t, lows, 0)
}

func TestPWMFullDuty(t *testing.T) {
	c, hw, ln := pwmLine(t, 255)
	runPWMFor(c, ln, 10*time.Millisecond)
	for _, w := range hw.Writes() {
		assert.Equal(t, 1, w)
	}
	require.NotEmpty(t, hw.Writes())
}

func TestPWMZeroDuty(t *testing.T) {
	c, hw, ln := pwmLine(t, 0)
	runPWMFor(c, ln, 10*time.Millisecond)
	for _, w := range hw.Writes() {
		assert.Equal(t, 0, w)
	}
	require.NotEmpty(t, hw.Writes())
}

func TestPWMClampsConcurrentDuty(t *testing.T) {
	c, hw, ln := pwmLine(t, 5000)
	runPWMFor(c, ln, 10*time.Millisecond)
	assert.Equal(t, int32(255), clampDuty(ln.value.Load()))
	for _, w := range hw.Writes() {
		assert.Equal(t, 1, w)
	}
}

func TestPWMStopsOnCancel(t *testing.T) {
	c, hw, ln := pwmLine(t, 128)
	runPWMFor(c, ln, 20*time.Millisecond)
	n := len(hw.Writes())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, len(hw.Writes()))
}

func TestPWMUnrequestedLine(t *testing.T) {
	// A PWM loop over a line that was never acquired exits immediately.
	c := NewController("gpioctrl", Reactive, seededStore(), nil)
	ln := &Line{}
	c.pwmWG.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.runPWM(ctx, ln)
	c.pwmWG.Wait()
}
