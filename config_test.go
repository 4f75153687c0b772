package main

import (
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGpioDef = `{ "gpiodef" : [
	{ "chip" : "gpio0",
	  "lines" : [
		{ "line" : "0",
		  "var" : "/HW/GPIO/0",
		  "active_state" : "low",
		  "direction" : "output",
		  "drive" : "open-drain",
		  "bias" : "pull-up" },
		{ "line" : "1",
		  "var" : "/HW/GPIO/1",
		  "direction" : "input",
		  "drive" : "push-pull",
		  "bias" : "pull-up" },
		{ "line" : "2",
		  "var" : "/HW/GPIO/2",
		  "direction" : "input",
		  "event" : "BOTH_EDGES" }
	  ]
	}
]}`

func TestParseGpioDef(t *testing.T) {
	defs, err := ParseGpioDef(strings.NewReader(testGpioDef))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "gpio0", defs[0].Chip)
	require.Len(t, defs[0].Lines, 3)

	first := defs[0].Lines[0]
	assert.Equal(t, "0", first.Line)
	assert.Equal(t, "/HW/GPIO/0", first.Var)
	assert.Equal(t, "low", first.ActiveState)
	assert.Equal(t, "output", first.Direction)
	assert.Equal(t, "open-drain", first.Drive)
	assert.Equal(t, "pull-up", first.Bias)
	assert.Equal(t, "", first.Event)

	last := defs[0].Lines[2]
	assert.Equal(t, "BOTH_EDGES", last.Event)
	assert.Equal(t, "", last.ActiveState)
}

func TestParseGpioDefBad(t *testing.T) {
	_, err := ParseGpioDef(strings.NewReader("{ \"gpiodef\" : ["))
	assert.Error(t, err)
}

func TestParseGpioDefEmpty(t *testing.T) {
	defs, err := ParseGpioDef(strings.NewReader("{}"))
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestNewConfig(t *testing.T) {
	fs := flag.NewFlagSet("gpioctrl", flag.ContinueOnError)
	c := NewConfig(fs, []string{"-f", "gpio.json", "-v", "-vars", "vars.json"})
	assert.Equal(t, "gpio.json", *c.file)
	assert.Equal(t, "vars.json", *c.vars)
	assert.True(t, *c.verbose)
	assert.False(t, *c.sysLog)
	assert.Equal(t, defaultBackend, *c.backend)
}

func TestLineConfigAttributes(t *testing.T) {
	c := NewController("gpioctrl", Reactive, NewMemStore(), nil)

	t.Run("Defaults", func(t *testing.T) {
		cfg, pwm, err := c.lineConfig(LineDef{Line: "0", Var: "/X"})
		require.NoError(t, err)
		assert.False(t, pwm)
		assert.Equal(t, Input, cfg.Direction)
		assert.False(t, cfg.ActiveLow)
		assert.Equal(t, BiasDefault, cfg.Bias)
		assert.Equal(t, PushPull, cfg.Drive)
		assert.Equal(t, NoEdge, cfg.Edge)
		assert.Equal(t, "gpioctrl", cfg.Consumer)
	})

	t.Run("Full", func(t *testing.T) {
		cfg, pwm, err := c.lineConfig(LineDef{
			Line:        "4",
			Var:         "/X",
			Direction:   "output",
			ActiveState: "low",
			Bias:        "pull-down",
			Drive:       "open-source",
		})
		require.NoError(t, err)
		assert.False(t, pwm)
		assert.Equal(t, Output, cfg.Direction)
		assert.True(t, cfg.ActiveLow)
		assert.Equal(t, BiasPullDown, cfg.Bias)
		assert.Equal(t, OpenSource, cfg.Drive)
	})

	t.Run("PWM", func(t *testing.T) {
		cfg, pwm, err := c.lineConfig(LineDef{Line: "5", Var: "/X", Direction: "pwm"})
		require.NoError(t, err)
		assert.True(t, pwm)
		assert.Equal(t, PWMOutput, cfg.Direction)
	})

	t.Run("EventForcesInput", func(t *testing.T) {
		cfg, pwm, err := c.lineConfig(LineDef{
			Line:      "6",
			Var:       "/X",
			Direction: "output",
			Event:     "RISING_EDGE",
		})
		require.NoError(t, err)
		assert.False(t, pwm)
		assert.Equal(t, Input, cfg.Direction)
		assert.Equal(t, RisingEdge, cfg.Edge)
	})

	bad := []LineDef{
		{Line: "0", Var: "/X", Direction: "sideways"},
		{Line: "0", Var: "/X", ActiveState: "maybe"},
		{Line: "0", Var: "/X", Bias: "strong"},
		{Line: "0", Var: "/X", Drive: "hard"},
		{Line: "0", Var: "/X", Event: "ANY_EDGE"},
	}
	for _, def := range bad {
		t.Run("Unsupported", func(t *testing.T) {
			_, _, err := c.lineConfig(def)
			assert.ErrorIs(t, err, ErrUnsupportedAttribute)
		})
	}
}
