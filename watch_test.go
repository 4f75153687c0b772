package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watchController(t *testing.T) (*Controller, *MemStore, *TestChip) {
	t.Helper()
	store := seededStore()
	chip := NewTestChip("gpio0")
	c := NewController("gpiowatch", Watch, store, testOpener(map[string]*TestChip{"gpio0": chip}))
	c.Build(testDefs())
	require.NotNil(t, chip.Line(3))
	return c, store, chip
}

func TestEdgeEvents(t *testing.T) {
	c, store, chip := watchController(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	hEdge, _ := store.FindByName("/HW/GPIO/EDGE")

	t.Run("Rising", func(t *testing.T) {
		chip.Line(3).Fire(true)
		require.NoError(t, c.waitLineEvent(ctx))
		v, err := store.GetUint16(hEdge)
		require.NoError(t, err)
		assert.Equal(t, uint16(1), v)
	})

	t.Run("Falling", func(t *testing.T) {
		chip.Line(3).Fire(false)
		require.NoError(t, c.waitLineEvent(ctx))
		v, err := store.GetUint16(hEdge)
		require.NoError(t, err)
		assert.Equal(t, uint16(0), v)
	})

	t.Run("Batch", func(t *testing.T) {
		// Multiple pending events are handled in one wait.
		chip.Line(3).Fire(true)
		chip.Line(3).Fire(false)
		chip.Line(3).Fire(true)
		require.NoError(t, c.waitLineEvent(ctx))
		v, err := store.GetUint16(hEdge)
		require.NoError(t, err)
		assert.Equal(t, uint16(1), v)
	})

	t.Run("OtherVariablesUntouched", func(t *testing.T) {
		hIn, _ := store.FindByName("/HW/GPIO/IN")
		v, err := store.GetUint16(hIn)
		require.NoError(t, err)
		assert.Equal(t, uint16(0), v)
	})
}

func TestEdgeEventUnknownLine(t *testing.T) {
	c, store, _ := watchController(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c.events <- LineEvent{Chip: "gpio0", Offset: 99, Rising: true, Time: time.Now()}
	require.NoError(t, c.waitLineEvent(ctx))

	hEdge, _ := store.FindByName("/HW/GPIO/EDGE")
	v, err := store.GetUint16(hEdge)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)
}

func TestWatchRunStopsOnCancel(t *testing.T) {
	c, store, chip := watchController(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()

	chip.Line(3).Fire(true)
	hEdge, _ := store.FindByName("/HW/GPIO/EDGE")
	require.Eventually(t, func() bool {
		v, err := store.GetUint16(hEdge)
		return err == nil && v == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not stop")
	}
}
