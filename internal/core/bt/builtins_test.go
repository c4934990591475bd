package bt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinConditions(t *testing.T) {
	bb := NewBlackboard()

	isTrue, err := DefaultRegistry.NewCondition("IsTrue", map[string]any{"key": "flag"})
	require.NoError(t, err)
	assert.False(t, isTrue(bb))
	bb.Set("flag", "yes")
	assert.False(t, isTrue(bb))
	bb.Set("flag", true)
	assert.True(t, isTrue(bb))

	exists, err := DefaultRegistry.NewCondition("Exists", map[string]any{"key": "flag"})
	require.NoError(t, err)
	assert.True(t, exists(bb))

	equals, err := DefaultRegistry.NewCondition("Equals", map[string]any{"key": "hp", "value": 3})
	require.NoError(t, err)
	assert.False(t, equals(bb))
	bb.Set("hp", 3.0)
	assert.True(t, equals(bb))
	bb.Set("hp", int64(3))
	assert.True(t, equals(bb))

	named, err := DefaultRegistry.NewCondition("Equals", map[string]any{"key": "who", "value": "orc"})
	require.NoError(t, err)
	bb.Set("who", "orc")
	assert.True(t, named(bb))
}

func TestBuiltinActions(t *testing.T) {
	bb := NewBlackboard()

	set, err := DefaultRegistry.NewAction("SetValue", map[string]any{"key": "mode", "value": "chase"})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, set(bb))
	mode, err := bb.GetString("mode")
	require.NoError(t, err)
	assert.Equal(t, "chase", mode)

	del, err := DefaultRegistry.NewAction("Delete", map[string]any{"key": "mode"})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, del(bb))
	assert.False(t, bb.Exists("mode"))

	inc, err := DefaultRegistry.NewAction("Increment", map[string]any{"key": "n", "by": "5"})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, inc(bb))
	assert.Equal(t, Succeeded, inc(bb))
	n, err := bb.GetInt("n")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	bb.Set("n", "ten")
	assert.Equal(t, Failed, inc(bb))

	bb.Set("n", 2.5)
	assert.Equal(t, Failed, inc(bb))
	assert.Equal(t, 2.5, bb.Snapshot()["n"])

	fail, err := DefaultRegistry.NewAction("Fail", nil)
	require.NoError(t, err)
	assert.Equal(t, Failed, fail(bb))

	noop, err := DefaultRegistry.NewAction("Noop", nil)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, noop(bb))
}

func TestBuiltinParamErrors(t *testing.T) {
	_, err := DefaultRegistry.NewCondition("IsTrue", nil)
	requireIs(t, err, ErrInvalidConfig)

	_, err = DefaultRegistry.NewAction("SetValue", map[string]any{"key": "a", "typo": 1})
	requireIs(t, err, ErrInvalidConfig)

	_, err = DefaultRegistry.NewTask("Sleep", map[string]any{"duration": "-1s"})
	requireIs(t, err, ErrInvalidConfig)

	_, err = DefaultRegistry.NewCondition("Nope", nil)
	requireIs(t, err, ErrUnknownModule)

	_, err = DefaultRegistry.NewDecorator("Nope", "d", newSpy("c", Succeeded), nil)
	requireIs(t, err, ErrUnknownModule)
}

func TestBuiltinSleep(t *testing.T) {
	sleep, err := DefaultRegistry.NewTask("Sleep", map[string]any{"duration": "1ms"})
	require.NoError(t, err)
	assert.NoError(t, sleep(context.Background()))

	long, err := DefaultRegistry.NewTask("Sleep", map[string]any{"ms": 60_000})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	began := time.Now()
	assert.ErrorIs(t, long(ctx), context.Canceled)
	assert.Less(t, time.Since(began), time.Second)
}

func TestRegistryNames(t *testing.T) {
	names := DefaultRegistry.Names()
	assert.Equal(t, []string{"Equals", "Exists", "IsTrue"}, names["condition"])
	assert.Equal(t, []string{"Delete", "Fail", "Increment", "Noop", "SetValue"}, names["action"])
	assert.Equal(t, []string{"Sleep"}, names["task"])
	assert.Equal(t, []string{"Cooldown", "Inverter", "Probability", "Succeeder", "Timer"}, names["decorator"])
}

func TestBuiltinDecorators(t *testing.T) {
	cd, err := DefaultRegistry.NewDecorator("Cooldown", "cd", newSpy("c", Succeeded),
		map[string]any{"duration": "1h", "success_only": true})
	require.NoError(t, err)
	require.IsType(t, &Cooldown{}, cd)
	bb := NewBlackboard()
	assert.Equal(t, Succeeded, cd.Tick(bb))
	assert.Equal(t, Failed, cd.Tick(bb))

	timer, err := DefaultRegistry.NewDecorator("Timer", "wait", newSpy("c", Succeeded),
		map[string]any{"duration": "1h"})
	require.NoError(t, err)
	assert.Equal(t, Running, timer.Tick(bb))

	never, err := DefaultRegistry.NewDecorator("Probability", "p", newSpy("c", Succeeded),
		map[string]any{"p": 0})
	require.NoError(t, err)
	assert.Equal(t, Failed, never.Tick(bb))

	always, err := DefaultRegistry.NewDecorator("Probability", "p", newSpy("c", Succeeded),
		map[string]any{"p": "1", "seed": 7})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, always.Tick(bb))
}

func TestBuiltinDecoratorParamErrors(t *testing.T) {
	cases := map[string]struct {
		module string
		params map[string]any
	}{
		"negative cooldown": {"Cooldown", map[string]any{"duration": "-1s"}},
		"negative timer":    {"Timer", map[string]any{"duration": "-1ms"}},
		"unknown field":     {"Timer", map[string]any{"delay": "1s"}},
		"p above one":       {"Probability", map[string]any{"p": 1.5}},
		"p below zero":      {"Probability", map[string]any{"p": -0.1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DefaultRegistry.NewDecorator(tc.module, "d", newSpy("c", Succeeded), tc.params)
			requireIs(t, err, ErrInvalidConfig)
		})
	}
}
