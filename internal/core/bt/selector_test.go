package bt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorFirstSuccessWins(t *testing.T) {
	p1, c1 := countingPredicate(false)
	p2, c2 := countingPredicate(true)
	p3, c3 := countingPredicate(false)

	sel := NewSelector("sel",
		NewConditional("a", p1),
		NewConditional("b", p2),
		NewConditional("c", p3),
	)
	sel.SetShuffler(IdentityShuffler)

	assert.Equal(t, Succeeded, sel.Tick(NewBlackboard()))
	assert.Equal(t, 2, *c1+*c2+*c3)
	assert.Equal(t, 0, *c3)
}

func TestSelectorAllFail(t *testing.T) {
	a := newSpy("a", Failed)
	b := newSpy("b", Failed)
	sel := NewSelector("sel", a, b)

	assert.Equal(t, Failed, sel.Tick(NewBlackboard()))
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 1, b.ticks)
}

func TestSelectorFailedCurrentFallsThrough(t *testing.T) {
	bb := NewBlackboard()
	a := newSpy("a", Running, Failed)
	b := newSpy("b", Succeeded)
	sel := NewSelector("sel", a, b)
	sel.SetShuffler(IdentityShuffler)

	assert.Equal(t, Running, sel.Tick(bb))
	assert.Same(t, a, sel.Current())
	assert.Equal(t, 0, b.ticks)

	assert.Equal(t, Succeeded, sel.Tick(bb))
	assert.Equal(t, 2, a.ticks)
	assert.Equal(t, 1, b.ticks)
	assert.Nil(t, sel.Current())
}

func TestSelectorResumesRunningChildOnly(t *testing.T) {
	bb := NewBlackboard()
	a := newSpy("a", Failed)
	b := newSpy("b", Running, Running, Succeeded)
	c := newSpy("c", Succeeded)
	sel := NewSelector("sel", a, b, c)
	sel.SetShuffler(IdentityShuffler)

	assert.Equal(t, Running, sel.Tick(bb))
	assert.Equal(t, Running, sel.Tick(bb))
	assert.Equal(t, Succeeded, sel.Tick(bb))
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 0, c.ticks)
}

func TestSelectorEndAbortsRunningChild(t *testing.T) {
	a := newSpy("a", Running)
	sel := NewSelector("sel", a)

	assert.Equal(t, Running, sel.Tick(NewBlackboard()))
	sel.End()
	assert.Equal(t, NotStarted, sel.GetState())
	assert.Equal(t, 1, a.ends)
	assert.Nil(t, sel.Current())
}

func TestSelectorShuffleIsSeedable(t *testing.T) {
	order := func(seed int64) []string {
		var visited []string
		children := make([]Node, 0, 5)
		for _, name := range []string{"a", "b", "c", "d", "e"} {
			children = append(children, NewConditional(name, func() bool {
				visited = append(visited, name)
				return false
			}))
		}
		sel := NewSelector("sel", children...)
		sel.SetShuffler(rand.New(rand.NewSource(seed)))
		sel.Tick(NewBlackboard())
		return visited
	}

	first := order(42)
	assert.Len(t, first, 5)
	assert.Equal(t, first, order(42))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, first)
}

func TestSelectorNilShufflerKeepsOrder(t *testing.T) {
	a := newSpy("a", Succeeded)
	b := newSpy("b", Succeeded)
	sel := NewSelector("sel", a, b)
	sel.SetShuffler(nil)

	assert.Equal(t, Succeeded, sel.Tick(NewBlackboard()))
	assert.Equal(t, 1, a.ticks)
	assert.Equal(t, 0, b.ticks)
}

// countingShuffler records how often a selector reshuffles.
type countingShuffler struct {
	calls int
	sizes []int
}

func (c *countingShuffler) Shuffle(n int, _ func(i, j int)) {
	c.calls++
	c.sizes = append(c.sizes, n)
}

func TestSelectorShufflesOncePerPass(t *testing.T) {
	sh := &countingShuffler{}
	first := newSpy("first", Failed)
	second := newSpy("second", Running, Succeeded)
	sel := NewSelector("sel", first, second)
	sel.SetShuffler(sh)
	bb := NewBlackboard()

	const passes = 3
	for range passes {
		assert.Equal(t, Running, sel.Tick(bb))
		assert.Equal(t, Succeeded, sel.Tick(bb))
		second.ticks = 0
	}
	assert.Equal(t, passes, sh.calls)

	// abort mid-pass; the restart reshuffles exactly once more
	assert.Equal(t, Running, sel.Tick(bb))
	assert.Equal(t, passes+1, sh.calls)
	sel.End()
	assert.Equal(t, 1, second.ends)
	assert.Equal(t, passes+1, sh.calls)
	second.ticks = 0
	assert.Equal(t, Running, sel.Tick(bb))
	assert.Equal(t, passes+2, sh.calls)
	assert.Equal(t, []int{2, 2, 2, 2, 2}, sh.sizes)
}
