package bt

import (
	"time"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Tree is the root driver. Every Tick re-invokes each child once in insertion
// order, with no short-circuit, and then reports Succeeded whatever the
// children did. Ending the tree does not end its children: a child left
// Running keeps its branch across root ticks.
//
// Tree is not a Node: its Tick takes no blackboard. Use the Walk and Count
// methods instead of the package functions to traverse it.
type Tree struct {
	composite
	blackboard *Blackboard
	ticks      uint64
	logger     log.Log
}

// NewTree creates a tree with its own blackboard.
func NewTree(name string, children ...Node) *Tree {
	return NewTreeWithBlackboard(name, NewNamedBlackboard(name), children...)
}

// NewTreeWithBlackboard creates a tree using a caller-supplied blackboard as
// its default. A nil blackboard is replaced with a fresh one.
func NewTreeWithBlackboard(name string, bb *Blackboard, children ...Node) *Tree {
	if bb == nil {
		bb = NewNamedBlackboard(name)
	}
	t := &Tree{blackboard: bb, logger: log.NewNop()}
	t.initParent(name, t, children)
	return t
}

// SetLogger attaches a logger for per-tick debug records.
func (t *Tree) SetLogger(l log.Log) {
	if l == nil {
		l = log.NewNop()
	}
	t.logger = l
}

// Blackboard returns the tree's default blackboard.
func (t *Tree) Blackboard() *Blackboard { return t.blackboard }

// Ticks returns how many times the tree has been ticked.
func (t *Tree) Ticks() uint64 { return t.ticks }

// Tick runs one pass over the children with the tree's own blackboard.
func (t *Tree) Tick() NodeState {
	return t.TickWith(t.blackboard)
}

// TickWith runs one pass with a caller-supplied blackboard.
func (t *Tree) TickWith(bb *Blackboard) NodeState {
	began := time.Now()
	st := t.lifecycle.Tick(bb)
	t.ticks++
	t.logger.Debug("tree ticked",
		log.String("tree", t.name),
		log.Uint64("tick", t.ticks),
		log.Duration("took", time.Since(began)),
	)
	return st
}

// Walk visits every node below the root depth-first, the root's children
// at depth 0.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	for _, ch := range t.children {
		if !walk(ch, 0, fn) {
			return
		}
	}
}

// Count returns the number of nodes below the root.
func (t *Tree) Count() int {
	total := 0
	for _, ch := range t.children {
		total += Count(ch)
	}
	return total
}

func (t *Tree) start(*Blackboard) { t.resetOrdered() }

func (t *Tree) update(bb *Blackboard) {
	for {
		child, ok := t.dequeue()
		if !ok {
			break
		}
		t.startChild(bb, child)
	}
	t.state = Succeeded
}

// end only resets the root's own pass.
func (t *Tree) end() {
	t.queue = t.queue[:0]
}
