package bt

// Conditional evaluates a predicate once per tick: true is Succeeded, false
// is Failed. It never reports Running.
type Conditional struct {
	lifecycle
	predicate func(bb *Blackboard) bool
}

// NewConditional wraps a zero-argument predicate.
func NewConditional(name string, predicate func() bool) *Conditional {
	if predicate == nil {
		panic(structural(ErrNilCallback, name))
	}
	return NewBlackboardConditional(name, func(*Blackboard) bool { return predicate() })
}

// NewBlackboardConditional wraps a predicate that reads the shared blackboard.
func NewBlackboardConditional(name string, predicate func(bb *Blackboard) bool) *Conditional {
	if predicate == nil {
		panic(structural(ErrNilCallback, name))
	}
	c := &Conditional{predicate: predicate}
	c.init(name, c)
	return c
}

func (c *Conditional) start(*Blackboard) {}

func (c *Conditional) update(bb *Blackboard) {
	if c.predicate(bb) {
		c.state = Succeeded
		return
	}
	c.state = Failed
}

func (c *Conditional) end() {}

// Action runs fn every tick and reports its result. fn may return Running to
// spread work over several ticks; NotStarted is treated as Failed.
type Action struct {
	lifecycle
	fn func(bb *Blackboard) NodeState
}

func NewAction(name string, fn func(bb *Blackboard) NodeState) *Action {
	if fn == nil {
		panic(structural(ErrNilCallback, name))
	}
	a := &Action{fn: fn}
	a.init(name, a)
	return a
}

func (a *Action) start(*Blackboard) {}

func (a *Action) update(bb *Blackboard) {
	switch st := a.fn(bb); st {
	case Running, Succeeded, Failed:
		a.state = st
	default:
		a.state = Failed
	}
}

func (a *Action) end() {}
