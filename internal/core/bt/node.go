package bt

// Node is a unit of a behavior tree driven by an external tick.
type Node interface {
	// Tick advances the node by one step using the shared blackboard and
	// returns the resulting state.
	Tick(bb *Blackboard) NodeState
	// End finalizes the node so that its next Tick starts a fresh pass.
	// Ending a Running node aborts it.
	End()
	// GetState returns the last reported state without side effects.
	GetState() NodeState
	// GetName returns the node name.
	GetName() string
}

// behavior holds the per-kind hooks driven by lifecycle.
type behavior interface {
	// start runs once when the node leaves idle.
	start(bb *Blackboard)
	// update runs on every tick while the node is active and must set the state.
	update(bb *Blackboard)
	// end releases whatever the pass holds. It must be safe to call when idle.
	end()
}

// lifecycle is the state machine shared by every node kind:
// NotStarted -> Running -> Succeeded|Failed, with end running as soon as the
// state is terminal so the node can be restarted on a later pass.
type lifecycle struct {
	name    string
	started bool
	state   NodeState
	impl    behavior
}

func (l *lifecycle) init(name string, impl behavior) {
	l.name = name
	l.impl = impl
	l.state = NotStarted
}

func (l *lifecycle) Tick(bb *Blackboard) NodeState {
	if bb == nil {
		panic(structural(ErrNilBlackboard, l.name))
	}
	if !l.started {
		l.started = true
		l.state = Running
		l.impl.start(bb)
	}
	l.impl.update(bb)
	if l.state.IsTerminal() {
		l.finish()
	}
	return l.state
}

// finish is the automatic end of a pass; the terminal state is kept.
func (l *lifecycle) finish() {
	l.impl.end()
	l.started = false
}

func (l *lifecycle) End() {
	l.impl.end()
	l.started = false
	if l.state == Running {
		l.state = NotStarted
	}
}

func (l *lifecycle) GetState() NodeState { return l.state }

func (l *lifecycle) GetName() string { return l.name }

// Started reports whether the node is mid-pass.
func (l *lifecycle) Started() bool { return l.started }
