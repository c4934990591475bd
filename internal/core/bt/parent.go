package bt

import "slices"

// parent owns an ordered, fixed list of children.
type parent struct {
	lifecycle
	children []Node
}

func (p *parent) initParent(name string, impl behavior, children []Node) {
	if len(children) == 0 {
		panic(structural(ErrNoChildren, name))
	}
	for _, ch := range children {
		if ch == nil {
			panic(structural(ErrNilChild, name))
		}
	}
	p.init(name, impl)
	p.children = slices.Clone(children)
}

// Children returns a copy of the child list.
func (p *parent) Children() []Node {
	return slices.Clone(p.children)
}

func (p *parent) startChild(bb *Blackboard, child Node) NodeState {
	return child.Tick(bb)
}

// endChild forces End on child whatever its state.
func (p *parent) endChild(child Node) {
	child.End()
}

func (p *parent) endAllChildren() {
	for _, ch := range p.children {
		ch.End()
	}
}

// composite adds the per-pass traversal queue and the single running branch.
type composite struct {
	parent
	queue   []Node
	current Node
}

// resetOrdered refills the queue in insertion order.
func (c *composite) resetOrdered() {
	c.queue = append(c.queue[:0], c.children...)
}

func (c *composite) dequeue() (Node, bool) {
	if len(c.queue) == 0 {
		return nil, false
	}
	next := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return next, true
}

// Current returns the child left Running by the last tick, if any.
func (c *composite) Current() Node { return c.current }

// end aborts the running branch, if any, and drops the rest of the pass.
func (c *composite) end() {
	if c.current != nil {
		running := c.current
		c.current = nil
		c.endChild(running)
	}
	c.queue = c.queue[:0]
}

// decorator is a parent with exactly one child.
type decorator struct {
	parent
}

func (d *decorator) initDecorator(name string, impl behavior, child Node) {
	if child == nil {
		panic(structural(ErrNilChild, name))
	}
	d.initParent(name, impl, []Node{child})
}

// Child returns the decorated node.
func (d *decorator) Child() Node { return d.children[0] }

func (d *decorator) start(*Blackboard) {}

func (d *decorator) end() {
	if d.Child().GetState() == Running {
		d.endChild(d.Child())
	}
}
