package bt

// Sequence ticks its children in insertion order and fails on the first
// failure. Successes are fast-forwarded within the same tick; a Running child
// becomes the only child ticked until it settles.
type Sequence struct {
	composite
}

func NewSequence(name string, children ...Node) *Sequence {
	s := &Sequence{}
	s.initParent(name, s, children)
	return s
}

func (s *Sequence) start(*Blackboard) { s.resetOrdered() }

func (s *Sequence) update(bb *Blackboard) {
	if s.current != nil {
		switch s.startChild(bb, s.current) {
		case Running:
			s.state = Running
			return
		case Succeeded:
			s.current = nil
		default:
			s.fail()
			return
		}
	}

	// bounded by the queue length captured before the scan
	for n := len(s.queue); n > 0; n-- {
		child, _ := s.dequeue()
		switch s.startChild(bb, child) {
		case Succeeded:
			continue
		case Running:
			s.current = child
			s.state = Running
			return
		default:
			s.fail()
			return
		}
	}
	s.state = Succeeded
}

func (s *Sequence) fail() {
	s.current = nil
	s.state = Failed
	s.endAllChildren()
}
