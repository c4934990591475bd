package bt

import (
	"math/rand"
	"time"
)

// Shuffler reorders n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type identityShuffler struct{}

func (identityShuffler) Shuffle(int, func(i, j int)) {}

// IdentityShuffler keeps insertion order; useful for deterministic tests.
var IdentityShuffler Shuffler = identityShuffler{}

// Selector succeeds on the first child that succeeds. Children are visited in
// an order reshuffled every time the selector starts a new pass; failures are
// fast-forwarded within the same tick.
type Selector struct {
	composite
	shuffler Shuffler
}

func NewSelector(name string, children ...Node) *Selector {
	s := &Selector{shuffler: rand.New(rand.NewSource(time.Now().UnixNano()))}
	s.initParent(name, s, children)
	return s
}

// SetShuffler replaces the source of randomness used on restart. A nil
// shuffler keeps insertion order.
func (s *Selector) SetShuffler(sh Shuffler) {
	if sh == nil {
		sh = IdentityShuffler
	}
	s.shuffler = sh
}

func (s *Selector) start(*Blackboard) {
	s.resetOrdered()
	s.shuffler.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})
}

func (s *Selector) update(bb *Blackboard) {
	if s.current != nil {
		switch s.startChild(bb, s.current) {
		case Succeeded:
			s.current = nil
			s.state = Succeeded
			return
		case Running:
			s.state = Running
			return
		}
		s.current = nil
	}

	for {
		child, ok := s.dequeue()
		if !ok {
			break
		}
		switch s.startChild(bb, child) {
		case Succeeded:
			s.state = Succeeded
			return
		case Running:
			s.current = child
			s.state = Running
			return
		}
	}
	s.state = Failed
}
