package bt

import (
	"math/rand"
	"time"
)

// Inverter swaps Succeeded and Failed; Running passes through.
type Inverter struct {
	decorator
}

func NewInverter(name string, child Node) *Inverter {
	d := &Inverter{}
	d.initDecorator(name, d, child)
	return d
}

func (d *Inverter) update(bb *Blackboard) {
	switch d.startChild(bb, d.Child()) {
	case Running:
		d.state = Running
	case Succeeded:
		d.state = Failed
	default:
		d.state = Succeeded
	}
}

// Succeeder reports Succeeded for any terminal child result; Running passes through.
type Succeeder struct {
	decorator
}

func NewSucceeder(name string, child Node) *Succeeder {
	d := &Succeeder{}
	d.initDecorator(name, d, child)
	return d
}

func (d *Succeeder) update(bb *Blackboard) {
	if d.startChild(bb, d.Child()) == Running {
		d.state = Running
		return
	}
	d.state = Succeeded
}

// Cooldown blocks its child for a while after the child settles. While
// cooling down the decorator fails at once so a Selector can try an
// alternative. With successOnly set, only successes start a cooldown.
type Cooldown struct {
	decorator
	duration    time.Duration
	successOnly bool
	clock       func() time.Time
	last        time.Time
	armed       bool
	gated       bool
}

func NewCooldown(name string, child Node, duration time.Duration, successOnly bool) *Cooldown {
	d := &Cooldown{duration: duration, successOnly: successOnly, clock: time.Now}
	d.initDecorator(name, d, child)
	return d
}

// SetClock replaces the time source; nil restores time.Now.
func (d *Cooldown) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	d.clock = clock
}

// Ready reports whether the next pass will tick the child.
func (d *Cooldown) Ready() bool {
	return !d.armed || d.clock().Sub(d.last) >= d.duration
}

func (d *Cooldown) start(*Blackboard) { d.gated = !d.Ready() }

func (d *Cooldown) update(bb *Blackboard) {
	if d.gated {
		d.state = Failed
		return
	}
	st := d.startChild(bb, d.Child())
	if st == Running {
		d.state = Running
		return
	}
	if st != Succeeded {
		st = Failed
	}
	if !d.successOnly || st == Succeeded {
		d.last = d.clock()
		d.armed = true
	}
	d.state = st
}

// Timer holds its child back for a fixed delay from the start of each pass,
// reporting Running until then. Once the delay is over the child's result
// is passed through.
type Timer struct {
	decorator
	delay time.Duration
	clock func() time.Time
	since time.Time
}

func NewTimer(name string, child Node, delay time.Duration) *Timer {
	d := &Timer{delay: delay, clock: time.Now}
	d.initDecorator(name, d, child)
	return d
}

// SetClock replaces the time source; nil restores time.Now.
func (d *Timer) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	d.clock = clock
}

func (d *Timer) start(*Blackboard) { d.since = d.clock() }

func (d *Timer) update(bb *Blackboard) {
	if d.clock().Sub(d.since) < d.delay {
		d.state = Running
		return
	}
	switch st := d.startChild(bb, d.Child()); st {
	case Running, Succeeded:
		d.state = st
	default:
		d.state = Failed
	}
}

// Roller yields values in [0, 1). *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Probability rolls once per pass and ticks its child only on a hit;
// a miss fails at once.
type Probability struct {
	decorator
	p      float64
	roller Roller
	hit    bool
}

func NewProbability(name string, child Node, p float64) *Probability {
	d := &Probability{p: p, roller: rand.New(rand.NewSource(time.Now().UnixNano()))}
	d.initDecorator(name, d, child)
	return d
}

// SetRoller replaces the source of randomness; nil keeps the current one.
func (d *Probability) SetRoller(r Roller) {
	if r != nil {
		d.roller = r
	}
}

func (d *Probability) start(*Blackboard) {
	switch {
	case d.p <= 0:
		d.hit = false
	case d.p >= 1:
		d.hit = true
	default:
		d.hit = d.roller.Float64() < d.p
	}
}

func (d *Probability) update(bb *Blackboard) {
	if !d.hit {
		d.state = Failed
		return
	}
	switch st := d.startChild(bb, d.Child()); st {
	case Running, Succeeded:
		d.state = st
	default:
		d.state = Failed
	}
}
