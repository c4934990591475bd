package agent

import (
	"context"
	"errors"
	"time"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Stepper is anything stepped once per driver tick. *Manager implements it.
type Stepper interface {
	Step(ctx context.Context) error
}

// Driver ticks a Stepper at a fixed rate.
type Driver struct {
	stepper  Stepper
	interval time.Duration
	maxTicks uint64
	onTick   func(tick uint64, err error)
	logger   log.Log
}

type DriverOption func(*Driver)

// WithInterval sets the time between ticks; zero ticks as fast as possible.
func WithInterval(d time.Duration) DriverOption {
	return func(dr *Driver) { dr.interval = d }
}

// WithMaxTicks stops the driver after n ticks; zero runs until cancelled.
func WithMaxTicks(n uint64) DriverOption {
	return func(dr *Driver) { dr.maxTicks = n }
}

// OnTick registers a hook called after every tick with the step error.
func OnTick(fn func(tick uint64, err error)) DriverOption {
	return func(dr *Driver) { dr.onTick = fn }
}

func WithDriverLogger(l log.Log) DriverOption {
	return func(dr *Driver) { dr.logger = l }
}

func NewDriver(stepper Stepper, opts ...DriverOption) *Driver {
	d := &Driver{stepper: stepper}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewNop()
	}
	return d
}

// Run ticks until ctx is done or the tick limit is reached and returns the
// number of ticks run. Step errors are reported to the hook and logged; they
// do not stop the driver.
func (d *Driver) Run(ctx context.Context) uint64 {
	var ticker *time.Ticker
	if d.interval > 0 {
		ticker = time.NewTicker(d.interval)
		defer ticker.Stop()
	}

	var tick uint64
	for d.maxTicks == 0 || tick < d.maxTicks {
		if err := ctx.Err(); err != nil {
			return tick
		}

		err := d.stepper.Step(ctx)
		tick++
		if err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("tick failed", log.Uint64("tick", tick), log.Error(err))
		}
		if d.onTick != nil {
			d.onTick(tick, err)
		}

		if ticker != nil && (d.maxTicks == 0 || tick < d.maxTicks) {
			select {
			case <-ctx.Done():
				return tick
			case <-ticker.C:
			}
		}
	}
	d.logger.Debug("driver finished", log.Uint64("ticks", tick))
	return tick
}
