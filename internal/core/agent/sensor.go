package agent

import (
	"context"

	"github.com/zeusync/behave/internal/core/bt"
)

// Sensor refreshes blackboard facts before each tick.
type Sensor interface {
	Name() string
	Update(ctx context.Context, bb *bt.Blackboard) error
}

type sensorFunc struct {
	name string
	fn   func(ctx context.Context, bb *bt.Blackboard) error
}

// SensorFunc adapts fn into a Sensor.
func SensorFunc(name string, fn func(ctx context.Context, bb *bt.Blackboard) error) Sensor {
	return &sensorFunc{name: name, fn: fn}
}

func (s *sensorFunc) Name() string { return s.name }

func (s *sensorFunc) Update(ctx context.Context, bb *bt.Blackboard) error {
	return s.fn(ctx, bb)
}

// Pumper runs cooperative work between ticks. tasks.Manual implements it.
type Pumper interface {
	RunPending(ctx context.Context) int
}
