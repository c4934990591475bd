package bt

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"time"
)

// DefaultRegistry holds the builtin modules.
var DefaultRegistry = NewRegistry()

func init() {
	RegisterBuiltins(DefaultRegistry)
}

type keyParams struct {
	Key string `mapstructure:"key"`
}

type keyValueParams struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

type incrementParams struct {
	Key string `mapstructure:"key"`
	By  int    `mapstructure:"by"`
}

type sleepParams struct {
	Duration time.Duration `mapstructure:"duration"`
	Ms       int           `mapstructure:"ms"`
}

type cooldownParams struct {
	Duration    time.Duration `mapstructure:"duration"`
	SuccessOnly bool          `mapstructure:"success_only"`
}

type timerParams struct {
	Duration time.Duration `mapstructure:"duration"`
}

type probabilityParams struct {
	P    float64 `mapstructure:"p"`
	Seed *int64  `mapstructure:"seed"`
}

func decodeKey(module string, params map[string]any) (keyParams, error) {
	var p keyParams
	if err := DecodeParams(params, &p); err != nil {
		return p, fmt.Errorf("%s: %w", module, err)
	}
	if p.Key == "" {
		return p, fmt.Errorf("%w: %s requires 'key'", ErrInvalidConfig, module)
	}
	return p, nil
}

func decodeKeyValue(module string, params map[string]any) (keyValueParams, error) {
	var p keyValueParams
	if err := DecodeParams(params, &p); err != nil {
		return p, fmt.Errorf("%s: %w", module, err)
	}
	if p.Key == "" {
		return p, fmt.Errorf("%w: %s requires 'key'", ErrInvalidConfig, module)
	}
	return p, nil
}

// RegisterBuiltins registers small reusable modules into r.
func RegisterBuiltins(r *Registry) {
	// Conditions
	r.RegisterCondition("IsTrue", func(params map[string]any) (func(*Blackboard) bool, error) {
		p, err := decodeKey("IsTrue", params)
		if err != nil {
			return nil, err
		}
		return func(bb *Blackboard) bool {
			v, err := bb.GetBool(p.Key)
			return err == nil && v
		}, nil
	})

	r.RegisterCondition("Exists", func(params map[string]any) (func(*Blackboard) bool, error) {
		p, err := decodeKey("Exists", params)
		if err != nil {
			return nil, err
		}
		return func(bb *Blackboard) bool { return bb.Exists(p.Key) }, nil
	})

	r.RegisterCondition("Equals", func(params map[string]any) (func(*Blackboard) bool, error) {
		p, err := decodeKeyValue("Equals", params)
		if err != nil {
			return nil, err
		}
		return func(bb *Blackboard) bool {
			v, err := bb.Get(p.Key)
			return err == nil && looseEqual(v, p.Value)
		}, nil
	})

	// Actions
	r.RegisterAction("SetValue", func(params map[string]any) (func(*Blackboard) NodeState, error) {
		p, err := decodeKeyValue("SetValue", params)
		if err != nil {
			return nil, err
		}
		return func(bb *Blackboard) NodeState {
			bb.Set(p.Key, p.Value)
			return Succeeded
		}, nil
	})

	r.RegisterAction("Delete", func(params map[string]any) (func(*Blackboard) NodeState, error) {
		p, err := decodeKey("Delete", params)
		if err != nil {
			return nil, err
		}
		return func(bb *Blackboard) NodeState {
			bb.Delete(p.Key)
			return Succeeded
		}, nil
	})

	r.RegisterAction("Increment", func(params map[string]any) (func(*Blackboard) NodeState, error) {
		p := incrementParams{By: 1}
		if err := DecodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("Increment: %w", err)
		}
		if p.Key == "" {
			return nil, fmt.Errorf("%w: Increment requires 'key'", ErrInvalidConfig)
		}
		return func(bb *Blackboard) NodeState {
			n := 0
			if bb.Exists(p.Key) {
				cur, err := bb.GetInt(p.Key)
				if err != nil {
					return Failed
				}
				n = cur
			}
			bb.Set(p.Key, n+p.By)
			return Succeeded
		}, nil
	})

	r.RegisterAction("Fail", func(map[string]any) (func(*Blackboard) NodeState, error) {
		return func(*Blackboard) NodeState { return Failed }, nil
	})

	r.RegisterAction("Noop", func(map[string]any) (func(*Blackboard) NodeState, error) {
		return func(*Blackboard) NodeState { return Succeeded }, nil
	})

	// Tasks
	r.RegisterTask("Sleep", func(params map[string]any) (Work, error) {
		var p sleepParams
		if err := DecodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("Sleep: %w", err)
		}
		d := p.Duration
		if d == 0 {
			d = time.Duration(p.Ms) * time.Millisecond
		}
		if d < 0 {
			return nil, fmt.Errorf("%w: Sleep duration must not be negative", ErrInvalidConfig)
		}
		return func(ctx context.Context) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-timer.C:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}, nil
	})

	// Decorators
	r.RegisterDecorator("Inverter", func(name string, child Node, _ map[string]any) (Node, error) {
		return NewInverter(name, child), nil
	})

	r.RegisterDecorator("Succeeder", func(name string, child Node, _ map[string]any) (Node, error) {
		return NewSucceeder(name, child), nil
	})

	r.RegisterDecorator("Cooldown", func(name string, child Node, params map[string]any) (Node, error) {
		var p cooldownParams
		if err := DecodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("Cooldown: %w", err)
		}
		if p.Duration < 0 {
			return nil, fmt.Errorf("%w: Cooldown duration must not be negative", ErrInvalidConfig)
		}
		return NewCooldown(name, child, p.Duration, p.SuccessOnly), nil
	})

	r.RegisterDecorator("Timer", func(name string, child Node, params map[string]any) (Node, error) {
		var p timerParams
		if err := DecodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("Timer: %w", err)
		}
		if p.Duration < 0 {
			return nil, fmt.Errorf("%w: Timer duration must not be negative", ErrInvalidConfig)
		}
		return NewTimer(name, child, p.Duration), nil
	})

	r.RegisterDecorator("Probability", func(name string, child Node, params map[string]any) (Node, error) {
		var p probabilityParams
		if err := DecodeParams(params, &p); err != nil {
			return nil, fmt.Errorf("Probability: %w", err)
		}
		if p.P < 0 || p.P > 1 {
			return nil, fmt.Errorf("%w: Probability p must be within [0, 1], got %v", ErrInvalidConfig, p.P)
		}
		d := NewProbability(name, child, p.P)
		if p.Seed != nil {
			d.SetRoller(rand.New(rand.NewSource(*p.Seed)))
		}
		return d, nil
	})
}

// looseEqual compares config values with blackboard values, treating all
// numeric kinds as float64 so YAML ints match JSON floats.
func looseEqual(a, b any) bool {
	fa, okA := asFloat(a)
	fb, okB := asFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
