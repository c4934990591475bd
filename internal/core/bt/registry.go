package bt

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// Factories turn config params into node behavior.
type (
	ConditionFactory func(params map[string]any) (func(bb *Blackboard) bool, error)
	ActionFactory    func(params map[string]any) (func(bb *Blackboard) NodeState, error)
	TaskFactory      func(params map[string]any) (Work, error)
	DecoratorFactory func(name string, child Node, params map[string]any) (Node, error)
)

// Registry maps module names used in configs to factories. It is safe for
// concurrent use so trees can be built from several goroutines.
type Registry struct {
	mu         sync.RWMutex
	conditions map[string]ConditionFactory
	actions    map[string]ActionFactory
	tasks      map[string]TaskFactory
	decorators map[string]DecoratorFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conditions: make(map[string]ConditionFactory),
		actions:    make(map[string]ActionFactory),
		tasks:      make(map[string]TaskFactory),
		decorators: make(map[string]DecoratorFactory),
	}
}

func (r *Registry) RegisterCondition(name string, f ConditionFactory) {
	r.mu.Lock()
	r.conditions[name] = f
	r.mu.Unlock()
}

func (r *Registry) RegisterAction(name string, f ActionFactory) {
	r.mu.Lock()
	r.actions[name] = f
	r.mu.Unlock()
}

func (r *Registry) RegisterTask(name string, f TaskFactory) {
	r.mu.Lock()
	r.tasks[name] = f
	r.mu.Unlock()
}

func (r *Registry) RegisterDecorator(name string, f DecoratorFactory) {
	r.mu.Lock()
	r.decorators[name] = f
	r.mu.Unlock()
}

func (r *Registry) NewCondition(name string, params map[string]any) (func(bb *Blackboard) bool, error) {
	r.mu.RLock()
	f := r.conditions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: condition %q", ErrUnknownModule, name)
	}
	return f(params)
}

func (r *Registry) NewAction(name string, params map[string]any) (func(bb *Blackboard) NodeState, error) {
	r.mu.RLock()
	f := r.actions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: action %q", ErrUnknownModule, name)
	}
	return f(params)
}

func (r *Registry) NewTask(name string, params map[string]any) (Work, error) {
	r.mu.RLock()
	f := r.tasks[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: task %q", ErrUnknownModule, name)
	}
	return f(params)
}

func (r *Registry) NewDecorator(kind, name string, child Node, params map[string]any) (Node, error) {
	r.mu.RLock()
	f := r.decorators[kind]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: decorator %q", ErrUnknownModule, kind)
	}
	return f(name, child, params)
}

// Names lists registered modules by kind, sorted.
func (r *Registry) Names() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return map[string][]string{
		"condition": sortedKeys(r.conditions),
		"action":    sortedKeys(r.actions),
		"task":      sortedKeys(r.tasks),
		"decorator": sortedKeys(r.decorators),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// DecodeParams decodes loosely typed config params into out. Numeric strings,
// YAML ints and JSON floats are all accepted; unknown keys are rejected.
func DecodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: params: %v", ErrInvalidConfig, err)
	}
	return nil
}
