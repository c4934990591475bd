package bt

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/google/uuid"
)

// Blackboard is the key/value store shared by every node of a tree during a
// tick. It is owned by the Tree (or injected by the caller) and handed down
// explicitly on each Tick call.
//
// A Blackboard has no locking: a tree, and therefore its blackboard, is ticked
// by one goroutine at a time. Values written by a node are visible to nodes
// ticked after it in the same pass.
type Blackboard struct {
	name string
	data map[string]any
}

// NewBlackboard creates an empty blackboard with a generated diagnostic name.
func NewBlackboard() *Blackboard {
	return NewNamedBlackboard(uuid.NewString())
}

// NewNamedBlackboard creates an empty blackboard reported as name in errors.
func NewNamedBlackboard(name string) *Blackboard {
	return &Blackboard{name: name, data: make(map[string]any)}
}

// Name identifies the blackboard in diagnostics.
func (bb *Blackboard) Name() string { return bb.name }

// Get returns the value stored under key, or a *KeyNotFoundError.
func (bb *Blackboard) Get(key string) (any, error) {
	value, ok := bb.data[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key, Board: bb.name}
	}
	return value, nil
}

// Set inserts or overwrites key.
func (bb *Blackboard) Set(key string, value any) {
	bb.data[key] = value
}

// Exists reports whether key is present.
func (bb *Blackboard) Exists(key string) bool {
	_, ok := bb.data[key]
	return ok
}

// Delete removes key; missing keys are ignored.
func (bb *Blackboard) Delete(key string) {
	delete(bb.data, key)
}

// Len returns the number of stored keys.
func (bb *Blackboard) Len() int { return len(bb.data) }

// Keys returns the stored keys in sorted order.
func (bb *Blackboard) Keys() []string {
	return slices.Sorted(maps.Keys(bb.data))
}

// Snapshot returns a shallow copy of the current entries.
func (bb *Blackboard) Snapshot() map[string]any {
	return maps.Clone(bb.data)
}

// Clear removes every entry.
func (bb *Blackboard) Clear() {
	clear(bb.data)
}

func (bb *Blackboard) String() string {
	return fmt.Sprintf("blackboard(%s, %d keys)", bb.name, len(bb.data))
}

// Lookup fetches key and asserts it to T.
func Lookup[T any](bb *Blackboard, key string) (T, error) {
	var zero T
	value, err := bb.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T, want %T", ErrTypeMismatch, key, value, zero)
	}
	return typed, nil
}

// GetInt reads a numeric value as int, accepting the numeric types decoders
// commonly produce. Floats must be integral and every value must fit in int.
func (bb *Blackboard) GetInt(key string) (int, error) {
	value, err := bb.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(value)
	if !ok {
		return 0, fmt.Errorf("%w: key %q holds %T(%v), want integer", ErrTypeMismatch, key, value, value)
	}
	return n, nil
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), v >= math.MinInt && v <= math.MaxInt
	case int32:
		return int(v), true
	case uint:
		return int(v), v <= math.MaxInt
	case uint64:
		return int(v), v <= math.MaxInt
	case uint32:
		return int(v), uint64(v) <= math.MaxInt
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	default:
		return 0, false
	}
}

// floatToInt rejects fractions, NaN and values outside the int range.
func floatToInt(v float64) (int, bool) {
	if v != math.Trunc(v) || v < math.MinInt || v >= -math.MinInt {
		return 0, false
	}
	return int(v), true
}

// GetBool reads a bool value.
func (bb *Blackboard) GetBool(key string) (bool, error) {
	return Lookup[bool](bb, key)
}

// GetString reads a string value.
func (bb *Blackboard) GetString(key string) (string, error) {
	return Lookup[string](bb, key)
}
