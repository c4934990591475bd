package bt

import (
	"errors"
	"fmt"
)

// Structural errors. Constructors panic with these wrapped; the config
// builder reports them as regular errors.
var (
	ErrNilBlackboard = errors.New("node ticked without a blackboard")
	ErrNoChildren    = errors.New("parent node requires at least one child")
	ErrNilChild      = errors.New("child node is nil")
	ErrNilCallback   = errors.New("leaf callback is nil")
	ErrNilScheduler  = errors.New("async task requires a scheduler")
)

// Blackboard errors.
var (
	ErrKeyNotFound  = errors.New("blackboard key not found")
	ErrTypeMismatch = errors.New("blackboard value has unexpected type")
)

// Config errors.
var (
	ErrInvalidConfig = errors.New("invalid tree config")
	ErrUnknownNode   = errors.New("unknown node")
	ErrUnknownType   = errors.New("unknown node type")
	ErrUnknownModule = errors.New("unknown registered module")
	ErrCycle         = errors.New("node reference cycle")
	ErrNoScheduler   = errors.New("tree uses async tasks but no scheduler was provided")
)

// KeyNotFoundError is returned by Blackboard.Get for a missing key.
type KeyNotFoundError struct {
	Key   string
	Board string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("blackboard %s: key %q not found", e.Board, e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

func structural(err error, name string) error {
	return fmt.Errorf("%w: node %q", err, name)
}
