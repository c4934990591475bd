package bt

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Config describes a tree declaratively in JSON or YAML. Root lists the
// nodes ticked by the Tree on every step; Nodes maps names to definitions.
// A name may be referenced from several places: each reference builds its
// own instance, so the built tree keeps a single owner per node.
type Config struct {
	Name  string                `json:"name" yaml:"name"`
	Seed  *int64                `json:"seed,omitempty" yaml:"seed,omitempty"`
	Root  []string              `json:"root" yaml:"root"`
	Nodes map[string]ConfigNode `json:"nodes" yaml:"nodes"`
}

type ConfigNode struct {
	Type      string         `json:"type" yaml:"type"`
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string         `json:"child,omitempty" yaml:"child,omitempty"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Action    string         `json:"action,omitempty" yaml:"action,omitempty"`
	Task      string         `json:"task,omitempty" yaml:"task,omitempty"`
	Decorator string         `json:"decorator,omitempty" yaml:"decorator,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Node type names accepted in configs.
const (
	TypeSequence  = "sequence"
	TypeSelector  = "selector"
	TypeInverter  = "inverter"
	TypeSucceeder = "succeeder"
	TypeDecorator = "decorator"
	TypeCondition = "condition"
	TypeAction    = "action"
	TypeTask      = "task"
)

// LoadJSON loads config from JSON reader.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidConfig, err)
	}
	return &c, nil
}

// LoadYAML loads config from YAML reader.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidConfig, err)
	}
	return &c, nil
}

// LoadFile picks the decoder from the file extension (.json, .yaml, .yml).
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported config extension %q", ErrInvalidConfig, filepath.Ext(path))
	}
}

// Validate checks the graph shape without instantiating modules.
func (c *Config) Validate() error {
	if len(c.Root) == 0 {
		return fmt.Errorf("%w: root lists no nodes", ErrInvalidConfig)
	}
	for _, name := range c.Root {
		if err := c.validateNode(name, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateNode(name string, path map[string]bool) error {
	if path[name] {
		return fmt.Errorf("%w: %q", ErrCycle, name)
	}
	nc, ok := c.Nodes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, name)
	}
	path[name] = true
	defer delete(path, name)

	switch strings.ToLower(nc.Type) {
	case TypeSequence, TypeSelector:
		if len(nc.Children) == 0 {
			return fmt.Errorf("%w: %s %q has no children", ErrInvalidConfig, nc.Type, name)
		}
		for _, ch := range nc.Children {
			if err := c.validateNode(ch, path); err != nil {
				return err
			}
		}
	case TypeInverter, TypeSucceeder, TypeDecorator:
		if nc.Child == "" {
			return fmt.Errorf("%w: %s %q requires child", ErrInvalidConfig, nc.Type, name)
		}
		if strings.EqualFold(nc.Type, TypeDecorator) && nc.Decorator == "" {
			return fmt.Errorf("%w: decorator %q requires 'decorator'", ErrInvalidConfig, name)
		}
		return c.validateNode(nc.Child, path)
	case TypeCondition:
		if nc.Condition == "" {
			return fmt.Errorf("%w: condition %q requires 'condition'", ErrInvalidConfig, name)
		}
	case TypeAction:
		if nc.Action == "" {
			return fmt.Errorf("%w: action %q requires 'action'", ErrInvalidConfig, name)
		}
	case TypeTask:
		if nc.Task == "" {
			return fmt.Errorf("%w: task %q requires 'task'", ErrInvalidConfig, name)
		}
	default:
		return fmt.Errorf("%w: %q for node %q", ErrUnknownType, nc.Type, name)
	}
	return nil
}

// BuildOptions supplies the collaborators a config may need.
type BuildOptions struct {
	// Registry resolves module names; DefaultRegistry when nil.
	Registry *Registry
	// Scheduler runs task nodes; required only when the config has tasks.
	Scheduler Scheduler
	// Blackboard becomes the tree's default blackboard; a fresh one when nil.
	Blackboard *Blackboard
	Logger     log.Log
}

// Build validates the config and assembles a Tree.
func (c *Config) Build(opts BuildOptions) (*Tree, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry
	}
	b := &builder{cfg: c, opts: opts}

	children := make([]Node, 0, len(c.Root))
	for _, name := range c.Root {
		n, err := b.build(name, name)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}

	treeName := c.Name
	if treeName == "" {
		treeName = "tree"
	}
	t := NewTreeWithBlackboard(treeName, opts.Blackboard, children...)
	if opts.Logger != nil {
		t.SetLogger(opts.Logger)
	}
	return t, nil
}

type builder struct {
	cfg  *Config
	opts BuildOptions
}

// build instantiates name; path is the slash-joined route from the root and
// keys the per-selector seed.
func (b *builder) build(name, path string) (Node, error) {
	nc := b.cfg.Nodes[name]
	switch strings.ToLower(nc.Type) {
	case TypeSequence:
		children, err := b.buildChildren(nc.Children, path)
		if err != nil {
			return nil, err
		}
		return NewSequence(name, children...), nil
	case TypeSelector:
		children, err := b.buildChildren(nc.Children, path)
		if err != nil {
			return nil, err
		}
		sel := NewSelector(name, children...)
		if b.cfg.Seed != nil {
			sel.SetShuffler(rand.New(rand.NewSource(SelectorSeed(*b.cfg.Seed, path))))
		}
		return sel, nil
	case TypeInverter, TypeSucceeder, TypeDecorator:
		child, err := b.build(nc.Child, path+"/"+nc.Child)
		if err != nil {
			return nil, err
		}
		kind := nc.Decorator
		switch strings.ToLower(nc.Type) {
		case TypeInverter:
			kind = "Inverter"
		case TypeSucceeder:
			kind = "Succeeder"
		}
		n, err := b.opts.Registry.NewDecorator(kind, name, child, nc.Params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		return n, nil
	case TypeCondition:
		pred, err := b.opts.Registry.NewCondition(nc.Condition, nc.Params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		return NewBlackboardConditional(name, pred), nil
	case TypeAction:
		fn, err := b.opts.Registry.NewAction(nc.Action, nc.Params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		return NewAction(name, fn), nil
	case TypeTask:
		if b.opts.Scheduler == nil {
			return nil, fmt.Errorf("node %q: %w", name, ErrNoScheduler)
		}
		work, err := b.opts.Registry.NewTask(nc.Task, nc.Params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		return NewAsyncTask(name, b.opts.Scheduler, work), nil
	default:
		return nil, fmt.Errorf("%w: %q for node %q", ErrUnknownType, nc.Type, name)
	}
}

func (b *builder) buildChildren(names []string, path string) ([]Node, error) {
	children := make([]Node, 0, len(names))
	for i, ch := range names {
		n, err := b.build(ch, fmt.Sprintf("%s/%d:%s", path, i, ch))
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, nil
}

// SelectorSeed derives a stable per-selector seed from the tree seed and the
// selector's path, so sibling selectors shuffle independently.
func SelectorSeed(seed int64, path string) int64 {
	return int64(uint64(seed) ^ xxhash.Sum64String(path))
}
