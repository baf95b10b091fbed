// Package ugen provides the unit-generator registry and a few built-in
// generators. A unit generator is the opaque leaf computation a synth node
// runs each block; the scheduling core invokes it through queue.Runner and
// knows nothing about the signal processing inside.
package ugen

import (
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/synthgrid/internal/queue"
)

// Spec carries the engine parameters and the decoded patch arguments a
// factory builds a generator from.
type Spec struct {
	SampleRate float64
	BlockSize  int
	Args       map[string]cty.Value
}

// Factory constructs one generator instance from a spec.
type Factory func(spec Spec) (queue.Runner, error)

// Registry maps ugen type names to factories. Registration happens at
// startup; lookups run on the control path when a patch is loaded.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a type name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New instantiates a generator of the named type.
func (r *Registry) New(name string, spec Spec) (queue.Runner, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ugen type %q", name)
	}
	runner, err := f(spec)
	if err != nil {
		return nil, fmt.Errorf("building ugen %q: %w", name, err)
	}
	return runner, nil
}

// Default returns a registry with all built-in generators registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("sine", newSine)
	r.Register("saw", newSaw)
	r.Register("noise", newNoise)
	return r
}

// floatArg reads a numeric argument, falling back to def when absent.
func floatArg(args map[string]cty.Value, name string, def float64) (float64, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return def, nil
	}
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("argument %q: expected number, got %s", name, v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
