// Package registry holds the named kernel factories the derivation layer
// instantiates builder functions from. Kernels are compiled in and register
// themselves at startup; a duplicate name is a programmer error and panics.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/denoisegridgo/internal/artifact"
)

// Module is the interface that all core kernel packages implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Factory turns kernel parameters into a builder function. Parameter
// validation happens here, before the node enters the graph, so a bad
// configuration never schedules work.
type Factory func(params any) (artifact.BuilderFn, error)

// Registry maps kernel names to their factories for a single application
// instance.
type Registry struct {
	factories map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// RegisterFactory registers a kernel factory under a name.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("kernel factory with name '%s' already registered", name))
	}
	if factory == nil {
		panic(fmt.Sprintf("kernel factory with name '%s' is nil", name))
	}
	slog.Debug("Registering kernel factory.", "name", name)
	r.factories[name] = factory
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no kernel factory registered under '%s'", name)
	}
	return factory, nil
}

// Build instantiates a builder function from the named factory.
func (r *Registry) Build(name string, params any) (artifact.BuilderFn, error) {
	factory, err := r.Factory(name)
	if err != nil {
		return nil, err
	}
	fn, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("kernel '%s': %w", name, err)
	}
	return fn, nil
}

// Names returns all registered kernel names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateRegistry performs a parity check between the kernels the
// derivation layer requires and the factories actually registered.
func (r *Registry) ValidateRegistry(required []string) error {
	var missing []string
	for _, name := range required {
		if _, ok := r.factories[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("registry validation failed: missing kernel factories %v", missing)
	}
	return nil
}
