package fn

import (
	"fmt"
	"sync"

	"parley/internal/openai"
)

// Registry is the set of functions offered to the model for one
// completion call, keyed by name.
type Registry struct {
	fns   map[string]*Function
	order []string
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*Function),
	}
}

// Register validates the function and adds it. Duplicate names and
// invalid declarations are rejected, so a registry that made it past
// registration is safe to serialize.
func (r *Registry) Register(f *Function) error {
	if err := f.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := f.Name()
	if _, exists := r.fns[name]; exists {
		return fmt.Errorf("%w: function %q already registered", ErrConfig, name)
	}

	r.fns[name] = f
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (*Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.fns[name]
	if !exists {
		return nil, fmt.Errorf("function %q not found", name)
	}
	return f, nil
}

// List returns the registered functions in registration order.
func (r *Registry) List() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fns := make([]*Function, 0, len(r.order))
	for _, name := range r.order {
		fns = append(fns, r.fns[name])
	}
	return fns
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns)
}

// Definitions returns the wire descriptors for all registered
// functions, in registration order.
func (r *Registry) Definitions() []openai.FunctionDefinition {
	fns := r.List()
	defs := make([]openai.FunctionDefinition, len(fns))
	for i, f := range fns {
		defs[i] = f.Definition()
	}
	return defs
}
