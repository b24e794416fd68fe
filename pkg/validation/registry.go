package validation

import (
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Registry manages the available named validators.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]domain.ValidatorFunc
}

// NewRegistry creates a registry pre-populated with the built-in validators.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]domain.ValidatorFunc)}
	for name, fn := range builtins {
		r.funcs[name] = fn
	}
	return r
}

// Register adds a validator to the registry. If a validator with the same
// name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.ValidatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Lookup returns the validator registered under name.
func (r *Registry) Lookup(name string) (domain.ValidatorFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered validator names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}
