package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps adapter keys to in-process adapters.
// It is filled at startup; platforms may only reference registered keys.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under key
func (r *Registry) Register(key string, adapter Adapter) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("adapter key cannot be empty")
	}
	if adapter == nil {
		return fmt.Errorf("adapter %q is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[key]; exists {
		return fmt.Errorf("adapter %q already registered", key)
	}
	r.adapters[key] = adapter
	return nil
}

// Get returns the adapter registered under key
func (r *Registry) Get(key string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[key]
	return a, ok
}

// Has reports whether key is registered
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the registered keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate fails when any of keys is not registered
func (r *Registry) Validate(keys []string) error {
	var unknown []string
	for _, k := range keys {
		if !r.Has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown platform adapters: %s (registered: %s)",
			strings.Join(unknown, ", "), strings.Join(r.Keys(), ", "))
	}
	return nil
}
