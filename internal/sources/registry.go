// Package sources hosts the data source clients (Supabase, CoinGecko,
// DefiLlama, Dune) and the registry the rest of the app resolves them
// through.
package sources

import (
	"fmt"
	"sync"

	"github.com/yashh-d/chainpulse/internal/domain"
	"github.com/yashh-d/chainpulse/internal/services/auth"
	"github.com/yashh-d/chainpulse/internal/util"
)

// Factory is a constructor function that builds a data Source given an auth store.
type Factory func(store auth.Store) (domain.Source, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a source factory to the registry.
// It panics on empty name, nil factory, or duplicate registration
// (programmer errors detected at startup).
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("sources: empty source name")
	}
	if factory == nil {
		panic("sources: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("sources: source %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Get constructs and returns the Source for the given name,
// using the store to retrieve credentials.
func Get(name string, store auth.Store) (domain.Source, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("sources: unknown source %q", name)
	}

	return factory(store)
}

// List returns the names of all registered sources.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Reset clears the source registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}
