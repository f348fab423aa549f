package textgen

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Config holds configuration passed to provider factories.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Factory creates provider instances from configuration.
type Factory func(Config) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register registers a provider factory, typically from an init() function so
// providers self-register on import:
//
//	func init() {
//	    textgen.Register("scripted", New)
//	}
//
// Panics if the name is already taken.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("textgen: provider %q already registered", name))
	}
	registry[name] = factory
}

// New builds a registered provider by name.
func New(name string, cfg Config) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("textgen: provider %q not registered (available: %v)", name, Names())
	}
	return factory(cfg)
}

// Names lists registered providers.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
