package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/teilomillet/trailhead/config"
	"github.com/teilomillet/trailhead/utils"
)

// builtins are the codecs selectable through config.Config.Provider.
var builtins = map[string]ProviderConstructor{
	"ollama": func(apiKey, model string, headers map[string]string) Provider {
		return NewOllamaProvider(apiKey, model, headers)
	},
	"openai": func(apiKey, model string, headers map[string]string) Provider {
		return NewOpenAIProvider(apiKey, model, headers)
	},
}

// ProviderRegistry maps backend names to codec constructors. It is safe for
// concurrent use.
type ProviderRegistry struct {
	mu           sync.RWMutex
	constructors map[string]ProviderConstructor
}

// NewProviderRegistry returns a registry holding the named builtin codecs,
// or every builtin when names is empty. Unknown names are ignored.
func NewProviderRegistry(names ...string) *ProviderRegistry {
	r := &ProviderRegistry{constructors: make(map[string]ProviderConstructor, len(builtins))}
	for name, constructor := range builtins {
		if len(names) == 0 || contains(names, name) {
			r.constructors[name] = constructor
		}
	}
	return r
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Register adds or replaces the constructor for name.
func (r *ProviderRegistry) Register(name string, constructor ProviderConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[strings.ToLower(name)] = constructor
}

// Build creates the codec named by cfg.Provider, authenticated with that
// provider's API key and configured from cfg.
func (r *ProviderRegistry) Build(cfg *config.Config, logger utils.Logger) (Provider, error) {
	name := strings.ToLower(cfg.Provider)

	r.mu.RLock()
	constructor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q, registered: %s", cfg.Provider, strings.Join(r.Names(), ", "))
	}

	p := constructor(cfg.APIKey(name), cfg.Model, nil)
	if logger != nil {
		p.SetLogger(logger)
	}
	p.SetDefaultOptions(cfg)
	return p, nil
}

// Names lists the registered providers in sorted order.
func (r *ProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewProviderRegistry()

// GetDefaultRegistry returns the shared registry of builtin codecs.
func GetDefaultRegistry() *ProviderRegistry {
	return defaultRegistry
}
