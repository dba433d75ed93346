package generation

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider is one AI vendor able to turn a prompt into JSON.
type Provider interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt, preferredModel string) (json.RawMessage, error)
}

// Labeler is implemented by providers with a human readable name for
// aggregated errors.
type Labeler interface {
	Label() string
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("provider %s is not registered", name)
}

// Chain resolves providers in the given priority order. Duplicates are
// dropped.
func (r *Registry) Chain(order []string) ([]Provider, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("provider order is empty")
	}

	seen := map[string]bool{}
	chain := make([]Provider, 0, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		p, err := r.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("resolve chain: %w", err)
		}
		chain = append(chain, p)
	}
	return chain, nil
}

func label(p Provider) string {
	if l, ok := p.(Labeler); ok && l.Label() != "" {
		return l.Label()
	}
	return p.Name()
}
