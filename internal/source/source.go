// Package source defines where architecture snapshots come from.
//
// A Provider returns a fully materialised Snapshot; model construction only
// starts once the whole snapshot is in memory.
package source

import (
	"context"
	"fmt"
	"sort"
)

// ConfigQuestion describes a single configuration prompt for a provider.
type ConfigQuestion struct {
	Key     string
	Prompt  string
	Type    string // "text" | "secret"
	Default string
}

// Provider is the interface every snapshot source must implement.
type Provider interface {
	// Name returns the provider's canonical short identifier (e.g. "static").
	Name() string

	// Configure returns the questions the provider needs answered before it
	// can fetch.
	Configure() []ConfigQuestion

	// Fetch returns a complete snapshot using the provided config key/value
	// pairs.
	Fetch(ctx context.Context, config map[string]string) (*Snapshot, error)
}

// Registry holds the available providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns a registry holding providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider with the same name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Lookup returns the provider called name.
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q (available: %v)", name, r.Names())
	}
	return p, nil
}

// Names returns provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
