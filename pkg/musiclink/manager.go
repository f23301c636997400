package musiclink

import (
	"context"
	"slices"
)

// Manager routes calls to the adapter registered for a provider. It is read-only after
// construction and safe for concurrent use.
type Manager struct {
	adapters map[Provider]Adapter
	order    []Provider
}

// NewManager registers adapters in the given order. A later adapter for the same
// provider replaces the earlier one.
func NewManager(adapters ...Adapter) *Manager {
	m := &Manager{adapters: make(map[Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		p := a.Provider()
		if _, exists := m.adapters[p]; !exists {
			m.order = append(m.order, p)
		}
		m.adapters[p] = a
	}
	return m
}

// NewDefaultManager creates a manager with all supported adapters sharing client.
func NewDefaultManager(client *Client) *Manager {
	return NewManager(
		NewSBYAdapter(client),
		NewXFAdapter(client),
		NewXZGAdapter(client),
		NewLZAdapter(client),
		NewCGGAdapter(client),
	)
}

func (m *Manager) adapter(p Provider) (Adapter, error) {
	a, ok := m.adapters[p]
	if !ok {
		return nil, UnknownProviderFault(p)
	}
	return a, nil
}

// Search runs a single-platform search against one provider.
func (m *Manager) Search(ctx context.Context, provider Provider, q SearchQuery) ([]SearchMatch, error) {
	a, err := m.adapter(provider)
	if err != nil {
		return nil, err
	}
	return a.Search(ctx, q)
}

// FetchDetail resolves a continuation key with one provider.
func (m *Manager) FetchDetail(ctx context.Context, provider Provider, key string) (*PlayableTrack, error) {
	a, err := m.adapter(provider)
	if err != nil {
		return nil, err
	}
	return a.FetchDetail(ctx, key)
}

// FetchLyrics fetches lyrics with one provider.
func (m *Manager) FetchLyrics(ctx context.Context, provider Provider, key string) (string, error) {
	a, err := m.adapter(provider)
	if err != nil {
		return "", err
	}
	lf, ok := a.(LyricsFetcher)
	if !ok {
		return "", UnsupportedFault(provider, "lyrics")
	}
	return lf.FetchLyrics(ctx, key)
}

// Has reports whether an adapter is registered for provider.
func (m *Manager) Has(provider Provider) bool {
	_, ok := m.adapters[provider]
	return ok
}

// Providers returns the registered providers in registration order.
func (m *Manager) Providers() []Provider {
	return slices.Clone(m.order)
}

// Serves reports whether provider is registered and serves platform.
func (m *Manager) Serves(provider Provider, platform Platform) bool {
	a, ok := m.adapters[provider]
	if !ok {
		return false
	}
	return slices.Contains(a.Platforms(), platform)
}

// SupportsLyrics reports whether provider has a lyrics capability at all.
func (m *Manager) SupportsLyrics(provider Provider) bool {
	a, ok := m.adapters[provider]
	if !ok {
		return false
	}
	_, ok = a.(LyricsFetcher)
	return ok
}
