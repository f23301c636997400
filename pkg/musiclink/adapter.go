package musiclink

import (
	"context"
	"net/url"
	"slices"
)

// Adapter hides one provider's request shapes, field names and success codes behind the
// canonical search/detail contract.
type Adapter interface {
	// Provider returns the provider this adapter talks to.
	Provider() Provider

	// Platforms lists the platforms the provider serves.
	Platforms() []Platform

	// Search queries a single platform. It returns an empty list, not an error, when the
	// platform is not served.
	Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error)

	// FetchDetail resolves a continuation key. A response without an audio URL yields
	// an ErrUnplayable fault.
	FetchDetail(ctx context.Context, key string) (*PlayableTrack, error)
}

// LyricsFetcher is implemented by adapters that can return lyrics for a continuation key.
type LyricsFetcher interface {
	FetchLyrics(ctx context.Context, key string) (string, error)
}

// endpointTable maps platforms to provider-relative endpoints, in declaration order.
type endpointTable []struct {
	platform Platform
	endpoint string
}

func (t endpointTable) endpoint(p Platform) (string, bool) {
	for _, e := range t {
		if e.platform == p {
			return e.endpoint, true
		}
	}
	return "", false
}

func (t endpointTable) platformOf(k Key) (Platform, bool) {
	for _, e := range t {
		if k.endpointIs(e.endpoint) {
			return e.platform, true
		}
	}
	return "", false
}

func (t endpointTable) platforms() []Platform {
	out := make([]Platform, 0, len(t))
	for _, e := range t {
		out = append(out, e.platform)
	}
	return out
}

// baseAdapter carries what every adapter shares.
type baseAdapter struct {
	client    *Client
	provider  Provider
	endpoints endpointTable
}

func (b *baseAdapter) Provider() Provider { return b.provider }

func (b *baseAdapter) Platforms() []Platform { return b.endpoints.platforms() }

func (b *baseAdapter) serves(p Platform) bool {
	return slices.Contains(b.endpoints.platforms(), p)
}

// decodeKey parses a key and checks that it was issued by this adapter.
func (b *baseAdapter) decodeKey(raw string) (Key, Platform, error) {
	k, err := ParseKey(raw)
	if err != nil {
		return Key{}, "", err
	}
	if k.Provider != b.provider {
		return Key{}, "", validationFault(b.provider, "key issued by "+string(k.Provider))
	}
	platform, ok := b.endpoints.platformOf(k)
	if !ok {
		return Key{}, "", validationFault(b.provider, "unknown endpoint "+k.Endpoint)
	}
	return k, platform, nil
}

// key builds a continuation key for one of this adapter's endpoints.
func (b *baseAdapter) key(endpoint string, params url.Values) string {
	return BuildKey(b.provider, endpoint, params)
}
