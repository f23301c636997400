package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"musicpin/pkg/musiclink"
)

// ErrInvalidInterface is returned for malformed or unknown platform:provider pairs.
var ErrInvalidInterface = errors.New("invalid interface")

// Interface is a (platform, provider) pair the resolver may probe.
type Interface struct {
	Platform musiclink.Platform `json:"platform"`
	Provider musiclink.Provider `json:"source"`
}

func (i Interface) String() string {
	return string(i.Platform) + ":" + string(i.Provider)
}

// ParseInterface parses "platform:provider".
func ParseInterface(s string) (Interface, error) {
	platform, provider, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Interface{}, fmt.Errorf("%w: %q", ErrInvalidInterface, s)
	}
	i := Interface{
		Platform: musiclink.Platform(strings.ToLower(strings.TrimSpace(platform))),
		Provider: musiclink.Provider(strings.ToLower(strings.TrimSpace(provider))),
	}
	if !i.Platform.Valid() {
		return Interface{}, fmt.Errorf("%w: unknown platform %q", ErrInvalidInterface, platform)
	}
	if !i.Provider.Valid() {
		return Interface{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidInterface, provider)
	}
	return i, nil
}

// defaultInterfaces is the compiled-in probe order.
var defaultInterfaces = []Interface{
	{musiclink.PlatformNetEase, musiclink.ProviderSBY},
	{musiclink.PlatformQQ, musiclink.ProviderSBY},
	{musiclink.PlatformNetEase, musiclink.ProviderXF},
	{musiclink.PlatformKugou, musiclink.ProviderLZ},
	{musiclink.PlatformKuwo, musiclink.ProviderLZ},
	{musiclink.PlatformNetEase, musiclink.ProviderLZ},
	{musiclink.PlatformKugouSQ, musiclink.ProviderLZ},
	{musiclink.PlatformNetEase, musiclink.ProviderXZG},
	{musiclink.PlatformKugou, musiclink.ProviderXZG},
	{musiclink.PlatformKuwo, musiclink.ProviderXZG},
	{musiclink.PlatformDouyin, musiclink.ProviderCGG},
	{musiclink.PlatformQishui, musiclink.ProviderCGG},
	{musiclink.PlatformXimalaya, musiclink.ProviderCGG},
}

// DefaultInterfaces returns the compiled-in probe order.
func DefaultInterfaces() []Interface {
	return slices.Clone(defaultInterfaces)
}

// ProviderRegistry reports which platforms a registered provider serves.
type ProviderRegistry interface {
	Serves(provider musiclink.Provider, platform musiclink.Platform) bool
}

// InterfaceStatus is one row of the enablement table.
type InterfaceStatus struct {
	Interface
	Enabled bool `json:"enabled"`
}

// EnablementTable is the ordered allow-list of interfaces. It is read-only after
// construction, so concurrent readers need no locking.
type EnablementTable struct {
	rows []InterfaceStatus
}

// NewEnablementTable builds the compiled-in table with the given pairs disabled.
// Every row must be served by registry.
func NewEnablementTable(registry ProviderRegistry, disabled []string) (*EnablementTable, error) {
	return newEnablementTable(defaultInterfaces, registry, disabled)
}

func newEnablementTable(interfaces []Interface, registry ProviderRegistry, disabled []string) (*EnablementTable, error) {
	off := make(map[Interface]bool, len(disabled))
	for _, raw := range disabled {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		i, err := ParseInterface(raw)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(interfaces, i) {
			return nil, fmt.Errorf("%w: %s is not in the enablement table", ErrInvalidInterface, i)
		}
		off[i] = true
	}

	rows := make([]InterfaceStatus, 0, len(interfaces))
	for _, i := range interfaces {
		if !registry.Serves(i.Provider, i.Platform) {
			return nil, fmt.Errorf("%w: provider %s does not serve platform %s", ErrInvalidInterface, i.Provider, i.Platform)
		}
		rows = append(rows, InterfaceStatus{Interface: i, Enabled: !off[i]})
	}
	return &EnablementTable{rows: rows}, nil
}

// Candidates returns the enabled interfaces in declaration order.
func (t *EnablementTable) Candidates() []Interface {
	out := make([]Interface, 0, len(t.rows))
	for _, row := range t.rows {
		if row.Enabled {
			out = append(out, row.Interface)
		}
	}
	return out
}

// Providers returns the distinct providers of enabled interfaces, in first-seen order.
func (t *EnablementTable) Providers() []musiclink.Provider {
	var out []musiclink.Provider
	for _, i := range t.Candidates() {
		if !slices.Contains(out, i.Provider) {
			out = append(out, i.Provider)
		}
	}
	return out
}

// Rows returns every row, enabled or not.
func (t *EnablementTable) Rows() []InterfaceStatus {
	return slices.Clone(t.rows)
}

// Enabled reports whether i is in the table and enabled.
func (t *EnablementTable) Enabled(i Interface) bool {
	for _, row := range t.rows {
		if row.Interface == i {
			return row.Enabled
		}
	}
	return false
}
