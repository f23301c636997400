package musiclink

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidKey is wrapped by faults raised for malformed continuation keys.
var ErrInvalidKey = errors.New("invalid continuation key")

// Key is a decoded continuation key of the form <provider>/<endpoint>?<params>.
// Callers outside this package treat the encoded form as opaque.
type Key struct {
	Provider Provider
	Endpoint string
	Params   url.Values
}

// BuildKey encodes a continuation key. Params are sorted so equal inputs give equal keys.
func BuildKey(provider Provider, endpoint string, params url.Values) string {
	return string(provider) + "/" + endpoint + "?" + params.Encode()
}

// ParseKey decodes a continuation key. It does not check whether the provider is registered.
func ParseKey(raw string) (Key, error) {
	raw = strings.TrimSpace(raw)
	slash := strings.IndexByte(raw, '/')
	if slash <= 0 {
		return Key{}, invalidKey(raw)
	}

	path, query, _ := strings.Cut(raw[slash+1:], "?")
	if strings.Trim(path, "/") == "" {
		return Key{}, invalidKey(raw)
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return Key{}, invalidKey(raw)
	}

	return Key{
		Provider: Provider(strings.ToLower(raw[:slash])),
		Endpoint: path,
		Params:   params,
	}, nil
}

// String re-encodes the key.
func (k Key) String() string {
	return BuildKey(k.Provider, k.Endpoint, k.Params)
}

// endpointIs compares endpoints ignoring surrounding slashes.
func (k Key) endpointIs(endpoint string) bool {
	return strings.Trim(k.Endpoint, "/") == strings.Trim(endpoint, "/")
}

// upstreamPath builds the provider-relative request path for this key, keeping only the named params.
func (k Key) upstreamPath(keep []string, extra url.Values) string {
	params := url.Values{}
	for _, name := range keep {
		if v := k.Params.Get(name); v != "" {
			params.Set(name, v)
		}
	}
	for name, values := range extra {
		params[name] = values
	}
	return k.Endpoint + "?" + params.Encode()
}

func invalidKey(raw string) *Fault {
	return newFault(ErrValidation, "", 0, "malformed key "+raw, ErrInvalidKey)
}
