package musiclink

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Response validation. Optional fields default to "" (or an empty map) instead of
// rejecting the response; only load-bearing fields reject.

// str returns the first non-empty value among paths, in order. Numbers are rendered as
// their raw text so ids survive as strings.
func str(r gjson.Result, paths ...string) string {
	for _, path := range paths {
		v := r.Get(path)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		var s string
		if v.Type == gjson.Number {
			s = v.Raw
		} else {
			s = v.String()
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// num returns the first present numeric value among paths, or 0.
func num(r gjson.Result, paths ...string) int64 {
	for _, path := range paths {
		v := r.Get(path)
		if v.Exists() && v.Type != gjson.Null {
			return v.Int()
		}
	}
	return 0
}

// extras collects the named optional attributes that are present.
func extras(r gjson.Result, names ...string) map[string]string {
	var out map[string]string
	for _, name := range names {
		if v := str(r, name); v != "" {
			if out == nil {
				out = make(map[string]string, len(names))
			}
			out[name] = v
		}
	}
	return out
}

// requireList returns the array at path. A missing container is a validation fault;
// an explicit null is an empty list.
func requireList(provider Provider, doc gjson.Result, path string) ([]gjson.Result, error) {
	v := doc.Get(path)
	if !v.Exists() {
		return nil, validationFault(provider, "response has no "+path)
	}
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, validationFault(provider, path+" is not a list")
	}
	return v.Array(), nil
}

// requireObject returns the object at path; path "" means the document root.
func requireObject(provider Provider, doc gjson.Result, path string) (gjson.Result, error) {
	v := doc
	if path != "" {
		v = doc.Get(path)
	}
	if !v.IsObject() {
		return gjson.Result{}, validationFault(provider, "response has no "+orRoot(path)+" object")
	}
	return v, nil
}

func orRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

// position returns the 1-based index of the i-th item on a page.
func position(q SearchQuery, i int) string {
	return strconv.Itoa((q.Page-1)*q.PageSize + i + 1)
}

// validateMatch rejects matches without a continuation key.
func validateMatch(m SearchMatch) bool {
	return m.Key != ""
}

// validateTrack enforces the load-bearing fields of a detail.
func validateTrack(provider Provider, t *PlayableTrack) (*PlayableTrack, error) {
	if t.Key == "" {
		return nil, validationFault(provider, "detail without continuation key")
	}
	if !t.Playable() {
		return nil, unplayableFault(provider, t.Key)
	}
	return t, nil
}

// collectMatches maps raw items and drops the ones a key could not be built for.
func collectMatches(items []gjson.Result, mapItem func(i int, item gjson.Result) SearchMatch) []SearchMatch {
	matches := make([]SearchMatch, 0, len(items))
	for i, item := range items {
		m := mapItem(i, item)
		if validateMatch(m) {
			matches = append(matches, m)
		}
	}
	return matches
}
