package fuzzy

import "strings"

// Default relevance thresholds.
const (
	DefaultSplitPartMin   = 0.60
	DefaultWholeRecordMin = 0.75
	DefaultSingleFieldMin = 0.80
)

// Thresholds are the minimum similarities each relevance rule accepts.
type Thresholds struct {
	// SplitPartMin applies to both halves of a split query.
	SplitPartMin float64
	// WholeRecordMin applies to the whole query against "title artist" or "artist title".
	WholeRecordMin float64
	// SingleFieldMin applies to the whole query against the title or the artist alone.
	SingleFieldMin float64
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SplitPartMin:   DefaultSplitPartMin,
		WholeRecordMin: DefaultWholeRecordMin,
		SingleFieldMin: DefaultSingleFieldMin,
	}
}

// Matcher decides whether a candidate's title and artist answer a query.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher creates a matcher. Zero thresholds fall back to the defaults.
func NewMatcher(t Thresholds) *Matcher {
	d := DefaultThresholds()
	if t.SplitPartMin <= 0 {
		t.SplitPartMin = d.SplitPartMin
	}
	if t.WholeRecordMin <= 0 {
		t.WholeRecordMin = d.WholeRecordMin
	}
	if t.SingleFieldMin <= 0 {
		t.SingleFieldMin = d.SingleFieldMin
	}
	return &Matcher{thresholds: t}
}

// Thresholds returns the effective thresholds.
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// Relevant reports whether title/artist answer query. Rules are tried in order:
// exact match of either field, every split of the query into a title part and an
// artist part (either order), the whole query against the combined record, and the
// whole query against each field alone. A candidate missing title or artist is never
// relevant.
func (m *Matcher) Relevant(query, title, artist string) bool {
	q, t, a := Normalize(query), Normalize(title), Normalize(artist)
	if q == "" || t == "" || a == "" {
		return false
	}

	if q == t || q == a {
		return true
	}

	if m.splitMatches(q, t, a) {
		return true
	}

	if max(Similarity(q, t+" "+a), Similarity(q, a+" "+t)) >= m.thresholds.WholeRecordMin {
		return true
	}

	return max(Similarity(q, t), Similarity(q, a)) >= m.thresholds.SingleFieldMin
}

func (m *Matcher) splitMatches(q, title, artist string) bool {
	parts := strings.Split(q, " ")
	for i := 1; i < len(parts); i++ {
		first := strings.Join(parts[:i], " ")
		second := strings.Join(parts[i:], " ")

		if m.pairMatches(first, second, title, artist) || m.pairMatches(first, second, artist, title) {
			return true
		}
	}
	return false
}

// pairMatches compares a split query against one field ordering.
func (m *Matcher) pairMatches(first, second, field1, field2 string) bool {
	if first == field1 && second == field2 {
		return true
	}
	return Similarity(first, field1) >= m.thresholds.SplitPartMin &&
		Similarity(second, field2) >= m.thresholds.SplitPartMin
}
