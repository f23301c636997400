// Package musiclink provides federated search and playable-track lookup across
// third-party music providers.
package musiclink

// Platform identifies the music catalog a track lives in.
type Platform string

// Supported platforms.
const (
	PlatformNetEase  Platform = "wy"
	PlatformQQ       Platform = "qq"
	PlatformKugou    Platform = "kg"
	PlatformKugouSQ  Platform = "kg_sq" // High-quality Kugou endpoint; results report PlatformKugou.
	PlatformKuwo     Platform = "kw"
	PlatformMigu     Platform = "mg"
	PlatformBaidu    Platform = "bd"
	PlatformDouyin   Platform = "dy"
	PlatformQishui   Platform = "qs"
	Platform5Sing    Platform = "5s"
	PlatformXimalaya Platform = "xmly"
)

// Provider identifies an upstream integration. One provider may serve several platforms.
type Provider string

// Supported providers.
const (
	ProviderSBY Provider = "sby"
	ProviderXF  Provider = "xf"
	ProviderXZG Provider = "xzg"
	ProviderLZ  Provider = "lz"
	ProviderCGG Provider = "cgg"
)

var knownPlatforms = map[Platform]bool{
	PlatformNetEase: true, PlatformQQ: true, PlatformKugou: true, PlatformKugouSQ: true,
	PlatformKuwo: true, PlatformMigu: true, PlatformBaidu: true, PlatformDouyin: true,
	PlatformQishui: true, Platform5Sing: true, PlatformXimalaya: true,
}

var knownProviders = map[Provider]bool{
	ProviderSBY: true, ProviderXF: true, ProviderXZG: true, ProviderLZ: true, ProviderCGG: true,
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool { return knownPlatforms[p] }

// Catalog returns the platform a result is reported under.
func (p Platform) Catalog() Platform {
	if p == PlatformKugouSQ {
		return PlatformKugou
	}
	return p
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool { return knownProviders[p] }

// SearchQuery describes a single-platform search against one provider.
type SearchQuery struct {
	Keyword  string
	Platform Platform
	Page     int // 1-based.
	PageSize int
}

func (q SearchQuery) withDefaults() SearchQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// SearchMatch is one search candidate. Key replays the detail lookup without server-side state.
type SearchMatch struct {
	Key      string            `json:"shortRequestUrl"`
	Title    string            `json:"title"`
	Artist   string            `json:"artist"`
	Cover    string            `json:"cover,omitempty"`
	Platform Platform          `json:"platform"`
	Provider Provider          `json:"source"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// TrackExtra holds optional technical attributes of a playable track.
type TrackExtra struct {
	Quality     string `json:"quality,omitempty"`
	Duration    int64  `json:"duration,omitempty"` // Milliseconds.
	Bitrate     int    `json:"bitrate,omitempty"`  // kbps.
	Size        string `json:"size,omitempty"`
	Album       string `json:"album,omitempty"`
	PlatformURL string `json:"platformUrl,omitempty"`
}

// PlayableTrack is a search match resolved to an audio URL.
type PlayableTrack struct {
	Key      string     `json:"shortRequestUrl"`
	Title    string     `json:"title"`
	Artist   string     `json:"artist"`
	Cover    string     `json:"cover"`
	Platform Platform   `json:"platform"`
	Provider Provider   `json:"source"`
	AudioURL string     `json:"audioUrl"`
	Lyrics   string     `json:"lyrics,omitempty"`
	CloudID  string     `json:"cloudID,omitempty"`
	Extra    TrackExtra `json:"extra"`
}

// Playable reports whether the track carries an audio URL.
func (t *PlayableTrack) Playable() bool {
	return t != nil && t.AudioURL != ""
}

// FillFrom copies identity fields from m where the detail response left them empty.
func (t PlayableTrack) FillFrom(m SearchMatch) PlayableTrack {
	if t.Title == "" {
		t.Title = m.Title
	}
	if t.Artist == "" {
		t.Artist = m.Artist
	}
	if t.Cover == "" {
		t.Cover = m.Cover
	}
	return t
}
