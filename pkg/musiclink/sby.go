package musiclink

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	sbyNetEaseEndpoint = "wydg/"
	sbyQQEndpoint      = "qqdg/"
)

// SBYAdapter serves NetEase and QQ Music. The two endpoints name the keyword parameter
// differently and return unrelated shapes.
type SBYAdapter struct {
	baseAdapter
}

// NewSBYAdapter creates the SBY adapter.
func NewSBYAdapter(client *Client) *SBYAdapter {
	return &SBYAdapter{baseAdapter{
		client:   client,
		provider: ProviderSBY,
		endpoints: endpointTable{
			{PlatformNetEase, sbyNetEaseEndpoint},
			{PlatformQQ, sbyQQEndpoint},
		},
	}}
}

// keywordParam returns the name of the free-text parameter for a platform.
func (a *SBYAdapter) keywordParam(p Platform) string {
	if p == PlatformQQ {
		return "word"
	}
	return "msg"
}

// Search queries one SBY endpoint. Results are paginated locally.
func (a *SBYAdapter) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	endpoint, ok := a.endpoints.endpoint(q.Platform)
	if !ok {
		return nil, nil
	}
	q = q.withDefaults()

	param := a.keywordParam(q.Platform)
	params := url.Values{param: {q.Keyword}, "type": {"json"}}
	doc, err := a.client.getJSON(ctx, a.provider, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	items, err := requireList(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	items = pageSlice(items, q.Page, q.PageSize)

	return collectMatches(items, func(i int, item gjson.Result) SearchMatch {
		n := str(item, "id")
		if n == "" {
			n = position(q, i)
		}
		m := SearchMatch{
			Key:      a.key(endpoint, url.Values{param: {q.Keyword}, "n": {n}}),
			Platform: q.Platform,
			Provider: a.provider,
			Extra:    extras(item, "id"),
		}
		if q.Platform == PlatformQQ {
			m.Title, m.Artist, m.Cover = str(item, "song"), str(item, "singer"), str(item, "cover")
		} else {
			m.Title, m.Artist, m.Cover = str(item, "name"), str(item, "singer"), str(item, "img")
		}
		return m
	}), nil
}

// FetchDetail replays an SBY key.
func (a *SBYAdapter) FetchDetail(ctx context.Context, key string) (*PlayableTrack, error) {
	track, err := a.detail(ctx, key)
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, track)
}

// FetchLyrics returns the lyrics embedded in the detail response. Lyrics are
// read even when the detail carries no audio URL.
func (a *SBYAdapter) FetchLyrics(ctx context.Context, key string) (string, error) {
	track, err := a.detail(ctx, key)
	if err != nil {
		return "", err
	}
	return track.Lyrics, nil
}

// detail fetches and maps a detail response without the playability check.
func (a *SBYAdapter) detail(ctx context.Context, key string) (*PlayableTrack, error) {
	k, platform, err := a.decodeKey(key)
	if err != nil {
		return nil, err
	}

	path := k.upstreamPath([]string{a.keywordParam(platform), "n"}, url.Values{"type": {"json"}})
	doc, err := a.client.getJSON(ctx, a.provider, path)
	if err != nil {
		return nil, err
	}

	if platform == PlatformQQ {
		return a.mapQQDetail(doc, key)
	}
	return a.mapNetEaseDetail(doc, key)
}

func (a *SBYAdapter) mapNetEaseDetail(doc gjson.Result, key string) (*PlayableTrack, error) {
	res, err := requireObject(a.provider, doc, "")
	if err != nil {
		return nil, err
	}
	return &PlayableTrack{
		Key:      key,
		Title:    str(res, "name"),
		Artist:   str(res, "author"),
		Cover:    str(res, "img"),
		Platform: PlatformNetEase,
		Provider: a.provider,
		AudioURL: str(res, "mp3"),
		Lyrics:   formatTimedLyrics(res.Get("lyric")),
		CloudID:  str(res, "id"),
		Extra: TrackExtra{
			Duration: parseDuration(str(res, "market")),
		},
	}, nil
}

func (a *SBYAdapter) mapQQDetail(doc gjson.Result, key string) (*PlayableTrack, error) {
	data, err := requireObject(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	return &PlayableTrack{
		Key:      key,
		Title:    str(data, "song"),
		Artist:   str(data, "singer"),
		Cover:    str(data, "cover"),
		Platform: PlatformQQ,
		Provider: a.provider,
		AudioURL: str(data, "url"),
		CloudID:  str(data, "id"),
		Extra: TrackExtra{
			Quality:     str(data, "quality"),
			Duration:    parseDuration(str(data, "interval")),
			Bitrate:     parseBitrate(str(data, "kbps")),
			Size:        str(data, "size"),
			Album:       str(data, "album"),
			PlatformURL: str(data, "link"),
		},
	}, nil
}

// formatTimedLyrics renders [{time, name}] lines as LRC text.
func formatTimedLyrics(lines gjson.Result) string {
	if !lines.IsArray() {
		return lines.String()
	}
	var b strings.Builder
	for i, line := range lines.Array() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("[" + str(line, "time") + "]" + str(line, "name"))
	}
	return b.String()
}
