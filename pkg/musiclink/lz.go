package musiclink

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// LZAdapter serves seven catalogs through one PHP script per platform. Scripts disagree
// on the keyword parameter name and on detail field names.
type LZAdapter struct {
	baseAdapter
}

// NewLZAdapter creates the LZ adapter.
func NewLZAdapter(client *Client) *LZAdapter {
	return &LZAdapter{baseAdapter{
		client:   client,
		provider: ProviderLZ,
		endpoints: endpointTable{
			{PlatformKugouSQ, "dg_kugouSQ.php"},
			{PlatformKugou, "dg_kgmusic.php"},
			{PlatformKuwo, "dg_kuwomusic.php"},
			{PlatformNetEase, "dg_wyymusic.php"},
			{PlatformMigu, "dg_mgmusic.php"},
			{PlatformBaidu, "dg_bdmusic.php"},
			{Platform5Sing, "dg_5signmusic.php"},
		},
	}}
}

// keywordParam returns the name of the free-text parameter for a platform.
func (a *LZAdapter) keywordParam(p Platform) string {
	switch p {
	case PlatformKugou, PlatformNetEase, PlatformMigu, PlatformBaidu:
		return "gm"
	default:
		return "msg"
	}
}

// Search queries one LZ script.
func (a *LZAdapter) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	endpoint, ok := a.endpoints.endpoint(q.Platform)
	if !ok {
		return nil, nil
	}
	q = q.withDefaults()

	param := a.keywordParam(q.Platform)
	params := url.Values{
		param:  {q.Keyword},
		"num":  {strconv.Itoa(q.Page * q.PageSize)},
		"type": {"json"},
	}
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
		n := str(item, "n")
		if n == "" {
			n = position(q, i)
		}
		keyParams := url.Values{param: {q.Keyword}, "n": {n}}
		if q.Platform == PlatformKugouSQ {
			keyParams.Set("quality", "flac")
		}
		return SearchMatch{
			Key:      a.key(endpoint, keyParams),
			Title:    str(item, "title"),
			Artist:   str(item, "singer"),
			Platform: q.Platform.Catalog(),
			Provider: a.provider,
			Extra:    extras(item, "songid", "song_rid"),
		}
	}), nil
}

// FetchDetail replays an LZ key. Field names vary by script, so each field has fallbacks.
func (a *LZAdapter) FetchDetail(ctx context.Context, key string) (*PlayableTrack, error) {
	k, platform, err := a.decodeKey(key)
	if err != nil {
		return nil, err
	}

	path := k.upstreamPath([]string{a.keywordParam(platform), "n", "quality"}, url.Values{"type": {"json"}})
	doc, err := a.client.getJSON(ctx, a.provider, path)
	if err != nil {
		return nil, err
	}

	res, err := requireObject(a.provider, doc, "")
	if err != nil {
		return nil, err
	}
	// Some scripts nest the payload under data.
	if data := res.Get("data"); data.IsObject() {
		res = data
	}

	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(res, "title", "song_name"),
		Artist:   str(res, "singer", "song_singer"),
		Cover:    str(res, "cover", "song_cover"),
		Platform: platform.Catalog(),
		Provider: a.provider,
		AudioURL: str(res, "music_url", "flac_url", "url"),
		Lyrics:   str(res, "lyrics", "lrc"),
		Extra: TrackExtra{
			Quality:     k.Params.Get("quality"),
			PlatformURL: str(res, "link"),
		},
	})
}
