package musiclink

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// CGGAdapter serves Douyin, Qishui and Ximalaya. Each platform has its own detail shape.
type CGGAdapter struct {
	baseAdapter
}

// NewCGGAdapter creates the CGG adapter.
func NewCGGAdapter(client *Client) *CGGAdapter {
	return &CGGAdapter{baseAdapter{
		client:   client,
		provider: ProviderCGG,
		endpoints: endpointTable{
			{PlatformDouyin, "douyin/music/"},
			{PlatformQishui, "qishui/"},
			{PlatformXimalaya, "music/dg_ximalayamusic.php"},
		},
	}}
}

// Search queries one CGG endpoint. Only Douyin pages upstream.
func (a *CGGAdapter) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	endpoint, ok := a.endpoints.endpoint(q.Platform)
	if !ok {
		return nil, nil
	}
	q = q.withDefaults()

	params := url.Values{"msg": {q.Keyword}, "type": {"json"}}
	if q.Platform == PlatformDouyin {
		params.Set("page", strconv.Itoa(q.Page))
		params.Set("limit", strconv.Itoa(q.PageSize))
	}
	doc, err := a.client.getJSON(ctx, a.provider, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	items, err := requireList(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	if q.Platform != PlatformDouyin {
		items = pageSlice(items, q.Page, q.PageSize)
	}

	return collectMatches(items, func(i int, item gjson.Result) SearchMatch {
		n := str(item, "n")
		if n == "" {
			n = position(q, i)
		}
		return SearchMatch{
			Key:      a.key(endpoint, url.Values{"msg": {q.Keyword}, "n": {n}}),
			Title:    str(item, "title"),
			Artist:   str(item, "singer", "Nickname"),
			Cover:    str(item, "cover"),
			Platform: q.Platform,
			Provider: a.provider,
			Extra:    extras(item, "trackId", "type"),
		}
	}), nil
}

// FetchDetail replays a CGG key.
func (a *CGGAdapter) FetchDetail(ctx context.Context, key string) (*PlayableTrack, error) {
	k, platform, err := a.decodeKey(key)
	if err != nil {
		return nil, err
	}

	doc, err := a.client.getJSON(ctx, a.provider, k.upstreamPath([]string{"msg", "n"}, url.Values{"type": {"json"}}))
	if err != nil {
		return nil, err
	}

	switch platform {
	case PlatformDouyin:
		return a.mapDouyinDetail(doc, key)
	case PlatformQishui:
		return a.mapQishuiDetail(doc, key)
	default:
		return a.mapXimalayaDetail(doc, key)
	}
}

func (a *CGGAdapter) mapDouyinDetail(doc gjson.Result, key string) (*PlayableTrack, error) {
	data, err := requireObject(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(data, "title"),
		Artist:   str(data, "singer"),
		Cover:    str(data, "cover"),
		Platform: PlatformDouyin,
		Provider: a.provider,
		AudioURL: str(data, "url"),
		Lyrics:   str(data, "lrc"),
	})
}

func (a *CGGAdapter) mapQishuiDetail(doc gjson.Result, key string) (*PlayableTrack, error) {
	res, err := requireObject(a.provider, doc, "")
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(res, "title"),
		Artist:   str(res, "singer"),
		Cover:    str(res, "cover"),
		Platform: PlatformQishui,
		Provider: a.provider,
		AudioURL: str(res, "music"),
		Lyrics:   str(res, "lrc"),
		Extra:    TrackExtra{PlatformURL: str(res, "link")},
	})
}

func (a *CGGAdapter) mapXimalayaDetail(doc gjson.Result, key string) (*PlayableTrack, error) {
	res, err := requireObject(a.provider, doc, "")
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(res, "title"),
		Artist:   str(res, "nickname"),
		Cover:    str(res, "cover"),
		Platform: PlatformXimalaya,
		Provider: a.provider,
		AudioURL: str(res, "url"),
		Extra:    TrackExtra{PlatformURL: str(res, "link")},
	})
}
