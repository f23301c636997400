package musiclink

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	xfSearchEndpoint = "wangyi/search"
	xfDetailEndpoint = "wangyi/music"
	xfLyricsEndpoint = "wangyi/lyrics"
)

// XFAdapter serves NetEase through id-addressed search, detail and lyrics endpoints.
type XFAdapter struct {
	baseAdapter
}

// NewXFAdapter creates the XF adapter.
func NewXFAdapter(client *Client) *XFAdapter {
	return &XFAdapter{baseAdapter{
		client:    client,
		provider:  ProviderXF,
		endpoints: endpointTable{{PlatformNetEase, xfDetailEndpoint}},
	}}
}

// Search queries the NetEase search endpoint. The upstream has no paging, so pages
// beyond the first are cut from a larger limit.
func (a *XFAdapter) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	if !a.serves(q.Platform) {
		return nil, nil
	}
	q = q.withDefaults()

	params := url.Values{
		"search": {q.Keyword},
		"limit":  {strconv.Itoa(q.Page * q.PageSize)},
	}
	doc, err := a.client.getJSON(ctx, a.provider, xfSearchEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	songs, err := requireList(a.provider, doc, "data.songs")
	if err != nil {
		return nil, err
	}
	songs = pageSlice(songs, q.Page, q.PageSize)

	return collectMatches(songs, func(_ int, item gjson.Result) SearchMatch {
		id := str(item, "id")
		if id == "" {
			return SearchMatch{}
		}
		return SearchMatch{
			Key:      a.key(xfDetailEndpoint, url.Values{"id": {id}}),
			Title:    str(item, "name"),
			Artist:   str(item, "artistsname"),
			Platform: PlatformNetEase,
			Provider: a.provider,
			Extra:    extras(item, "duration", "album"),
		}
	}), nil
}

// FetchDetail replays an XF key.
func (a *XFAdapter) FetchDetail(ctx context.Context, key string) (*PlayableTrack, error) {
	k, _, err := a.decodeKey(key)
	if err != nil {
		return nil, err
	}
	if k.Params.Get("id") == "" {
		return nil, validationFault(a.provider, "key without id")
	}

	doc, err := a.client.getJSON(ctx, a.provider, k.upstreamPath([]string{"id"}, url.Values{"type": {"json"}}))
	if err != nil {
		return nil, err
	}

	data, err := requireObject(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(data, "name"),
		Artist:   str(data, "artistsname"),
		Cover:    str(data, "picurl"),
		Platform: PlatformNetEase,
		Provider: a.provider,
		AudioURL: str(data, "url"),
		CloudID:  str(data, "id"),
		Extra: TrackExtra{
			Duration: num(data, "duration"),
			Album:    str(data, "album"),
		},
	})
}

// FetchLyrics queries the dedicated lyrics endpoint with the key's id.
func (a *XFAdapter) FetchLyrics(ctx context.Context, key string) (string, error) {
	k, _, err := a.decodeKey(key)
	if err != nil {
		return "", err
	}
	id := k.Params.Get("id")
	if id == "" {
		return "", validationFault(a.provider, "key without id")
	}

	doc, err := a.client.getJSON(ctx, a.provider, xfLyricsEndpoint+"?"+url.Values{"id": {id}}.Encode())
	if err != nil {
		return "", err
	}
	return str(doc, "data.lyric"), nil
}
