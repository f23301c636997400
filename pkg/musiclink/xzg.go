package musiclink

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const xzgLyricsEndpoint = "lyrc/"

// XZGAdapter serves Kugou, Kuwo and NetEase through position-addressed endpoints.
type XZGAdapter struct {
	baseAdapter
}

// NewXZGAdapter creates the XZG adapter.
func NewXZGAdapter(client *Client) *XZGAdapter {
	return &XZGAdapter{baseAdapter{
		client:   client,
		provider: ProviderXZG,
		endpoints: endpointTable{
			{PlatformKugou, "Kugou_GN_new/"},
			{PlatformKuwo, "Kuwo_BD_new/"},
			{PlatformNetEase, "NetEase_CloudMusic_new/"},
		},
	}}
}

// Search queries one XZG endpoint. The key records the query and the result position,
// which is what the detail endpoint replays.
func (a *XZGAdapter) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	endpoint, ok := a.endpoints.endpoint(q.Platform)
	if !ok {
		return nil, nil
	}
	q = q.withDefaults()

	params := url.Values{
		"name":     {q.Keyword},
		"page":     {strconv.Itoa(q.Page)},
		"pagesize": {strconv.Itoa(q.PageSize)},
	}
	doc, err := a.client.getJSON(ctx, a.provider, endpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	items, err := requireList(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}

	return collectMatches(items, func(i int, item gjson.Result) SearchMatch {
		keyParams := url.Values{"name": {q.Keyword}, "n": {position(q, i)}}
		if id := str(item, "id"); id != "" {
			keyParams.Set("id", id)
		}
		return SearchMatch{
			Key:      a.key(endpoint, keyParams),
			Title:    str(item, "songname"),
			Artist:   str(item, "name"),
			Cover:    str(item, "cover"),
			Platform: q.Platform,
			Provider: a.provider,
			Extra:    extras(item, "id", "album", "FileHash"),
		}
	}), nil
}

// FetchDetail replays an XZG key.
func (a *XZGAdapter) FetchDetail(ctx context.Context, key string) (*PlayableTrack, error) {
	k, platform, err := a.decodeKey(key)
	if err != nil {
		return nil, err
	}

	doc, err := a.client.getJSON(ctx, a.provider, k.upstreamPath([]string{"name", "n"}, nil))
	if err != nil {
		return nil, err
	}

	data, err := requireObject(a.provider, doc, "data")
	if err != nil {
		return nil, err
	}
	return validateTrack(a.provider, &PlayableTrack{
		Key:      key,
		Title:    str(data, "songname"),
		Artist:   str(data, "name"),
		Cover:    str(data, "cover"),
		Platform: platform,
		Provider: a.provider,
		AudioURL: str(data, "src"),
		CloudID:  k.Params.Get("id"),
		Extra: TrackExtra{
			Quality:     str(data, "quality"),
			Duration:    parseDuration(str(data, "interval")),
			Bitrate:     parseBitrate(str(data, "kbps")),
			Size:        str(data, "size"),
			Album:       str(data, "album"),
			PlatformURL: str(data, "songurl"),
		},
	})
}

// FetchLyrics needs the song id recorded at search time.
func (a *XZGAdapter) FetchLyrics(ctx context.Context, key string) (string, error) {
	k, _, err := a.decodeKey(key)
	if err != nil {
		return "", err
	}
	id := k.Params.Get("id")
	if id == "" {
		return "", UnsupportedFault(a.provider, "lyrics without song id")
	}

	doc, err := a.client.getJSON(ctx, a.provider, xzgLyricsEndpoint+"?"+url.Values{"id": {id}}.Encode())
	if err != nil {
		return "", err
	}
	return str(doc, "data.encode.context"), nil
}
