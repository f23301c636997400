package musiclink

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
)

// fixtureMux answers each provider-relative path with a canned body and records the
// query string of the last request per path.
type fixtureMux struct {
	mux     *http.ServeMux
	mu      sync.Mutex
	queries map[string]string
}

func newFixtureMux(routes map[string]string) *fixtureMux {
	f := &fixtureMux{mux: http.NewServeMux(), queries: make(map[string]string)}
	for path, body := range routes {
		f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.queries[r.URL.Path] = r.URL.RawQuery
			f.mu.Unlock()
			writeBody(body)(w, r)
		})
	}
	return f
}

func (f *fixtureMux) ServeHTTP(w http.ResponseWriter, r *http.Request) { f.mux.ServeHTTP(w, r) }

func (f *fixtureMux) query(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func TestSBYAdapter_NetEase(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/sby/wydg/": `{"code":200,"name":"海阔天空","author":"Beyond","img":"c.jpg","id":347230,
			"mp3":"http://audio/x.mp3","market":"05:26",
			"lyric":[{"time":"00:01.00","name":"今天我"},{"time":"00:05.00","name":"寒夜里看雪飘过"}],
			"data":[{"name":"海阔天空","singer":"Beyond","img":"c.jpg","id":"347230"},{"name":"光辉岁月","singer":"Beyond"}]}`,
	})
	adapter := NewSBYAdapter(newTestClient(t, fixtures))
	ctx := context.Background()

	matches, err := adapter.Search(ctx, SearchQuery{Keyword: "海阔天空", Platform: PlatformNetEase})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Search() returned %d matches, want 2", len(matches))
	}
	first := matches[0]
	if first.Title != "海阔天空" || first.Artist != "Beyond" || first.Provider != ProviderSBY {
		t.Errorf("unexpected first match: %+v", first)
	}

	k, err := ParseKey(first.Key)
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if k.Params.Get("msg") != "海阔天空" || k.Params.Get("n") != "347230" {
		t.Errorf("key params = %v", k.Params)
	}
	if k2, _ := ParseKey(matches[1].Key); k2.Params.Get("n") != "2" {
		t.Errorf("second match without id should use its position, got %q", k2.Params.Get("n"))
	}

	track, err := adapter.FetchDetail(ctx, first.Key)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if track.AudioURL != "http://audio/x.mp3" || track.Artist != "Beyond" {
		t.Errorf("unexpected track: %+v", track)
	}
	if track.Extra.Duration != 326000 {
		t.Errorf("Duration = %d, want 326000", track.Extra.Duration)
	}
	if track.Lyrics != "[00:01.00]今天我\n[00:05.00]寒夜里看雪飘过" {
		t.Errorf("Lyrics = %q", track.Lyrics)
	}
	if track.CloudID != "347230" {
		t.Errorf("CloudID = %q, want 347230", track.CloudID)
	}

	lyrics, err := adapter.FetchLyrics(ctx, first.Key)
	if err != nil || lyrics != track.Lyrics {
		t.Errorf("FetchLyrics() = %q, %v", lyrics, err)
	}
}

func TestSBYAdapter_QQDetail(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/sby/qqdg/": `{"code":200,"data":{"id":"001","song":"晴天","singer":"周杰伦","album":"叶惠美",
			"quality":"HQ","interval":"4分29秒","size":"10.3MB","kbps":"320kbps","cover":"c.jpg",
			"link":"https://y.qq.com/x","url":"http://audio/q.m4a"}}`,
	})
	adapter := NewSBYAdapter(newTestClient(t, fixtures))

	key := BuildKey(ProviderSBY, "qqdg/", map[string][]string{"word": {"晴天"}, "n": {"1"}})
	track, err := adapter.FetchDetail(context.Background(), key)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if track.Platform != PlatformQQ || track.AudioURL != "http://audio/q.m4a" {
		t.Errorf("unexpected track: %+v", track)
	}
	want := TrackExtra{
		Quality: "HQ", Duration: 269000, Bitrate: 320, Size: "10.3MB",
		Album: "叶惠美", PlatformURL: "https://y.qq.com/x",
	}
	if track.Extra != want {
		t.Errorf("Extra = %+v, want %+v", track.Extra, want)
	}
	if got := fixtures.query("/sby/qqdg/"); got != "n=1&type=json&word=%E6%99%B4%E5%A4%A9" {
		t.Errorf("detail query = %q", got)
	}
}

func TestSBYAdapter_UnservedPlatform(t *testing.T) {
	adapter := NewSBYAdapter(newTestClient(t, http.NotFoundHandler()))
	matches, err := adapter.Search(context.Background(), SearchQuery{Keyword: "x", Platform: PlatformKuwo})
	if err != nil || len(matches) != 0 {
		t.Errorf("Search() = %v, %v; want empty, nil", matches, err)
	}
}

func TestSBYAdapter_SearchHugePage(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/sby/wydg/": `{"code":200,"data":[{"name":"海阔天空","singer":"Beyond","id":"347230"}]}`,
	})
	adapter := NewSBYAdapter(newTestClient(t, fixtures))

	for _, page := range []int{MaxPage + 1, 1 << 62} {
		matches, err := adapter.Search(context.Background(), SearchQuery{
			Keyword: "海阔天空", Platform: PlatformNetEase, Page: page, PageSize: 20,
		})
		if err != nil || len(matches) != 0 {
			t.Errorf("Search(page=%d) = %v, %v; want empty, nil", page, matches, err)
		}
	}
}

func TestSearchQuery_withDefaults(t *testing.T) {
	tests := []struct {
		name           string
		in             SearchQuery
		page, pageSize int
	}{
		{"zero values", SearchQuery{}, 1, DefaultPageSize},
		{"kept", SearchQuery{Page: 3, PageSize: 10}, 3, 10},
		{"page capped", SearchQuery{Page: 1 << 62, PageSize: 20}, MaxPage, 20},
		{"page size capped", SearchQuery{Page: 1, PageSize: 1 << 40}, 1, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.withDefaults()
			if got.Page != tt.page || got.PageSize != tt.pageSize {
				t.Errorf("withDefaults() = page %d size %d, want %d %d", got.Page, got.PageSize, tt.page, tt.pageSize)
			}
		})
	}
}

func TestSBYAdapter_Lyrics(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		want   string
	}{
		{
			name:   "lyrics without audio",
			detail: `{"code":200,"name":"海阔天空","mp3":"","lyric":[{"time":"00:01","name":"line"}]}`,
			want:   "[00:01]line",
		},
		{
			name:   "playable without lyrics",
			detail: `{"code":200,"name":"海阔天空","mp3":"http://audio/x.mp3","lyric":[]}`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewSBYAdapter(newTestClient(t, newFixtureMux(map[string]string{"/sby/wydg/": tt.detail})))
			key := BuildKey(ProviderSBY, "wydg/", map[string][]string{"msg": {"海阔天空"}, "n": {"1"}})

			lyrics, err := adapter.FetchLyrics(context.Background(), key)
			if err != nil || lyrics != tt.want {
				t.Errorf("FetchLyrics() = %q, %v; want %q, nil", lyrics, err, tt.want)
			}
		})
	}
}

func TestSBYAdapter_DetailWithoutAudio(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/sby/wydg/": `{"code":200,"name":"海阔天空","mp3":"","lyric":[{"time":"00:01","name":"line"}]}`,
	})
	adapter := NewSBYAdapter(newTestClient(t, fixtures))
	key := BuildKey(ProviderSBY, "wydg/", map[string][]string{"msg": {"海阔天空"}, "n": {"1"}})

	if _, err := adapter.FetchDetail(context.Background(), key); !errors.Is(err, ErrUnplayable) {
		t.Errorf("FetchDetail() error = %v, want unplayable", err)
	}
}

func TestXFAdapter(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/xf/wangyi/search": `{"code":200,"msg":"ok","data":{"songs":[
			{"id":186016,"name":"晴天","artistsname":"周杰伦","album":"叶惠美","duration":269000},
			{"name":"no id"}]}}`,
		"/xf/wangyi/music":  `{"code":200,"msg":"ok","data":{"id":186016,"name":"晴天","artistsname":"周杰伦","picurl":"p.jpg","url":"http://audio/w.mp3","duration":269000,"album":"叶惠美"}}`,
		"/xf/wangyi/lyrics": `{"code":200,"msg":"ok","data":{"lyric":"[00:00.00]晴天"}}`,
	})
	adapter := NewXFAdapter(newTestClient(t, fixtures))
	ctx := context.Background()

	matches, err := adapter.Search(ctx, SearchQuery{Keyword: "晴天", Platform: PlatformNetEase, PageSize: 5})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() returned %d matches, want 1 (items without id are dropped)", len(matches))
	}
	if matches[0].Key != "xf/wangyi/music?id=186016" {
		t.Errorf("Key = %q", matches[0].Key)
	}
	if matches[0].Extra["duration"] != "269000" {
		t.Errorf("Extra = %v", matches[0].Extra)
	}
	if got := fixtures.query("/xf/wangyi/search"); got != "limit=5&search=%E6%99%B4%E5%A4%A9" {
		t.Errorf("search query = %q", got)
	}

	track, err := adapter.FetchDetail(ctx, matches[0].Key)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if track.AudioURL != "http://audio/w.mp3" || track.Cover != "p.jpg" || track.Extra.Duration != 269000 {
		t.Errorf("unexpected track: %+v", track)
	}

	lyrics, err := adapter.FetchLyrics(ctx, matches[0].Key)
	if err != nil || lyrics != "[00:00.00]晴天" {
		t.Errorf("FetchLyrics() = %q, %v", lyrics, err)
	}
}

func TestXFAdapter_MissingSongsContainer(t *testing.T) {
	adapter := NewXFAdapter(newTestClient(t, writeBody(`{"code":200,"data":{}}`)))
	_, err := adapter.Search(context.Background(), SearchQuery{Keyword: "x", Platform: PlatformNetEase})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want validation fault", err)
	}
}

func TestXZGAdapter(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/xzg/Kuwo_BD_new/": `{"code":200,"msg":"ok","data":[{"songname":"晴天","name":"周杰伦","album":"叶惠美","cover":"c.jpg","id":"228908"}]}`,
		"/xzg/lyrc/":        `{"code":200,"msg":"ok","data":{"encode":{"context":"[00:00.00]晴天"}}}`,
	})
	adapter := NewXZGAdapter(newTestClient(t, fixtures))
	ctx := context.Background()

	matches, err := adapter.Search(ctx, SearchQuery{Keyword: "晴天", Platform: PlatformKuwo, Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Title != "晴天" || matches[0].Artist != "周杰伦" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	k, _ := ParseKey(matches[0].Key)
	if k.Params.Get("n") != "11" || k.Params.Get("id") != "228908" {
		t.Errorf("key params = %v, want n=11 and id", k.Params)
	}

	lyrics, err := adapter.FetchLyrics(ctx, matches[0].Key)
	if err != nil || lyrics != "[00:00.00]晴天" {
		t.Errorf("FetchLyrics() = %q, %v", lyrics, err)
	}
	if got := fixtures.query("/xzg/lyrc/"); got != "id=228908" {
		t.Errorf("lyrics query = %q", got)
	}
}

func TestXZGAdapter_Detail(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind error
	}{
		{
			name: "playable",
			body: `{"code":200,"msg":"ok","data":{"songname":"晴天","name":"周杰伦","src":"http://audio/k.mp3","interval":"04:29","kbps":"128kbps"}}`,
		},
		{
			name:     "no audio url",
			body:     `{"code":200,"msg":"ok","data":{"songname":"晴天","name":"周杰伦","src":""}}`,
			wantKind: ErrUnplayable,
		},
		{
			name:     "no data object",
			body:     `{"code":200,"msg":"ok"}`,
			wantKind: ErrValidation,
		},
		{
			name:     "failure code",
			body:     `{"code":400,"msg":"bad"}`,
			wantKind: ErrTransport,
		},
	}

	key := BuildKey(ProviderXZG, "Kugou_GN_new/", map[string][]string{"name": {"晴天"}, "n": {"1"}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewXZGAdapter(newTestClient(t, writeBody(tt.body)))
			track, err := adapter.FetchDetail(context.Background(), key)
			if tt.wantKind != nil {
				if !errors.Is(err, tt.wantKind) {
					t.Errorf("error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchDetail() error = %v", err)
			}
			if track.Platform != PlatformKugou || track.Extra.Duration != 269000 || track.Extra.Bitrate != 128 {
				t.Errorf("unexpected track: %+v", track)
			}
		})
	}
}

func TestXZGAdapter_LyricsWithoutID(t *testing.T) {
	adapter := NewXZGAdapter(newTestClient(t, http.NotFoundHandler()))
	key := BuildKey(ProviderXZG, "Kugou_GN_new/", map[string][]string{"name": {"晴天"}, "n": {"1"}})
	_, err := adapter.FetchLyrics(context.Background(), key)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestLyricsEndpoints_Empty(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/xf/wangyi/lyrics": `{"code":200,"msg":"ok","data":{"lyric":""}}`,
		"/xzg/lyrc/":        `{"code":200,"msg":"ok","data":{"encode":{"context":""}}}`,
	})
	client := newTestClient(t, fixtures)
	tests := []struct {
		name    string
		fetcher LyricsFetcher
		key     string
	}{
		{"xf", NewXFAdapter(client), BuildKey(ProviderXF, "wangyi/music", map[string][]string{"id": {"186016"}})},
		{"xzg", NewXZGAdapter(client), BuildKey(ProviderXZG, "Kuwo_BD_new/", map[string][]string{"name": {"晴天"}, "n": {"1"}, "id": {"228908"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lyrics, err := tt.fetcher.FetchLyrics(context.Background(), tt.key)
			if err != nil || lyrics != "" {
				t.Errorf("FetchLyrics() = %q, %v; want empty, nil", lyrics, err)
			}
		})
	}
}

func TestLZAdapter(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/lz/dg_kugouSQ.php": `{"code":200,"data":[{"n":1,"title":"晴天","singer":"周杰伦"},{"n":2,"title":"晴天 (live)","singer":"周杰伦"}]}`,
		"/lz/dg_kgmusic.php": `{"code":200,"data":{"song_name":"晴天","song_singer":"周杰伦","song_cover":"c.jpg","url":"http://audio/kg.mp3","lrc":"[00:00]晴天"}}`,
	})
	adapter := NewLZAdapter(newTestClient(t, fixtures))
	ctx := context.Background()

	matches, err := adapter.Search(ctx, SearchQuery{Keyword: "晴天", Platform: PlatformKugouSQ, PageSize: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() returned %d matches, want 1", len(matches))
	}
	if matches[0].Platform != PlatformKugou {
		t.Errorf("Platform = %s, want %s", matches[0].Platform, PlatformKugou)
	}
	k, _ := ParseKey(matches[0].Key)
	if k.Params.Get("msg") != "晴天" || k.Params.Get("quality") != "flac" || k.Params.Get("n") != "1" {
		t.Errorf("key params = %v", k.Params)
	}
	if got := fixtures.query("/lz/dg_kugouSQ.php"); got != "msg=%E6%99%B4%E5%A4%A9&num=1&type=json" {
		t.Errorf("search query = %q", got)
	}

	key := BuildKey(ProviderLZ, "dg_kgmusic.php", map[string][]string{"gm": {"晴天"}, "n": {"1"}})
	track, err := adapter.FetchDetail(ctx, key)
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}
	if track.Title != "晴天" || track.Artist != "周杰伦" || track.AudioURL != "http://audio/kg.mp3" || track.Lyrics != "[00:00]晴天" {
		t.Errorf("fallback fields not applied: %+v", track)
	}
}

func TestLZAdapter_ForeignKey(t *testing.T) {
	adapter := NewLZAdapter(newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for a foreign key")
	})))
	_, err := adapter.FetchDetail(context.Background(), "xzg/Kuwo_BD_new/?name=x&n=1")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want validation fault", err)
	}
}

func TestCGGAdapter(t *testing.T) {
	fixtures := newFixtureMux(map[string]string{
		"/cgg/douyin/music/": `{"code":200,"data":[{"n":1,"title":"起风了","Nickname":"买辣椒也用券","cover":"c.jpg","trackId":"t1"}]}`,
		"/cgg/qishui/":       `{"msg":"ok","title":"起风了","singer":"买辣椒也用券","music":"http://audio/qs.mp3","cover":"c.jpg","link":"https://qs/x","lrc":"[00:00]起风了"}`,
		"/cgg/music/dg_ximalayamusic.php": `{"code":200,"msg":"ok","nickname":"主播","title":"故事","cover":"c.jpg","link":"https://xmly/x","url":"http://audio/xm.m4a"}`,
	})
	adapter := NewCGGAdapter(newTestClient(t, fixtures))
	ctx := context.Background()

	matches, err := adapter.Search(ctx, SearchQuery{Keyword: "起风了", Platform: PlatformDouyin})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 || matches[0].Artist != "买辣椒也用券" || matches[0].Extra["trackId"] != "t1" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if got := fixtures.query("/cgg/douyin/music/"); got != "limit=20&msg=%E8%B5%B7%E9%A3%8E%E4%BA%86&page=1&type=json" {
		t.Errorf("search query = %q", got)
	}

	tests := []struct {
		name      string
		endpoint  string
		wantAudio string
		wantPlat  Platform
	}{
		{"qishui without code", "qishui/", "http://audio/qs.mp3", PlatformQishui},
		{"ximalaya", "music/dg_ximalayamusic.php", "http://audio/xm.m4a", PlatformXimalaya},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildKey(ProviderCGG, tt.endpoint, map[string][]string{"msg": {"起风了"}, "n": {"1"}})
			track, err := adapter.FetchDetail(ctx, key)
			if err != nil {
				t.Fatalf("FetchDetail() error = %v", err)
			}
			if track.AudioURL != tt.wantAudio || track.Platform != tt.wantPlat {
				t.Errorf("unexpected track: %+v", track)
			}
		})
	}
}
