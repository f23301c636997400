package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"musicpin/pkg/fuzzy"
	"musicpin/pkg/musiclink"
)

// fakeDispatcher serves canned search results per interface and details per key.
type fakeDispatcher struct {
	mu        sync.Mutex
	searches  map[Interface][]musiclink.SearchMatch
	searchErr map[Interface]error
	details   map[string]musiclink.PlayableTrack
	lyrics    map[string]string
	calls     []string
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		searches:  make(map[Interface][]musiclink.SearchMatch),
		searchErr: make(map[Interface]error),
		details:   make(map[string]musiclink.PlayableTrack),
		lyrics:    make(map[string]string),
	}
}

// add registers a top match for iface and the detail its key resolves to.
// An empty audioURL makes the detail unplayable.
func (f *fakeDispatcher) add(iface Interface, title, artist, audioURL string) string {
	key := fmt.Sprintf("%s/%s/?n=%d", iface.Provider, iface.Platform, len(f.details)+1)
	f.searches[iface] = append(f.searches[iface], musiclink.SearchMatch{
		Key:      key,
		Title:    title,
		Artist:   artist,
		Platform: iface.Platform.Catalog(),
		Provider: iface.Provider,
	})
	f.details[key] = musiclink.PlayableTrack{
		Key:      key,
		Title:    title,
		Artist:   artist,
		Platform: iface.Platform.Catalog(),
		Provider: iface.Provider,
		AudioURL: audioURL,
	}
	return key
}

func (f *fakeDispatcher) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDispatcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDispatcher) Search(ctx context.Context, provider musiclink.Provider, q musiclink.SearchQuery) ([]musiclink.SearchMatch, error) {
	iface := Interface{Platform: q.Platform, Provider: provider}
	f.record("search " + iface.String())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.searchErr[iface]; err != nil {
		return nil, err
	}
	return f.searches[iface], nil
}

func (f *fakeDispatcher) FetchDetail(ctx context.Context, provider musiclink.Provider, key string) (*musiclink.PlayableTrack, error) {
	f.record("detail " + string(provider) + " " + key)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := musiclink.ParseKey(key)
	if err != nil {
		return nil, err
	}
	if k.Provider != provider {
		return nil, &musiclink.Fault{Kind: musiclink.ErrValidation, Provider: provider, Message: "foreign key"}
	}
	track, ok := f.details[key]
	if !ok {
		return nil, &musiclink.Fault{Kind: musiclink.ErrTransport, Provider: provider, Code: 404}
	}
	if !track.Playable() {
		return nil, &musiclink.Fault{Kind: musiclink.ErrUnplayable, Provider: provider}
	}
	return &track, nil
}

func (f *fakeDispatcher) FetchLyrics(_ context.Context, provider musiclink.Provider, key string) (string, error) {
	f.record("lyrics " + string(provider) + " " + key)
	if lyrics, ok := f.lyrics[key]; ok {
		return lyrics, nil
	}
	return "", musiclink.UnsupportedFault(provider, "lyrics")
}

func (f *fakeDispatcher) Has(provider musiclink.Provider) bool {
	return provider.Valid()
}

// servesAll accepts every interface.
type servesAll struct{}

func (servesAll) Serves(musiclink.Provider, musiclink.Platform) bool { return true }

type recordedCandidate struct {
	iface   Interface
	outcome string
}

type fakeRecorder struct {
	mu          sync.Mutex
	candidates  []recordedCandidate
	resolutions []string
}

func (r *fakeRecorder) ObserveCandidate(iface Interface, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append(r.candidates, recordedCandidate{iface, outcome})
}

func (r *fakeRecorder) ObserveResolution(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, outcome)
}

var (
	wySBY = Interface{musiclink.PlatformNetEase, musiclink.ProviderSBY}
	qqSBY = Interface{musiclink.PlatformQQ, musiclink.ProviderSBY}
	wyXF  = Interface{musiclink.PlatformNetEase, musiclink.ProviderXF}
	kgLZ  = Interface{musiclink.PlatformKugou, musiclink.ProviderLZ}
)

var heKuoTianKong = Query{Song: "海阔天空", Artist: "Beyond"}

func newTestStrategy(t *testing.T, d *fakeDispatcher, order []Interface, opts ...StrategyOption) *Strategy {
	t.Helper()
	table, err := newEnablementTable(order, servesAll{}, nil)
	require.NoError(t, err)
	return NewStrategy(d, table, fuzzy.NewMatcher(fuzzy.DefaultThresholds()), zap.NewNop(), opts...)
}

func TestQuery_Keyword(t *testing.T) {
	assert.Equal(t, "海阔天空 Beyond", heKuoTianKong.Keyword())
	assert.Equal(t, "晴天", Query{Song: " 晴天 "}.Keyword())
	assert.Equal(t, "周杰伦", Query{Artist: "周杰伦"}.Keyword())
	assert.Empty(t, Query{Song: " ", Artist: "\t"}.Keyword())
}

func TestResolveSearch_RelevantFirstCandidate(t *testing.T) {
	d := newFakeDispatcher()
	key := d.add(wySBY, "海阔天空", "Beyond", "http://audio/1.mp3")
	d.add(qqSBY, "海阔天空", "Beyond", "http://audio/2.mp3")
	s := newTestStrategy(t, d, []Interface{wySBY, qqSBY, wyXF})

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)

	assert.True(t, res.Relevant)
	assert.Equal(t, wySBY, res.Interface)
	assert.Equal(t, "http://audio/1.mp3", res.Track.AudioURL)
	assert.Len(t, res.Matches, 1)
	assert.Equal(t, []string{"search wy:sby", "detail sby " + key}, d.Calls(), "no further candidates probed")
}

func TestResolveSearch_RelevantBeatsEarlierFallback(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "光辉岁月", "Beyond", "http://audio/fallback.mp3")
	d.add(wyXF, "海阔天空", "Beyond", "http://audio/relevant.mp3")
	s := newTestStrategy(t, d, []Interface{wySBY, wyXF})

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)

	assert.True(t, res.Relevant)
	assert.Equal(t, musiclink.ProviderXF, res.Track.Provider)
	assert.Equal(t, "http://audio/relevant.mp3", res.Track.AudioURL)
}

func TestResolveSearch_FirstFallbackWins(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "光辉岁月", "Beyond", "http://audio/first.mp3")
	second := d.add(qqSBY, "真的爱你", "Beyond", "http://audio/second.mp3")
	d.add(wyXF, "喜欢你", "Beyond", "")
	s := newTestStrategy(t, d, []Interface{wySBY, qqSBY, wyXF})

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)

	assert.False(t, res.Relevant)
	assert.Equal(t, wySBY, res.Interface)
	assert.Equal(t, "http://audio/first.mp3", res.Track.AudioURL)
	assert.NotContains(t, d.Calls(), "detail sby "+second, "irrelevant candidates skip detail once a fallback is held")
}

func TestResolveSearch_FallbackAfterUnplayable(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "光辉岁月", "Beyond", "")
	d.add(qqSBY, "真的爱你", "Beyond", "http://audio/qq.mp3")
	s := newTestStrategy(t, d, []Interface{wySBY, qqSBY})

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)

	assert.False(t, res.Relevant)
	assert.Equal(t, qqSBY, res.Interface)
}

func TestResolveSearch_ExhaustedWhenNothingPlayable(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "海阔天空", "Beyond", "")
	d.add(qqSBY, "海阔天空", "Beyond", "")
	d.add(wyXF, "海阔天空", "Beyond", "")
	recorder := &fakeRecorder{}
	s := newTestStrategy(t, d, []Interface{wySBY, qqSBY, wyXF}, WithRecorder(recorder))

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, musiclink.ErrExhausted)

	assert.Equal(t, []string{ResolutionExhausted}, recorder.resolutions)
	require.Len(t, recorder.candidates, 3)
	for _, c := range recorder.candidates {
		assert.Equal(t, CandidateUnplayable, c.outcome)
	}
}

func TestResolveSearch_FailuresAreSkipped(t *testing.T) {
	d := newFakeDispatcher()
	d.searchErr[wySBY] = &musiclink.Fault{Kind: musiclink.ErrTransport, Provider: musiclink.ProviderSBY, Code: 502}
	d.add(kgLZ, "海阔天空", "BEYOND", "http://audio/lz.mp3")
	recorder := &fakeRecorder{}
	s := newTestStrategy(t, d, []Interface{wySBY, wyXF, kgLZ}, WithRecorder(recorder))

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)
	assert.Equal(t, kgLZ, res.Interface)

	assert.Equal(t, []recordedCandidate{
		{wySBY, CandidateFailed},
		{wyXF, CandidateEmpty},
		{kgLZ, CandidateRelevant},
	}, recorder.candidates)
	assert.Equal(t, []string{ResolutionRelevant}, recorder.resolutions)
}

func TestResolveSearch_FillsMissingDetailFields(t *testing.T) {
	d := newFakeDispatcher()
	key := d.add(wySBY, "海阔天空", "Beyond", "http://audio/1.mp3")
	d.searches[wySBY][0].Cover = "cover.jpg"
	track := d.details[key]
	track.Title, track.Artist = "", ""
	d.details[key] = track
	s := newTestStrategy(t, d, []Interface{wySBY})

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)
	assert.Equal(t, "海阔天空", res.Track.Title)
	assert.Equal(t, "Beyond", res.Track.Artist)
	assert.Equal(t, "cover.jpg", res.Track.Cover)
}

func TestResolveSearch_EmptyQuery(t *testing.T) {
	d := newFakeDispatcher()
	s := newTestStrategy(t, d, []Interface{wySBY})

	_, err := s.ResolveSearch(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, d.Calls())
}

func TestResolveSearch_Canceled(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "海阔天空", "Beyond", "http://audio/1.mp3")
	s := newTestStrategy(t, d, []Interface{wySBY})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ResolveSearch(ctx, heKuoTianKong)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.Calls())
}

func TestResolveSearch_SkipsDisabledInterfaces(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wySBY, "海阔天空", "Beyond", "http://audio/sby.mp3")
	d.add(wyXF, "海阔天空", "Beyond", "http://audio/xf.mp3")
	table, err := newEnablementTable([]Interface{wySBY, wyXF}, servesAll{}, []string{"wy:sby"})
	require.NoError(t, err)
	s := NewStrategy(d, table, nil, nil)

	res, err := s.ResolveSearch(context.Background(), heKuoTianKong)
	require.NoError(t, err)
	assert.Equal(t, wyXF, res.Interface)
}

func TestResolveDetail(t *testing.T) {
	d := newFakeDispatcher()
	key := d.add(kgLZ, "海阔天空", "Beyond", "http://audio/lz.mp3")
	s := newTestStrategy(t, d, []Interface{wySBY, qqSBY, wyXF, kgLZ})

	track, err := s.ResolveDetail(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "http://audio/lz.mp3", track.AudioURL)

	assert.Equal(t, []string{
		"detail sby " + key,
		"detail xf " + key,
		"detail lz " + key,
	}, d.Calls(), "distinct providers in table order")
}

func TestResolveDetail_UnknownProvider(t *testing.T) {
	d := newFakeDispatcher()
	s := newTestStrategy(t, d, []Interface{wySBY})

	_, err := s.ResolveDetail(context.Background(), "zzz/wydg/?n=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, musiclink.ErrUnknownProvider)
	assert.False(t, errors.Is(err, musiclink.ErrTransport))
	assert.Empty(t, d.Calls())
}

func TestResolveDetail_MalformedKey(t *testing.T) {
	s := newTestStrategy(t, newFakeDispatcher(), []Interface{wySBY})

	_, err := s.ResolveDetail(context.Background(), "not-a-key")
	assert.ErrorIs(t, err, musiclink.ErrInvalidKey)
}

func TestResolveDetail_Exhausted(t *testing.T) {
	d := newFakeDispatcher()
	key := d.add(wySBY, "海阔天空", "Beyond", "")
	s := newTestStrategy(t, d, []Interface{wySBY, wyXF})

	_, err := s.ResolveDetail(context.Background(), key)
	assert.ErrorIs(t, err, musiclink.ErrExhausted)
}

func TestResolveLyrics(t *testing.T) {
	d := newFakeDispatcher()
	key := d.add(wyXF, "海阔天空", "Beyond", "http://audio/xf.mp3")
	d.lyrics[key] = "[00:00.00]今天我"
	s := newTestStrategy(t, d, []Interface{wySBY, wyXF})

	lyrics, err := s.ResolveLyrics(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "[00:00.00]今天我", lyrics)
	assert.Equal(t, []string{"lyrics xf " + key}, d.Calls())

	_, err = s.ResolveLyrics(context.Background(), "lz/dg_kgmusic.php?n=1")
	assert.ErrorIs(t, err, musiclink.ErrUnsupported)

	_, err = s.ResolveLyrics(context.Background(), "zzz/x?n=1")
	assert.ErrorIs(t, err, musiclink.ErrUnknownProvider)
}

func TestSearchInterface(t *testing.T) {
	d := newFakeDispatcher()
	d.add(wyXF, "海阔天空", "Beyond", "http://audio/xf.mp3")
	table, err := newEnablementTable([]Interface{wySBY, wyXF}, servesAll{}, []string{"wy:sby"})
	require.NoError(t, err)
	s := NewStrategy(d, table, nil, nil)

	matches, err := s.SearchInterface(context.Background(), wyXF, "海阔天空", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = s.SearchInterface(context.Background(), wySBY, "海阔天空", 1)
	assert.ErrorIs(t, err, ErrInvalidInterface)

	_, err = s.SearchInterface(context.Background(), wyXF, " ", 1)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
