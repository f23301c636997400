package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"musicpin/pkg/fuzzy"
	"musicpin/pkg/musiclink"
)

// ErrEmptyQuery is returned when neither song nor artist is given.
var ErrEmptyQuery = errors.New("empty query")

// Candidate outcomes reported to a Recorder.
const (
	CandidateRelevant   = "relevant"
	CandidateFallback   = "fallback"
	CandidateSkipped    = "skipped"
	CandidateEmpty      = "empty"
	CandidateUnplayable = "unplayable"
	CandidateFailed     = "failed"
)

// Resolution outcomes reported to a Recorder.
const (
	ResolutionRelevant  = "relevant"
	ResolutionFallback  = "fallback"
	ResolutionExhausted = "exhausted"
	ResolutionCanceled  = "canceled"
)

// Query is a free-text song and/or artist.
type Query struct {
	Song   string
	Artist string
}

// Keyword joins song and artist into the search keyword.
func (q Query) Keyword() string {
	return strings.TrimSpace(strings.TrimSpace(q.Song) + " " + strings.TrimSpace(q.Artist))
}

// Resolution is the answer to a search: the candidate list that produced the track,
// and the track itself.
type Resolution struct {
	Matches   []musiclink.SearchMatch  `json:"data"`
	Track     *musiclink.PlayableTrack `json:"track"`
	Interface Interface                `json:"interface"`
	// Relevant is false when the track is a fallback.
	Relevant bool `json:"relevant"`
}

// Dispatcher routes calls to provider adapters. *musiclink.Manager implements it.
type Dispatcher interface {
	Search(ctx context.Context, provider musiclink.Provider, q musiclink.SearchQuery) ([]musiclink.SearchMatch, error)
	FetchDetail(ctx context.Context, provider musiclink.Provider, key string) (*musiclink.PlayableTrack, error)
	FetchLyrics(ctx context.Context, provider musiclink.Provider, key string) (string, error)
	Has(provider musiclink.Provider) bool
}

// Recorder observes resolution progress.
type Recorder interface {
	ObserveCandidate(iface Interface, outcome string)
	ObserveResolution(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCandidate(Interface, string) {}

func (nopRecorder) ObserveResolution(string, time.Duration) {}

// Strategy resolves queries by probing enabled interfaces one at a time.
type Strategy struct {
	dispatcher Dispatcher
	table      *EnablementTable
	matcher    *fuzzy.Matcher
	pageSize   int
	logger     *zap.Logger
	recorder   Recorder
}

// StrategyOption customizes a Strategy.
type StrategyOption func(*Strategy)

// WithRecorder reports candidate and resolution outcomes to r.
func WithRecorder(r Recorder) StrategyOption {
	return func(s *Strategy) { s.recorder = r }
}

// WithPageSize sets the page size of searches.
func WithPageSize(n int) StrategyOption {
	return func(s *Strategy) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewStrategy creates a resolution strategy.
func NewStrategy(dispatcher Dispatcher, table *EnablementTable, matcher *fuzzy.Matcher,
	logger *zap.Logger, opts ...StrategyOption,
) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matcher == nil {
		matcher = fuzzy.NewMatcher(fuzzy.DefaultThresholds())
	}
	s := &Strategy{
		dispatcher: dispatcher,
		table:      table,
		matcher:    matcher,
		pageSize:   musiclink.DefaultPageSize,
		logger:     logger,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the enablement table the strategy probes.
func (s *Strategy) Table() *EnablementTable {
	return s.table
}

// ResolveSearch returns the first relevant playable track in probe order. If no
// candidate is relevant, it returns the first playable candidate seen. With neither,
// it returns an ErrExhausted fault.
func (s *Strategy) ResolveSearch(ctx context.Context, q Query) (*Resolution, error) {
	keyword := q.Keyword()
	if keyword == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	var fallback *Resolution

	for _, iface := range s.table.Candidates() {
		if err := ctx.Err(); err != nil {
			s.recorder.ObserveResolution(ResolutionCanceled, time.Since(start))
			return nil, err
		}

		res, outcome := s.probe(ctx, iface, keyword, fallback == nil)
		s.recorder.ObserveCandidate(iface, outcome)

		switch outcome {
		case CandidateRelevant:
			s.logger.Info("Resolved query",
				zap.String("keyword", keyword),
				zap.String("interface", iface.String()),
				zap.String("title", res.Track.Title),
				zap.String("artist", res.Track.Artist))
			s.recorder.ObserveResolution(ResolutionRelevant, time.Since(start))
			return res, nil
		case CandidateFallback:
			fallback = res
		}
	}

	if err := ctx.Err(); err != nil {
		s.recorder.ObserveResolution(ResolutionCanceled, time.Since(start))
		return nil, err
	}

	if fallback != nil {
		s.logger.Info("No relevant match, returning fallback",
			zap.String("keyword", keyword),
			zap.String("interface", fallback.Interface.String()))
		s.recorder.ObserveResolution(ResolutionFallback, time.Since(start))
		return fallback, nil
	}

	s.logger.Info("No usable result", zap.String("keyword", keyword))
	s.recorder.ObserveResolution(ResolutionExhausted, time.Since(start))
	return nil, musiclink.ExhaustedFault(fmt.Sprintf("no usable result for %q", keyword))
}

// probe searches one interface and fetches detail for its top match when the match is
// relevant, or when it could become the fallback.
func (s *Strategy) probe(ctx context.Context, iface Interface, keyword string, wantFallback bool) (*Resolution, string) {
	log := s.logger.With(
		zap.String("platform", string(iface.Platform)),
		zap.String("provider", string(iface.Provider)))

	matches, err := s.dispatcher.Search(ctx, iface.Provider, musiclink.SearchQuery{
		Keyword:  keyword,
		Platform: iface.Platform,
		Page:     1,
		PageSize: s.pageSize,
	})
	if err != nil {
		log.Debug("Search failed", zap.Error(err))
		return nil, CandidateFailed
	}
	if len(matches) == 0 {
		log.Debug("No search results")
		return nil, CandidateEmpty
	}

	top := matches[0]
	relevant := s.matcher.Relevant(keyword, top.Title, top.Artist)
	if !relevant && !wantFallback {
		log.Debug("Irrelevant top match, fallback already held",
			zap.String("title", top.Title),
			zap.String("artist", top.Artist))
		return nil, CandidateSkipped
	}

	track, err := s.dispatcher.FetchDetail(ctx, iface.Provider, top.Key)
	if err != nil {
		log.Debug("Detail failed", zap.String("key", top.Key), zap.Error(err))
		if errors.Is(err, musiclink.ErrUnplayable) {
			return nil, CandidateUnplayable
		}
		return nil, CandidateFailed
	}

	filled := track.FillFrom(top)
	res := &Resolution{Matches: matches, Track: &filled, Interface: iface, Relevant: relevant}
	if relevant {
		return res, CandidateRelevant
	}
	log.Debug("Irrelevant top match kept as fallback",
		zap.String("title", top.Title),
		zap.String("artist", top.Artist))
	return res, CandidateFallback
}

// SearchInterface lists one page of results from a single enabled interface.
func (s *Strategy) SearchInterface(ctx context.Context, iface Interface, keyword string, page int) ([]musiclink.SearchMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyQuery
	}
	if !s.table.Enabled(iface) {
		return nil, fmt.Errorf("%w: %s is not enabled", ErrInvalidInterface, iface)
	}
	return s.dispatcher.Search(ctx, iface.Provider, musiclink.SearchQuery{
		Keyword:  keyword,
		Platform: iface.Platform,
		Page:     page,
		PageSize: s.pageSize,
	})
}

// ResolveDetail re-resolves a continuation key by trying each enabled provider in
// table order. Providers reject keys they did not issue without a network call.
func (s *Strategy) ResolveDetail(ctx context.Context, key string) (*musiclink.PlayableTrack, error) {
	k, err := s.parseKey(key)
	if err != nil {
		return nil, err
	}

	for _, provider := range s.table.Providers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		track, err := s.dispatcher.FetchDetail(ctx, provider, key)
		if err != nil {
			s.logger.Debug("Detail attempt failed",
				zap.String("provider", string(provider)),
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		return track, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, musiclink.ExhaustedFault("no provider returned a playable track for " + string(k.Provider) + " key")
}

// ResolveLyrics fetches lyrics from the provider that issued key.
func (s *Strategy) ResolveLyrics(ctx context.Context, key string) (string, error) {
	k, err := s.parseKey(key)
	if err != nil {
		return "", err
	}
	return s.dispatcher.FetchLyrics(ctx, k.Provider, key)
}

// parseKey decodes a key and checks that its provider is registered.
func (s *Strategy) parseKey(key string) (musiclink.Key, error) {
	k, err := musiclink.ParseKey(key)
	if err != nil {
		return musiclink.Key{}, err
	}
	if !s.dispatcher.Has(k.Provider) {
		return musiclink.Key{}, musiclink.UnknownProviderFault(k.Provider)
	}
	return k, nil
}
