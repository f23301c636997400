package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"musicpin/internal/core"
	"musicpin/internal/flood"
	"musicpin/internal/i18n"
	"musicpin/pkg/musiclink"
	"musicpin/pkg/text"
)

// statusClientClosedRequest is logged when the caller went away mid-resolution.
const statusClientClosedRequest = 499

// Resolver is the resolution surface the API serves. *core.Strategy implements it.
type Resolver interface {
	ResolveSearch(ctx context.Context, q core.Query) (*core.Resolution, error)
	SearchInterface(ctx context.Context, iface core.Interface, keyword string, page int) ([]musiclink.SearchMatch, error)
	ResolveDetail(ctx context.Context, key string) (*musiclink.PlayableTrack, error)
	ResolveLyrics(ctx context.Context, key string) (string, error)
	Table() *core.EnablementTable
}

// API serves the JSON endpoints under /api/.
type API struct {
	resolver   Resolver
	parser     *text.Parser
	gate       *flood.Floodgate
	metrics    *Metrics
	localizers []*i18n.Localizer
	fallback   *i18n.Localizer
	matcher    language.Matcher
	logger     *zap.Logger
}

// NewAPI creates the API handlers. gate may be nil to disable rate limiting.
func NewAPI(resolver Resolver, gate *flood.Floodgate, metrics *Metrics, defaultLanguage string, logger *zap.Logger) *API {
	languages := i18n.GetSupportedLanguages()
	tags := make([]language.Tag, 0, len(languages))
	localizers := make([]*i18n.Localizer, 0, len(languages))
	for _, lang := range languages {
		tags = append(tags, language.Make(lang))
		localizers = append(localizers, i18n.NewLocalizer(lang))
	}

	return &API{
		resolver:   resolver,
		parser:     text.NewParser(),
		gate:       gate,
		metrics:    metrics,
		localizers: localizers,
		fallback:   i18n.NewLocalizer(defaultLanguage),
		matcher:    language.NewMatcher(tags),
		logger:     logger.Named("api"),
	}
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/search", a.route("search", a.handleSearch))
	mux.Handle("GET /api/detail", a.route("detail", a.handleDetail))
	mux.Handle("GET /api/lyrics", a.route("lyrics", a.handleLyrics))
	mux.Handle("GET /api/interfaces", a.route("interfaces", a.handleInterfaces))
}

type apiHandler func(w http.ResponseWriter, r *http.Request, l *i18n.Localizer) int

// route wraps a handler with rate limiting and request metrics.
func (a *API) route(name string, h apiHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := a.localizer(r)

		var status int
		if a.gate != nil && !a.gate.Allow(clientIP(r)) {
			if a.metrics != nil {
				a.metrics.RecordRateLimited()
			}
			status = a.writeError(w, http.StatusTooManyRequests, l.T("error.rate_limited"))
		} else {
			status = h(w, r, l)
		}

		if a.metrics != nil {
			a.metrics.RecordRequest(name, status)
		}
	})
}

type searchResponse struct {
	Code int `json:"code"`
	*core.Resolution
	Label string `json:"label"`
}

type interfaceRow struct {
	core.InterfaceStatus
	Label string `json:"label"`
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request, l *i18n.Localizer) int {
	params := r.URL.Query()
	q := core.Query{
		Song:   strings.TrimSpace(params.Get("song")),
		Artist: strings.TrimSpace(params.Get("artist")),
	}
	if q.Keyword() == "" {
		req := a.parser.ParseRequest(params.Get("q"))
		q = req.Query
		if req.Platform != "" {
			a.logger.Debug("Share link in query", zap.String("platform", string(req.Platform)))
		}
	}

	platform, source := params.Get("platform"), params.Get("source")
	if platform != "" || source != "" {
		iface, err := core.ParseInterface(platform + ":" + source)
		if err != nil {
			return a.fail(w, r, l, err)
		}
		page, _ := strconv.Atoi(params.Get("page"))
		matches, err := a.resolver.SearchInterface(r.Context(), iface, q.Keyword(), page)
		if err != nil {
			return a.fail(w, r, l, err)
		}
		if matches == nil {
			matches = []musiclink.SearchMatch{}
		}
		return a.writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": matches})
	}

	res, err := a.resolver.ResolveSearch(r.Context(), q)
	if err != nil {
		return a.fail(w, r, l, err)
	}
	return a.writeJSON(w, http.StatusOK, searchResponse{
		Code:       http.StatusOK,
		Resolution: res,
		Label:      l.InterfaceLabel(string(res.Interface.Platform), string(res.Interface.Provider)),
	})
}

func (a *API) handleDetail(w http.ResponseWriter, r *http.Request, l *i18n.Localizer) int {
	track, err := a.resolver.ResolveDetail(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		return a.fail(w, r, l, err)
	}
	return a.writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": track})
}

func (a *API) handleLyrics(w http.ResponseWriter, r *http.Request, l *i18n.Localizer) int {
	lyrics, err := a.resolver.ResolveLyrics(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		return a.fail(w, r, l, err)
	}
	return a.writeJSON(w, http.StatusOK, map[string]any{
		"code": http.StatusOK,
		"data": map[string]string{"lyrics": lyrics},
	})
}

func (a *API) handleInterfaces(w http.ResponseWriter, _ *http.Request, l *i18n.Localizer) int {
	statuses := a.resolver.Table().Rows()
	rows := make([]interfaceRow, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, interfaceRow{
			InterfaceStatus: s,
			Label:           l.InterfaceLabel(string(s.Platform), string(s.Provider)),
		})
	}
	return a.writeJSON(w, http.StatusOK, map[string]any{"code": http.StatusOK, "data": rows})
}

// fail maps err to a status and a localized message.
func (a *API) fail(w http.ResponseWriter, r *http.Request, l *i18n.Localizer, err error) int {
	status, msg := classify(err, l)

	switch {
	case status == statusClientClosedRequest:
		a.logger.Debug("Client went away", zap.String("path", r.URL.Path), zap.Error(err))
		return status
	case status >= http.StatusInternalServerError:
		a.logger.Warn("Request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	default:
		a.logger.Debug("Request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	return a.writeError(w, status, msg)
}

func classify(err error, l *i18n.Localizer) (int, string) {
	var fault *musiclink.Fault
	provider := ""
	if errors.As(err, &fault) {
		provider = string(fault.Provider)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, ""
	case errors.Is(err, core.ErrEmptyQuery):
		return http.StatusBadRequest, l.T("error.empty_query")
	case errors.Is(err, musiclink.ErrInvalidKey):
		return http.StatusBadRequest, l.T("error.invalid_key")
	case errors.Is(err, musiclink.ErrUnknownProvider):
		return http.StatusBadRequest, l.T("error.unknown_provider", provider)
	case errors.Is(err, core.ErrInvalidInterface):
		return http.StatusBadRequest, l.T("error.invalid_interface",
			strings.TrimPrefix(err.Error(), core.ErrInvalidInterface.Error()+": "))
	case errors.Is(err, musiclink.ErrUnsupported):
		return http.StatusNotImplemented, l.T("error.unsupported", provider)
	case errors.Is(err, musiclink.ErrExhausted):
		return http.StatusNotFound, l.T("error.exhausted")
	default:
		return http.StatusBadGateway, l.T("error.upstream")
	}
}

// localizer picks the language from ?lang=, then Accept-Language, then the default.
func (a *API) localizer(r *http.Request) *i18n.Localizer {
	if lang := r.URL.Query().Get("lang"); i18n.IsSupported(lang) {
		return i18n.NewLocalizer(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := a.matcher.Match(tags...); conf != language.No {
				return a.localizers[idx]
			}
		}
	}
	return a.fallback
}

func (a *API) writeError(w http.ResponseWriter, status int, msg string) int {
	return a.writeJSON(w, status, map[string]any{"code": status, "msg": msg})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Debug("Failed to write response", zap.Error(err))
	}
	return status
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}
