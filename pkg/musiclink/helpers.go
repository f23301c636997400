package musiclink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// commonUserAgent is the user agent string used for all HTTP requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// commonAcceptHeader is the accept header used for all HTTP requests.
	commonAcceptHeader = "application/json, text/plain, */*"
	// DefaultRequestTimeout bounds every upstream call.
	DefaultRequestTimeout = 10 * time.Second
	// DefaultMaxBodyBytes limits how much of a response body we read.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultPageSize is used when a search does not ask for one.
	DefaultPageSize = 20
	// MaxPageSize and MaxPage bound a search so page offsets stay small.
	MaxPageSize = 100
	MaxPage     = 1000
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 3
)

// Call outcomes reported to a CallObserver.
const (
	OutcomeOK       = "ok"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeStatus   = "status"
	OutcomeError    = "error"
)

var (
	// ErrTooManyRedirects is returned when too many redirects are encountered.
	ErrTooManyRedirects = errors.New("too many redirects")

	durationDigits = regexp.MustCompile(`\d+`)
)

// CallObserver receives one observation per upstream call.
type CallObserver interface {
	ObserveProviderCall(provider Provider, outcome string, elapsed time.Duration)
}

// ClientConfig configures the shared transport.
type ClientConfig struct {
	BaseURLs     map[Provider]string
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// Client is the transport shared by all adapters. Every failure it returns is a *Fault
// scoped to the provider that was called.
type Client struct {
	http         *http.Client
	baseURLs     map[Provider]string
	timeout      time.Duration
	maxBodyBytes int64
	userAgent    string
	logger       *zap.Logger
	observer     CallObserver
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithObserver reports every upstream call to o.
func WithObserver(o CallObserver) ClientOption {
	return func(c *Client) { c.observer = o }
}

// newHTTPClient creates a new HTTP client with standard settings and redirect validation.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// NewClient creates the shared transport.
func NewClient(cfg ClientConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = commonUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURLs := make(map[Provider]string, len(cfg.BaseURLs))
	for provider, base := range cfg.BaseURLs {
		baseURLs[provider] = strings.TrimRight(base, "/")
	}

	c := &Client{
		http:         newHTTPClient(cfg.Timeout),
		baseURLs:     baseURLs,
		timeout:      cfg.Timeout,
		maxBodyBytes: cfg.MaxBodyBytes,
		userAgent:    cfg.UserAgent,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON fetches a provider-relative path and returns the decoded document once the
// provider's success-code table accepts it.
func (c *Client) getJSON(ctx context.Context, provider Provider, path string) (gjson.Result, error) {
	start := time.Now()
	doc, err := c.doGet(ctx, provider, path)
	elapsed := time.Since(start)

	outcome := callOutcome(err)
	if c.observer != nil {
		c.observer.ObserveProviderCall(provider, outcome, elapsed)
	}
	if err != nil {
		c.logger.Debug("Provider call failed",
			zap.String("provider", string(provider)),
			zap.String("path", path),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	}
	return doc, err
}

func (c *Client) doGet(ctx context.Context, provider Provider, path string) (gjson.Result, error) {
	base := c.baseURLs[provider]
	if base == "" {
		return gjson.Result{}, transportFault(provider, 0, "base URL not configured", nil)
	}
	fullURL := base + "/" + strings.TrimLeft(path, "/")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return gjson.Result{}, transportFault(provider, 0, "failed to build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", commonAcceptHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, transportFault(provider, 0, "request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return gjson.Result{}, transportFault(provider, resp.StatusCode,
			fmt.Sprintf("returned status %d", resp.StatusCode), nil)
	}

	// Read response body (limited to avoid excessive memory use).
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return gjson.Result{}, transportFault(provider, 0, "failed to read response body", err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, transportFault(provider, 0, "malformed JSON body", nil)
	}

	doc := gjson.ParseBytes(body)
	if err := checkSuccessCode(provider, doc); err != nil {
		return gjson.Result{}, err
	}
	return doc, nil
}

// checkSuccessCode applies the provider's success-code table to a decoded response.
func checkSuccessCode(provider Provider, doc gjson.Result) error {
	code := doc.Get("code")
	present := code.Exists() && code.Type != gjson.Null
	var value int64
	if present {
		value = code.Int()
	}
	if SuccessCodesFor(provider).Accepts(value, present) {
		return nil
	}

	msg := doc.Get("msg").String()
	if msg == "" {
		msg = "unsuccessful response"
	}
	return transportFault(provider, int(value), msg, nil)
}

func callOutcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	}
	var f *Fault
	if errors.As(err, &f) && f.Code != 0 {
		return OutcomeStatus
	}
	return OutcomeError
}

// pageSlice returns the requested 1-based page of items.
func pageSlice[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return nil
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// parseDuration converts "mm:ss", "m分s秒" or bare seconds into milliseconds.
// Unparseable input yields 0.
func parseDuration(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	nums := durationDigits.FindAllString(raw, -1)
	switch {
	case len(nums) >= 2 && (strings.Contains(raw, ":") || strings.Contains(raw, "分")):
		minutes, _ := strconv.ParseInt(nums[0], 10, 64)
		seconds, _ := strconv.ParseInt(nums[1], 10, 64)
		return (minutes*60 + seconds) * 1000
	case len(nums) == 1 && strings.Contains(raw, "分"):
		minutes, _ := strconv.ParseInt(nums[0], 10, 64)
		return minutes * 60 * 1000
	case len(nums) == 1 && nums[0] == raw:
		seconds, _ := strconv.ParseInt(nums[0], 10, 64)
		return seconds * 1000
	}
	return 0
}

// parseBitrate extracts the leading number of strings like "320kbps".
func parseBitrate(raw string) int {
	num := durationDigits.FindString(raw)
	if num == "" {
		return 0
	}
	n, _ := strconv.Atoi(num)
	return n
}
