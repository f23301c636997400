// Package flood provides per-client request rate limiting for the HTTP surface.
package flood

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	// windowDuration is the period the limit is expressed in (always 1 minute)
	windowDuration = 60 * time.Second
	// idleTimeout is how long before an idle client's bucket is dropped
	idleTimeout = 10 * time.Minute
	// DefaultMaxClients bounds the number of tracked clients
	DefaultMaxClients = 4096
)

// Floodgate provides per-client token-bucket rate limiting. A client may burst up to
// the per-minute limit and then regains one request every minute/limit.
type Floodgate struct {
	limitPerMinute int
	clients        *expirable.LRU[string, *rate.Limiter]
	mutex          sync.Mutex
	now            func() time.Time
}

// New creates a new Floodgate with the specified per-minute limit.
func New(limitPerMinute int) *Floodgate {
	return NewWithCapacity(limitPerMinute, DefaultMaxClients)
}

// NewWithCapacity is New with a bound on tracked clients. When full, the least
// recently seen client is forgotten.
func NewWithCapacity(limitPerMinute, maxClients int) *Floodgate {
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &Floodgate{
		limitPerMinute: limitPerMinute,
		clients:        expirable.NewLRU[string, *rate.Limiter](maxClients, nil, idleTimeout),
		now:            time.Now,
	}
}

// Allow reports whether a request from clientID should be processed. A limit of
// zero or less disables limiting.
func (fg *Floodgate) Allow(clientID string) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	fg.mutex.Lock()
	limiter, ok := fg.clients.Get(clientID)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(windowDuration/time.Duration(fg.limitPerMinute)), fg.limitPerMinute)
		fg.clients.Add(clientID, limiter)
	}
	now := fg.now()
	fg.mutex.Unlock()

	return limiter.AllowN(now, 1)
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	return Stats{
		ActiveClients:  fg.clients.Len(),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
