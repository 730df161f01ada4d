package counter

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ThrottleOptions configura a proteção da superfície HTTP: token bucket por
// cliente e teto de requisições em voo. RPS/MaxInFlight <= 0 desligam o
// respectivo mecanismo.
type ThrottleOptions struct {
	RPS         float64
	Burst       int
	MaxInFlight int

	// KeyHeader, se definido, identifica o cliente por header (ex: API key)
	// em vez do IP de origem.
	KeyHeader string

	IdleTTL      time.Duration
	CleanupEvery time.Duration
}

// Throttle devolve o middleware de proteção. O janitor de entradas ociosas
// para quando ctx encerra.
func Throttle(ctx context.Context, opts ThrottleOptions) func(http.Handler) http.Handler {
	if opts.RPS <= 0 && opts.MaxInFlight <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 15 * time.Minute
	}
	if opts.CleanupEvery <= 0 {
		opts.CleanupEvery = 2 * time.Minute
	}

	var limiters *clientLimiters
	if opts.RPS > 0 {
		limiters = newClientLimiters(rate.Limit(opts.RPS), opts.Burst, opts.IdleTTL)
		limiters.startJanitor(ctx, opts.CleanupEvery)
	}

	var sem chan struct{}
	if opts.MaxInFlight > 0 {
		sem = make(chan struct{}, opts.MaxInFlight)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiters != nil && !limiters.allow(clientKey(r, opts.KeyHeader)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				default:
					// sem fila de espera: sob saturação é melhor rejeitar
					// rápido do que acumular requisições paradas
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientLimiters mantém um token bucket por cliente, com expiração de
// entradas ociosas para o mapa não crescer sem limite.
type clientLimiters struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps rate.Limit, burst int, idleTTL time.Duration) *clientLimiters {
	return &clientLimiters{
		entries: make(map[string]*limiterEntry),
		rps:     rps,
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (c *clientLimiters) allow(key string) bool {
	now := time.Now()

	c.mu.Lock()
	ent, ok := c.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(c.rps, c.burst)}
		c.entries[key] = ent
	}
	ent.lastSeen = now
	c.mu.Unlock()

	return ent.lim.Allow()
}

func (c *clientLimiters) cleanup() {
	cutoff := time.Now().Add(-c.idleTTL)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, ent := range c.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}

func (c *clientLimiters) startJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.cleanup()
			}
		}
	}()
}

// clientKey identifica o cliente: header configurado, senão o IP de origem.
func clientKey(r *http.Request, keyHeader string) string {
	if keyHeader != "" {
		if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
			return v
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
