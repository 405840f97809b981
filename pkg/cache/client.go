package cache

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matchday-tools/apiclient/pkg/fetch"
	"github.com/matchday-tools/apiclient/pkg/stats"
)

// Client decorates a raw fetcher with the durable response cache. It never
// changes the semantics of the underlying GET: callers written against the
// fetcher contract work unmodified, they just see fewer live calls.
type Client struct {
	store    DocumentStore
	fetcher  fetch.Fetcher
	ttl      TTLTable
	useCache bool
	stats    *stats.Collector
	logger   zerolog.Logger
	now      func() time.Time
}

// DocumentStore is the slice of the store contract the cache needs.
type DocumentStore interface {
	Read(ctx context.Context, path string) []byte
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) bool
}

// Config holds the client configuration.
type Config struct {
	// Store is the durable document backend.
	Store DocumentStore

	// Fetcher performs live GETs on a miss.
	Fetcher fetch.Fetcher

	// TTL is the per-endpoint freshness policy. Defaults to
	// DefaultTTLTable when nil.
	TTL TTLTable

	// UseCache toggles the whole layer; when false every Get is a live
	// fetch. TTL=0 endpoints bypass the cache even when true.
	UseCache bool

	// Stats receives call and hit counts. Defaults to a fresh collector
	// when nil.
	Stats *stats.Collector

	// Logger defaults to the global logger.
	Logger *zerolog.Logger

	// Now is the clock, injectable for tests.
	Now func() time.Time
}

// NewClient creates a caching client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.TTL == nil {
		cfg.TTL = DefaultTTLTable()
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.New()
	}
	logger := log.With().Str("component", "cache-client").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cache-client").Logger()
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	return &Client{
		store:    cfg.Store,
		fetcher:  cfg.Fetcher,
		ttl:      cfg.TTL,
		useCache: cfg.UseCache,
		stats:    cfg.Stats,
		logger:   logger,
		now:      now,
	}, nil
}

// Get performs a cached GET. Fresh cached payloads are returned without a
// network call; anything else is fetched live and, on a 2xx, written back
// to the readable cache path. Fetch errors propagate unchanged — retry
// policy belongs to the workflow, not this layer.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string, params map[string]string) (*fetch.Response, error) {
	start := c.now()
	key := Key{URL: url, Params: params}
	endpoint := key.Endpoint()

	// TTL=0 endpoints skip the cache entirely, reads and writes both.
	if c.ttl.Bypassed(endpoint, params) {
		resp, err := c.live(ctx, endpoint, url, headers, params)
		c.logGet(url, start, "DISABLED (no-cache endpoint)")
		return resp, err
	}

	if !c.useCache {
		resp, err := c.live(ctx, endpoint, url, headers, params)
		c.logGet(url, start, "DISABLED")
		return resp, err
	}

	if entry := c.lookup(ctx, key, endpoint, params); entry != nil {
		c.stats.RecordCacheHit(endpoint)
		c.logGet(url, start, fmt.Sprintf("HIT (%s)", entry.Path))
		return &fetch.Response{
			StatusCode: http.StatusOK,
			Body:       entry.Payload,
			Headers:    http.Header{},
			OK:         true,
			FromCache:  true,
		}, nil
	}

	c.stats.RecordCacheMiss(endpoint)
	resp, err := c.live(ctx, endpoint, url, headers, params)
	if err != nil {
		return nil, err
	}
	c.logGet(url, start, "MISS")

	if resp.OK {
		c.writeBack(ctx, key, resp.Body)
	}
	return resp, nil
}

// Delete removes the cached document for a request. Legacy entries are
// left alone; they age out with their backend.
func (c *Client) Delete(ctx context.Context, url string, params map[string]string) bool {
	key := Key{URL: url, Params: params}
	return c.store.Delete(ctx, key.ReadablePath())
}

// lookup reads the readable path, then the legacy path, and returns the
// entry only if it decodes and is fresh. Any broken document is logged and
// treated as a miss.
func (c *Client) lookup(ctx context.Context, key Key, endpoint string, params map[string]string) *Entry {
	path := key.ReadablePath()
	data := c.store.Read(ctx, path)
	if data == nil {
		legacy := key.LegacyPath()
		if legacy == path {
			return nil
		}
		if data = c.store.Read(ctx, legacy); data == nil {
			return nil
		}
		path = legacy + " (legacy)"
	}

	entry, err := Unwrap(path, data)
	if err != nil {
		c.stats.RecordCacheError("decode")
		c.logger.Warn().Err(err).Str("path", path).Msg("Discarding unreadable cache entry")
		return nil
	}

	if !c.ttl.Fresh(endpoint, params, entry.CachedAt, c.now()) {
		c.logger.Info().
			Str("path", path).
			Time("cached_at", entry.CachedAt).
			Msg("Cache entry expired")
		return nil
	}
	return entry
}

// writeBack stamps the payload and stores it at the readable path. The
// legacy path is never written, so entries migrate forward on refresh.
// Failures are logged and swallowed: caching is an optimization.
func (c *Client) writeBack(ctx context.Context, key Key, payload []byte) {
	wrapped, err := Wrap(payload, c.now())
	if err != nil {
		c.stats.RecordCacheError("write")
		c.logger.Warn().Err(err).Msg("Skipping cache write for unwrappable payload")
		return
	}
	if err := c.store.Write(ctx, key.ReadablePath(), wrapped); err != nil {
		c.stats.RecordCacheError("write")
	}
}

func (c *Client) live(ctx context.Context, endpoint, url string, headers, params map[string]string) (*fetch.Response, error) {
	c.stats.RecordCall(endpoint)
	return c.fetcher.Get(ctx, url, headers, params)
}

func (c *Client) logGet(url string, start time.Time, cacheState string) {
	c.logger.Info().
		Str("url", url).
		Dur("duration", c.now().Sub(start)).
		Str("cache", cacheState).
		Msg("GET")
}
