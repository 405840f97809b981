// Package stats tracks API call and cache statistics for a single run.
//
// The collector is an explicit object constructed once per run and threaded
// through constructors. It deliberately owns a private prometheus registry
// instead of registering on the process-wide default, so two collectors
// (or two test cases) never share counters.
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Entry is the per-endpoint slice of a run summary.
type Entry struct {
	Calls     int
	CacheHits int
}

// Quota is the provider's daily budget as last reported.
type Quota struct {
	Remaining int
	Limit     int
}

// Collector records API calls, cache hits, cache errors, and the latest
// quota reading. All methods are safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	calls       *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheErrors *prometheus.CounterVec
	quotaRemain prometheus.Gauge
	quotaLimit  prometheus.Gauge

	mu      sync.Mutex
	entries map[string]*Entry
	quota   *Quota
}

// New creates a collector with a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_api_calls_total",
			Help: "Total live API calls by endpoint",
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_cache_hits_total",
			Help: "Total cache hits by endpoint",
		}, []string{"endpoint"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_cache_misses_total",
			Help: "Total cache misses by endpoint",
		}, []string{"endpoint"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchday_cache_errors_total",
			Help: "Total cache operation errors",
		}, []string{"operation"}),
		quotaRemain: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchday_quota_remaining",
			Help: "Remaining daily provider quota as last reported",
		}),
		quotaLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchday_quota_limit",
			Help: "Daily provider quota limit as last reported",
		}),
		entries: make(map[string]*Entry),
	}

	c.registry.MustRegister(c.calls, c.cacheHits, c.cacheMisses, c.cacheErrors, c.quotaRemain, c.quotaLimit)
	return c
}

// Registry exposes the collector's registry for a metrics endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) entry(endpoint string) *Entry {
	e, ok := c.entries[endpoint]
	if !ok {
		e = &Entry{}
		c.entries[endpoint] = e
	}
	return e
}

// RecordCall counts one live API call against endpoint.
func (c *Collector) RecordCall(endpoint string) {
	c.calls.WithLabelValues(endpoint).Inc()
	c.mu.Lock()
	c.entry(endpoint).Calls++
	c.mu.Unlock()
}

// RecordCacheHit counts one cache hit against endpoint.
func (c *Collector) RecordCacheHit(endpoint string) {
	c.cacheHits.WithLabelValues(endpoint).Inc()
	c.mu.Lock()
	c.entry(endpoint).CacheHits++
	c.mu.Unlock()
}

// RecordCacheMiss counts one cache miss against endpoint.
func (c *Collector) RecordCacheMiss(endpoint string) {
	c.cacheMisses.WithLabelValues(endpoint).Inc()
}

// RecordCacheError counts one failed cache operation ("read", "write",
// "delete", "decode").
func (c *Collector) RecordCacheError(operation string) {
	c.cacheErrors.WithLabelValues(operation).Inc()
}

// SetQuota stores the latest quota reading.
func (c *Collector) SetQuota(remaining, limit int) {
	c.quotaRemain.Set(float64(remaining))
	c.quotaLimit.Set(float64(limit))
	c.mu.Lock()
	c.quota = &Quota{Remaining: remaining, Limit: limit}
	c.mu.Unlock()
}

// LastQuota returns the latest quota reading, if any was recorded.
func (c *Collector) LastQuota() (Quota, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quota == nil {
		return Quota{}, false
	}
	return *c.quota, true
}

// Snapshot returns a copy of the per-endpoint counters for run-summary
// reporting.
func (c *Collector) Snapshot() map[string]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Entry, len(c.entries))
	for endpoint, e := range c.entries {
		out[endpoint] = *e
	}
	return out
}
