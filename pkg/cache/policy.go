package cache

import "time"

// lastNOverrideDays pins "last N fixtures of a team" lookups to a short
// lifetime regardless of the fixtures endpoint's general TTL. The newest N
// results shift with every matchday, so a long-lived cache goes stale even
// though individual fixtures are immutable. This is deliberately a single
// named exception, not a general per-parameter-shape rule.
const lastNOverrideDays = 2

// TTLTable maps a logical endpoint name to its cache lifetime in days.
// A nil value means entries never expire; zero means the endpoint is never
// cached; a positive value expires entries after that many days.
type TTLTable map[string]*int

// Days is a convenience for building TTL tables with finite lifetimes.
func Days(n int) *int {
	return &n
}

// DefaultTTLTable returns the provider's endpoint policy: player and squad
// records are static, lineups are final once published, fixture-level data
// drifts slowly, and injury reports are too volatile to cache at all.
func DefaultTTLTable() TTLTable {
	return TTLTable{
		"players":    nil,
		"squads":     nil,
		"lineups":    nil,
		"fixtures":   Days(10),
		"headtohead": Days(10),
		"statistics": Days(10),
		"injuries":   Days(0),
	}
}

// Resolve returns the TTL applying to a request: the last-N override when
// the parameter shape matches, else the endpoint's general policy. Unknown
// endpoints never expire.
func (t TTLTable) Resolve(endpoint string, params map[string]string) *int {
	if endpoint == "fixtures" {
		if _, ok := params["last"]; ok {
			return Days(lastNOverrideDays)
		}
	}
	return t[endpoint]
}

// Bypassed reports whether the endpoint's policy is "never cached".
func (t TTLTable) Bypassed(endpoint string, params map[string]string) bool {
	ttl := t.Resolve(endpoint, params)
	return ttl != nil && *ttl == 0
}

// Fresh reports whether an entry cached at cachedAt is still valid for the
// given endpoint and parameters. A zero cachedAt marks a pre-versioning
// legacy entry and is always treated as fresh.
func (t TTLTable) Fresh(endpoint string, params map[string]string, cachedAt, now time.Time) bool {
	ttl := t.Resolve(endpoint, params)
	if ttl == nil {
		return true
	}
	if *ttl == 0 {
		return false
	}
	if cachedAt.IsZero() {
		return true
	}
	return now.Sub(cachedAt) < time.Duration(*ttl)*24*time.Hour
}
