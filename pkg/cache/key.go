package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies one cacheable request: the full URL plus its query
// parameters. Paths derived from it are deterministic, so the same request
// always resolves to the same document.
type Key struct {
	URL    string
	Params map[string]string
}

// Endpoint extracts the logical endpoint name from a URL: the last path
// segment, stripped of anything that is not filename-safe.
//
//	https://v3.football.api-sports.io/fixtures/headtohead -> headtohead
//	https://v3.football.api-sports.io/fixtures            -> fixtures
func Endpoint(rawURL string) string {
	suffix := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		suffix = rawURL[i+1:]
	}
	var b strings.Builder
	for _, c := range suffix {
		if c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return "api"
	}
	return b.String()
}

// Endpoint returns the key's logical endpoint name.
func (k Key) Endpoint() string {
	return Endpoint(k.URL)
}

// ReadablePath derives a human-readable relative path for recognized
// parameter shapes, falling back to the hash path for anything else.
// Writes always target this path.
func (k Key) ReadablePath() string {
	endpoint := k.Endpoint()
	p := k.Params

	switch endpoint {
	case "players":
		if id, ok := p["id"]; ok {
			return fmt.Sprintf("players/%s.json", id)
		}

	case "squads":
		if team, ok := p["team"]; ok {
			return fmt.Sprintf("squads/team_%s.json", team)
		}

	case "lineups":
		if fixture, ok := p["fixture"]; ok {
			return fmt.Sprintf("lineups/fixture_%s.json", fixture)
		}

	case "fixtures":
		if id, ok := p["id"]; ok {
			return fmt.Sprintf("fixtures/id_%s.json", id)
		}
		if team, ok := p["team"]; ok {
			if last, ok := p["last"]; ok {
				return fmt.Sprintf("fixtures/team_%s_last_%s.json", team, last)
			}
		}
		if league, ok := p["league"]; ok {
			if date, ok := p["date"]; ok {
				return fmt.Sprintf("fixtures/league_%s_date_%s.json", league, date)
			}
			if season, ok := p["season"]; ok {
				return fmt.Sprintf("fixtures/league_%s_season_%s.json", league, season)
			}
		}

	case "headtohead":
		if h2h, ok := p["h2h"]; ok {
			return fmt.Sprintf("headtohead/%s.json", strings.ReplaceAll(h2h, "-", "_vs_"))
		}

	case "statistics":
		if team, ok := p["team"]; ok {
			season := paramOr(p, "season", "unknown")
			league := paramOr(p, "league", "unknown")
			return fmt.Sprintf("statistics/team_%s_season_%s_league_%s.json", team, season, league)
		}

	case "injuries":
		if fixture, ok := p["fixture"]; ok {
			return fmt.Sprintf("injuries/fixture_%s.json", fixture)
		}
	}

	return k.LegacyPath()
}

// LegacyPath derives the hash-only path format. It is consulted on reads
// for backward compatibility with pre-readable-path entries; writes must
// never target it, so every refresh migrates an entry forward.
func (k Key) LegacyPath() string {
	sum := md5.Sum([]byte(k.URL + canonicalParams(k.Params)))
	return fmt.Sprintf("%s/%x.json", k.Endpoint(), sum)
}

// canonicalParams serializes params deterministically. encoding/json sorts
// map keys, which is the property the hash depends on.
func canonicalParams(params map[string]string) string {
	if len(params) == 0 {
		return "{}"
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func paramOr(params map[string]string, key, fallback string) string {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}
