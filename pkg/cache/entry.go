package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Version is the current cache schema tag stamped on every write. Reads
// ignore it; it exists only so a future migration can tell formats apart.
const Version = 2

// Metadata field names injected into cached documents. The underscore
// prefix keeps them disjoint from provider payload fields.
const (
	fieldCachedAt = "_cached_at"
	fieldVersion  = "_cache_version"
)

// Entry is a cached document with its metadata split out. CachedAt is zero
// for legacy entries written before metadata stamping; such entries never
// expire.
type Entry struct {
	Path     string
	CachedAt time.Time
	Version  int
	Payload  json.RawMessage
}

// Wrap stamps payload with current metadata for writing. The payload must
// be a JSON object; the provider's response envelope always is.
func Wrap(payload []byte, now time.Time) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	cachedAt, err := json.Marshal(now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	fields[fieldCachedAt] = cachedAt
	fields[fieldVersion] = json.RawMessage(fmt.Sprintf("%d", Version))

	return json.Marshal(fields)
}

// Unwrap parses a stored document into an Entry, stripping metadata fields
// from the payload. Documents without metadata are legacy entries and come
// back with a zero CachedAt. A malformed timestamp is also treated as
// legacy rather than failing the read.
func Unwrap(path string, data []byte) (*Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("malformed cache document: %w", err)
	}

	entry := &Entry{Path: path}

	if raw, ok := fields[fieldCachedAt]; ok {
		var stamp string
		if err := json.Unmarshal(raw, &stamp); err == nil {
			if ts, err := time.Parse(time.RFC3339, stamp); err == nil {
				entry.CachedAt = ts
			}
		}
	}
	if raw, ok := fields[fieldVersion]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err == nil {
			entry.Version = v
		}
	}

	for name := range fields {
		if strings.HasPrefix(name, "_") {
			delete(fields, name)
		}
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	entry.Payload = payload
	return entry, nil
}
