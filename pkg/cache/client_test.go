package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/matchday-tools/apiclient/pkg/fetch"
	"github.com/matchday-tools/apiclient/pkg/stats"
	"github.com/matchday-tools/apiclient/pkg/store"
)

// stubFetcher returns a canned response and counts calls.
type stubFetcher struct {
	calls int
	body  string
	code  int
	err   error
}

func (f *stubFetcher) Get(_ context.Context, _ string, _ map[string]string, _ map[string]string) (*fetch.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	code := f.code
	if code == 0 {
		code = http.StatusOK
	}
	return &fetch.Response{
		StatusCode: code,
		Body:       []byte(f.body),
		Headers:    http.Header{},
		OK:         code >= 200 && code < 300,
	}, nil
}

func newTestClient(t *testing.T, fetcher fetch.Fetcher, now time.Time) (*Client, *store.LocalStore, *stats.Collector) {
	t.Helper()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	s, err := store.NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	collector := stats.New()
	client, err := NewClient(Config{
		Store:    s,
		Fetcher:  fetcher,
		UseCache: true,
		Stats:    collector,
		Logger:   &logger,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, s, collector
}

func samePayload(t *testing.T, got, want []byte) bool {
	t.Helper()
	var g, w map[string]any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if err := json.Unmarshal(want, &w); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	return fmt.Sprint(g) == fmt.Sprint(w)
}

func TestClient_MissThenHit(t *testing.T) {
	body := `{"response": [{"player": {"id": 555}}]}`
	fetcher := &stubFetcher{body: body}
	now := time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC)
	client, s, collector := newTestClient(t, fetcher, now)
	ctx := context.Background()

	url := baseURL + "/players"
	params := map[string]string{"id": "555", "season": "2026"}

	// First call: network miss, live fetch, write-back.
	resp, err := client.Get(ctx, url, nil, params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.FromCache {
		t.Error("first Get() served from cache")
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetcher calls = %d, want 1", fetcher.calls)
	}
	if s.Read(ctx, "players/555.json") == nil {
		t.Fatal("write-back did not create players/555.json")
	}

	// Second call: cache hit, zero live fetches.
	resp, err = client.Get(ctx, url, nil, params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !resp.FromCache {
		t.Error("second Get() not served from cache")
	}
	if resp.StatusCode != http.StatusOK || !resp.OK {
		t.Errorf("cached response = status %d ok %v, want 200 true", resp.StatusCode, resp.OK)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1 (no fetch on hit)", fetcher.calls)
	}
	if !samePayload(t, resp.Body, []byte(body)) {
		t.Errorf("cached payload = %s, want %s", resp.Body, body)
	}

	snap := collector.Snapshot()
	if e := snap["players"]; e.Calls != 1 || e.CacheHits != 1 {
		t.Errorf("stats = %+v, want {Calls:1 CacheHits:1}", e)
	}
}

func TestClient_ZeroTTLAlwaysBypasses(t *testing.T) {
	fetcher := &stubFetcher{body: `{"response": ["live"]}`}
	now := time.Now()
	client, s, _ := newTestClient(t, fetcher, now)
	ctx := context.Background()

	// Seed a perfectly valid entry at the readable path.
	wrapped, err := Wrap([]byte(`{"response": ["cached"]}`), now)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, "injuries/fixture_9001.json", wrapped); err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(ctx, baseURL+"/injuries", nil, map[string]string{"fixture": "9001"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.FromCache {
		t.Error("TTL=0 endpoint served from cache")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
	// And the live response must not have been cached either.
	if string(s.Read(ctx, "injuries/fixture_9001.json")) != string(wrapped) {
		t.Error("TTL=0 endpoint was rewritten")
	}
}

func TestClient_LegacyFallbackNoLegacyRewrite(t *testing.T) {
	liveBody := `{"response": ["refreshed"]}`
	fetcher := &stubFetcher{body: liveBody}
	now := time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC)
	client, s, _ := newTestClient(t, fetcher, now)
	ctx := context.Background()

	url := baseURL + "/fixtures"
	params := map[string]string{"team": "40", "last": "5"}
	key := Key{URL: url, Params: params}

	// Only the legacy path holds an entry, fresh under the 2-day override.
	freshLegacy, err := Wrap([]byte(`{"response": ["legacy"]}`), now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, key.LegacyPath(), freshLegacy); err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(ctx, url, nil, params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !resp.FromCache {
		t.Fatal("legacy entry not served")
	}
	if fetcher.calls != 0 {
		t.Errorf("fetcher calls = %d, want 0", fetcher.calls)
	}

	// Age the legacy entry past the override window: the refresh must hit
	// the network and write solely to the readable path.
	staleLegacy, err := Wrap([]byte(`{"response": ["legacy"]}`), now.AddDate(0, 0, -3))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write(ctx, key.LegacyPath(), staleLegacy); err != nil {
		t.Fatal(err)
	}

	resp, err = client.Get(ctx, url, nil, params)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.FromCache {
		t.Error("stale legacy entry served from cache")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}

	if s.Read(ctx, key.ReadablePath()) == nil {
		t.Error("refresh did not write the readable path")
	}
	if got := s.Read(ctx, key.LegacyPath()); string(got) != string(staleLegacy) {
		t.Error("legacy entry was modified; refresh must leave it byte-for-byte unchanged")
	}
}

func TestClient_FetchErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("connection refused")
	fetcher := &stubFetcher{err: sentinel}
	client, _, _ := newTestClient(t, fetcher, time.Now())

	_, err := client.Get(context.Background(), baseURL+"/fixtures", nil, map[string]string{"id": "1"})
	if !errors.Is(err, sentinel) {
		t.Errorf("Get() error = %v, want the fetcher's error unchanged", err)
	}
}

func TestClient_ErrorStatusNotCached(t *testing.T) {
	fetcher := &stubFetcher{body: `{"errors": {"token": "invalid"}}`, code: http.StatusForbidden}
	client, s, _ := newTestClient(t, fetcher, time.Now())
	ctx := context.Background()

	resp, err := client.Get(ctx, baseURL+"/players", nil, map[string]string{"id": "555"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.OK {
		t.Error("OK = true for 403")
	}
	if s.Read(ctx, "players/555.json") != nil {
		t.Error("error response was cached")
	}
}

func TestClient_MalformedEntryTreatedAsMiss(t *testing.T) {
	fetcher := &stubFetcher{body: `{"response": []}`}
	client, s, _ := newTestClient(t, fetcher, time.Now())
	ctx := context.Background()

	if err := s.Write(ctx, "players/555.json", []byte(`not json at all`)); err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(ctx, baseURL+"/players", nil, map[string]string{"id": "555"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.FromCache {
		t.Error("malformed entry served from cache")
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
}

// failWriteStore wraps a store and fails every write.
type failWriteStore struct {
	DocumentStore
}

func (s *failWriteStore) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestClient_WriteFailureSwallowed(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	inner, err := store.NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	fetcher := &stubFetcher{body: `{"response": []}`}
	client, err := NewClient(Config{
		Store:    &failWriteStore{DocumentStore: inner},
		Fetcher:  fetcher,
		UseCache: true,
		Logger:   &logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Get(context.Background(), baseURL+"/players", nil, map[string]string{"id": "555"})
	if err != nil {
		t.Fatalf("Get() error = %v, cache write failures must not fail the request", err)
	}
	if !resp.OK {
		t.Error("OK = false")
	}
}

func TestClient_CacheDisabled(t *testing.T) {
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	s, err := store.NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	fetcher := &stubFetcher{body: `{"response": []}`}
	client, err := NewClient(Config{
		Store:   s,
		Fetcher: fetcher,
		Logger:  &logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.Get(ctx, baseURL+"/players", nil, map[string]string{"id": "555"}); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher calls = %d, want 2 with caching disabled", fetcher.calls)
	}
	if s.Read(ctx, "players/555.json") != nil {
		t.Error("disabled cache still wrote an entry")
	}
}

func TestClient_Delete(t *testing.T) {
	fetcher := &stubFetcher{body: `{"response": []}`}
	client, s, _ := newTestClient(t, fetcher, time.Now())
	ctx := context.Background()

	url := baseURL + "/players"
	params := map[string]string{"id": "555"}
	if _, err := client.Get(ctx, url, nil, params); err != nil {
		t.Fatal(err)
	}
	if !client.Delete(ctx, url, params) {
		t.Error("Delete() = false for a cached entry")
	}
	if s.Read(ctx, "players/555.json") != nil {
		t.Error("entry still present after Delete()")
	}
}
