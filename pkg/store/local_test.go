package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestLocalStore_RoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	doc := []byte(`{"response": [{"player": {"id": 555}}]}`)
	if err := s.Write(ctx, "players/555.json", doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got := s.Read(ctx, "players/555.json")
	if string(got) != string(doc) {
		t.Errorf("Read() = %s, want %s", got, doc)
	}
}

func TestLocalStore_ReadAbsent(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	if got := s.Read(context.Background(), "fixtures/id_1.json"); got != nil {
		t.Errorf("Read() of absent path = %s, want nil", got)
	}
}

func TestLocalStore_WriteCreatesIntermediateDirs(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	path := "statistics/team_40_season_2024_league_39.json"
	if err := s.Write(context.Background(), path, []byte(`{}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "statistics", "team_40_season_2024_league_39.json")); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}
}

func TestLocalStore_ExistsAndDelete(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	path := "lineups/fixture_9001.json"
	if s.Exists(ctx, path) {
		t.Error("Exists() = true before write")
	}
	if s.Delete(ctx, path) {
		t.Error("Delete() = true for absent path")
	}

	if err := s.Write(ctx, path, []byte(`{"response": []}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !s.Exists(ctx, path) {
		t.Error("Exists() = false after write")
	}
	if !s.Delete(ctx, path) {
		t.Error("Delete() = false after write")
	}
	if s.Exists(ctx, path) {
		t.Error("Exists() = true after delete")
	}
}

func TestLocalStore_OverwriteReplacesDocument(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	ctx := context.Background()

	path := "fixtures/id_77.json"
	if err := s.Write(ctx, path, []byte(`{"v": 1}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Write(ctx, path, []byte(`{"v": 2}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := string(s.Read(ctx, path)); got != `{"v": 2}` {
		t.Errorf("Read() after overwrite = %s, want second document", got)
	}
}
