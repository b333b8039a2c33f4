package transcript

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), 60, testLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestSanitizeUserID(t *testing.T) {
	cases := map[string]string{
		"5511999998888@c.us": "5511999998888_c_us",
		"web-user-abc123":    "web_user_abc123",
		"plain_id_42":        "plain_id_42",
	}
	for raw, expected := range cases {
		if got := SanitizeUserID(raw); got != expected {
			t.Fatalf("sanitize %q: expected %q, got %q", raw, expected, got)
		}
	}
}

func TestAppendThenReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		store.Append("user@1", fmt.Sprintf("pergunta %d", i), fmt.Sprintf("resposta %d", i))
	}

	content, err := store.Read("user@1")
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	for i := 0; i < 3; i++ {
		if strings.Count(content, fmt.Sprintf("User: pergunta %d\n", i)) != 1 {
			t.Fatalf("expected exactly one entry for pergunta %d, content:\n%s", i, content)
		}
	}
	if strings.Index(content, "pergunta 0") > strings.Index(content, "pergunta 2") {
		t.Fatal("entries out of append order")
	}
}

func TestReadMissingTranscript(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Read("ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListIgnoresNonTranscriptFiles(t *testing.T) {
	store := newTestStore(t)
	store.Append("user-1", "oi", "olá")
	if err := os.WriteFile(filepath.Join(store.dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write extra file: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(entries))
	}
	if entries[0].UserID != "user_1" || entries[0].File != "user_1.txt" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if entries[0].SizeKB <= 0 {
		t.Fatalf("expected positive size, got %v", entries[0].SizeKB)
	}
}

func TestSweepDeletesOnlyExpiredFiles(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Append("old-user", "oi", "olá")
	store.Append("fresh-user", "oi", "olá")

	oldPath := filepath.Join(store.dir, "old_user.txt")
	expired := now.Add(-store.maxAge - time.Millisecond)
	if err := os.Chtimes(oldPath, expired, expired); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	deleted, err := store.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatal("expected expired transcript to be deleted")
	}
	if _, err := store.Read("fresh-user"); err != nil {
		t.Fatalf("fresh transcript should survive: %v", err)
	}
}

func TestSweepBoundaryExactlyAtThresholdSurvives(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Append("edge-user", "oi", "olá")
	path := filepath.Join(store.dir, "edge_user.txt")
	atThreshold := now.Add(-store.maxAge)
	if err := os.Chtimes(path, atThreshold, atThreshold); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	deleted, err := store.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("file exactly at threshold must survive, deleted %d", deleted)
	}

	pastThreshold := now.Add(-store.maxAge - time.Millisecond)
	if err := os.Chtimes(path, pastThreshold, pastThreshold); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	deleted, err = store.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("one millisecond past threshold must be deleted, got %d", deleted)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Append("old-user", "oi", "olá")
	expired := now.Add(-store.maxAge - time.Hour)
	path := filepath.Join(store.dir, "old_user.txt")
	if err := os.Chtimes(path, expired, expired); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	first, err := store.Sweep()
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	second, err := store.Sweep()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if first != 1 || second != 0 {
		t.Fatalf("expected 1 then 0 deletions, got %d then %d", first, second)
	}
}

func TestCollidingIdentifiersShareOneTranscript(t *testing.T) {
	store := newTestStore(t)
	store.Append("user.1", "primeira", "ok")
	store.Append("user-1", "segunda", "ok")

	entries, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("colliding identifiers should merge into one file, got %d", len(entries))
	}
	content, err := store.Read("user_1")
	if err != nil {
		t.Fatalf("read merged transcript: %v", err)
	}
	if !strings.Contains(content, "primeira") || !strings.Contains(content, "segunda") {
		t.Fatalf("expected both exchanges in merged transcript:\n%s", content)
	}
}
