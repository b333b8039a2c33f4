package transcript

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var ErrNotFound = errors.New("conversation not found")

// Filenames are a sanitized transform of the raw user identifier. Two
// distinct identifiers can sanitize to the same name and will share one
// transcript; known limitation, kept for compatibility with the on-disk
// layout.
var filenameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

const transcriptTimeLayout = "02/01/2006, 15:04:05"

// Entry describes one transcript file for the listing API.
type Entry struct {
	UserID       string    `json:"user_id"`
	File         string    `json:"file"`
	LastModified time.Time `json:"last_modified"`
	SizeKB       float64   `json:"size_kb"`
}

// Store persists every exchange as an append-only per-user transcript file
// and applies the retention policy over them.
type Store struct {
	dir    string
	maxAge time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func New(dir string, retentionDays int, logger *slog.Logger) (*Store, error) {
	if retentionDays < 1 {
		retentionDays = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}
	return &Store{
		dir:    dir,
		maxAge: time.Duration(retentionDays) * 24 * time.Hour,
		logger: logger,
		now:    time.Now,
	}, nil
}

func SanitizeUserID(userID string) string {
	return filenameSanitizer.ReplaceAllString(userID, "_")
}

// Append records one exchange. Failures are logged and swallowed: losing a
// transcript entry must never break the chat flow.
func (s *Store) Append(userID, userMessage, botReply string) {
	path := s.pathFor(userID)
	block := fmt.Sprintf("[%s]\nUser: %s\nBot: %s\n\n", s.now().Format(transcriptTimeLayout), userMessage, botReply)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Error("open transcript failed", "error", err, "user_id", userID)
		return
	}
	defer file.Close()

	if _, err := file.WriteString(block); err != nil {
		s.logger.Error("append transcript failed", "error", err, "user_id", userID)
		return
	}
	s.logger.Debug("transcript entry saved", "user_id", userID)
}

// List enumerates transcript files with metadata. Non-transcript files in
// the directory are ignored.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read conversations dir: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".txt") {
			continue
		}
		info, err := dirEntry.Info()
		if err != nil {
			s.logger.Warn("stat transcript failed", "error", err, "file", dirEntry.Name())
			continue
		}
		entries = append(entries, Entry{
			UserID:       strings.TrimSuffix(dirEntry.Name(), ".txt"),
			File:         dirEntry.Name(),
			LastModified: info.ModTime(),
			SizeKB:       math.Round(float64(info.Size())/1024*100) / 100,
		})
	}
	return entries, nil
}

// Read returns the full transcript text for a user identifier.
func (s *Store) Read(userID string) (string, error) {
	data, err := os.ReadFile(s.pathFor(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

// Sweep deletes transcripts strictly older than the retention threshold and
// returns the number deleted. A file exactly at the threshold survives.
// Per-file failures are logged and do not abort the sweep.
func (s *Store) Sweep() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	now := s.now()
	deleted := 0
	for _, entry := range entries {
		if now.Sub(entry.LastModified) <= s.maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.File)); err != nil {
			s.logger.Error("delete old transcript failed", "error", err, "file", entry.File)
			continue
		}
		deleted++
		s.logger.Info("old transcript deleted", "file", entry.File, "last_modified", entry.LastModified)
	}
	s.logger.Info("retention sweep finished", "deleted", deleted)
	return deleted, nil
}

func (s *Store) pathFor(userID string) string {
	return filepath.Join(s.dir, SanitizeUserID(userID)+".txt")
}
