package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID           string
	UserID       string
	Connector    string
	DisplayName  string
	MessageCount int
	FirstSeen    time.Time
	LastSeen     time.Time
}

type TouchProfileInput struct {
	UserID      string
	Connector   string
	DisplayName string
}

// TouchProfile upserts the profile for a user identifier and bumps its
// message counter. Called once per handled message.
func (s *Store) TouchProfile(ctx context.Context, input TouchProfileInput) error {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	connector := strings.ToLower(strings.TrimSpace(input.Connector))
	if connector == "" {
		connector = "api"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, connector, display_name, message_count)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT(connector, user_id) DO UPDATE SET
			message_count = message_count + 1,
			display_name = CASE WHEN excluded.display_name != '' THEN excluded.display_name ELSE profiles.display_name END,
			last_seen = datetime('now')`,
		uuid.NewString(), userID, connector, strings.TrimSpace(input.DisplayName),
	)
	if err != nil {
		return fmt.Errorf("touch profile: %w", err)
	}
	return nil
}

func (s *Store) ListProfiles(ctx context.Context, limit int) ([]Profile, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, connector, display_name, message_count, first_seen, last_seen
		 FROM profiles ORDER BY last_seen DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var profile Profile
		var firstSeen, lastSeen string
		if err := rows.Scan(
			&profile.ID, &profile.UserID, &profile.Connector, &profile.DisplayName,
			&profile.MessageCount, &firstSeen, &lastSeen,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profile.FirstSeen = parseSQLiteTime(firstSeen)
		profile.LastSeen = parseSQLiteTime(lastSeen)
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (s *Store) CountProfiles(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

func parseSQLiteTime(value string) time.Time {
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
