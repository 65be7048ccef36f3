package store

import (
	"fmt"
	"time"
)

// ReviewEntry is one offline exchange drained from the fallback queue
// at sync time, kept so the owner can see what was said while the
// cloud was unreachable.
type ReviewEntry struct {
	ID         int64
	HappenedAt int64
	Input      string
	Output     string
	E          float64
	State      string
	Quality    string
	SyncedAt   int64
}

// ArchiveReview stores a batch of drained offline exchanges in one
// transaction, stamping them all with the same synced_at.
func (db *DB) ArchiveReview(entries []ReviewEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin review archive: %w", err)
	}

	for _, e := range entries {
		quality := e.Quality
		if quality == "" {
			quality = "normal"
		}
		if _, err := tx.Exec(`
			INSERT INTO offline_review (happened_at, input, output, e, state, quality, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.HappenedAt, e.Input, e.Output, e.E, e.State, quality, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("archive review entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review archive: %w", err)
	}
	return nil
}

// RecentReview returns the most recently archived offline exchanges,
// newest sync first.
func (db *DB) RecentReview(limit int) ([]ReviewEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := db.Query(`
		SELECT id, happened_at, input, output, e, state, quality, synced_at
		FROM offline_review ORDER BY synced_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent review: %w", err)
	}
	defer rows.Close()

	var entries []ReviewEntry
	for rows.Next() {
		var e ReviewEntry
		if err := rows.Scan(&e.ID, &e.HappenedAt, &e.Input, &e.Output, &e.E, &e.State,
			&e.Quality, &e.SyncedAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountPendingReview returns how many archived exchanges happened
// after the given unix-milli timestamp.
func (db *DB) CountPendingReview(since int64) (int, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM offline_review WHERE happened_at > ?", since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count review: %w", err)
	}
	return count, nil
}
