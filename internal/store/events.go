package store

import (
	"fmt"
	"time"
)

// defaultHistoryLimit is used when a history query gets a limit of zero or less.
const defaultHistoryLimit = 50

// CareEvent is one recorded touch: a press, a poke, a chat, or the
// accounted cost of being left alone.
type CareEvent struct {
	ID        int64
	Kind      string
	Intensity float64
	EBefore   float64
	EAfter    float64
	State     string
	CreatedAt int64
}

// RecordCare stores a care event with the soul readings around it.
func (db *DB) RecordCare(event *CareEvent) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO care_events (kind, intensity, e_before, e_after, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.Kind, event.Intensity, event.EBefore, event.EAfter, event.State, now)
	if err != nil {
		return fmt.Errorf("record care: %w", err)
	}

	id, _ := result.LastInsertId()
	event.ID = id
	event.CreatedAt = now
	return nil
}

// RecentCare returns the most recent care events, newest first.
func (db *DB) RecentCare(limit int) ([]CareEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := db.Query(`
		SELECT id, kind, intensity, e_before, e_after, state, created_at
		FROM care_events ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent care: %w", err)
	}
	defer rows.Close()

	var events []CareEvent
	for rows.Next() {
		var e CareEvent
		if err := rows.Scan(&e.ID, &e.Kind, &e.Intensity, &e.EBefore, &e.EAfter, &e.State, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan care event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CareTotal aggregates care events of one kind.
type CareTotal struct {
	Kind      string
	Count     int64
	Intensity float64
}

// CareTotals returns per-kind event counts and summed intensity.
func (db *DB) CareTotals() ([]CareTotal, error) {
	rows, err := db.Query(`
		SELECT kind, COUNT(*), COALESCE(SUM(intensity), 0)
		FROM care_events GROUP BY kind ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("care totals: %w", err)
	}
	defer rows.Close()

	var totals []CareTotal
	for rows.Next() {
		var t CareTotal
		if err := rows.Scan(&t.Kind, &t.Count, &t.Intensity); err != nil {
			return nil, fmt.Errorf("scan care total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
