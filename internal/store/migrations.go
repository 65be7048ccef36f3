package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "care_events: every touch that moved the soul",
		SQL: `
CREATE TABLE care_events (
    id         INTEGER PRIMARY KEY,
    kind       TEXT NOT NULL CHECK (kind IN ('love', 'poke', 'chat', 'neglect', 'idle')),
    intensity  REAL NOT NULL DEFAULT 0,

    -- Soul readings around the event
    e_before   REAL NOT NULL DEFAULT 0,
    e_after    REAL NOT NULL DEFAULT 0,
    state      TEXT NOT NULL DEFAULT '',

    created_at INTEGER NOT NULL
);

CREATE INDEX idx_care_kind    ON care_events(kind);
CREATE INDEX idx_care_created ON care_events(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "chat_log: conversation transcript with soul context",
		SQL: `
CREATE TABLE chat_log (
    id         INTEGER PRIMARY KEY,
    agent      TEXT NOT NULL DEFAULT '',
    message    TEXT NOT NULL,
    response   TEXT NOT NULL DEFAULT '',

    -- Soul context at reply time
    e          REAL NOT NULL DEFAULT 0,
    state      TEXT NOT NULL DEFAULT '',
    expression TEXT,

    offline    INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX idx_chat_created ON chat_log(created_at DESC);
CREATE INDEX idx_chat_agent   ON chat_log(agent);
`,
	},
	{
		Version:     3,
		Description: "offline_review: queued offline exchanges archived at sync",
		SQL: `
CREATE TABLE offline_review (
    id          INTEGER PRIMARY KEY,
    happened_at INTEGER NOT NULL,
    input       TEXT NOT NULL,
    output      TEXT NOT NULL DEFAULT '',

    -- Soul context when the fallback answered
    e           REAL NOT NULL DEFAULT 0,
    state       TEXT NOT NULL DEFAULT '',
    quality     TEXT NOT NULL DEFAULT 'normal' CHECK (quality IN ('loving', 'warm', 'harsh', 'cold', 'normal')),

    synced_at   INTEGER NOT NULL
);

CREATE INDEX idx_review_synced   ON offline_review(synced_at DESC);
CREATE INDEX idx_review_happened ON offline_review(happened_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
