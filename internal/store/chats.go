package store

import (
	"database/sql"
	"fmt"
	"time"
)

// maxChatTextSize is the maximum stored length of message and response text.
const maxChatTextSize = 4 * 1024 // 4KB

// ChatEntry is one conversation exchange with the soul context it
// happened under. Offline entries were answered by the fallback
// responder rather than the cloud.
type ChatEntry struct {
	ID         int64
	Agent      string
	Message    string
	Response   string
	E          float64
	State      string
	Expression string
	Offline    bool
	CreatedAt  int64
}

// LogChat stores a chat exchange. Truncates message and response to 4KB.
func (db *DB) LogChat(entry *ChatEntry) error {
	if len(entry.Message) > maxChatTextSize {
		entry.Message = entry.Message[:maxChatTextSize]
	}
	if len(entry.Response) > maxChatTextSize {
		entry.Response = entry.Response[:maxChatTextSize]
	}

	offline := 0
	if entry.Offline {
		offline = 1
	}

	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO chat_log (agent, message, response, e, state, expression, offline, created_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`, entry.Agent, entry.Message, entry.Response, entry.E, entry.State,
		entry.Expression, offline, now)
	if err != nil {
		return fmt.Errorf("log chat: %w", err)
	}

	id, _ := result.LastInsertId()
	entry.ID = id
	entry.CreatedAt = now
	return nil
}

// RecentChats returns the most recent chat exchanges, newest first.
func (db *DB) RecentChats(limit int) ([]ChatEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := db.Query(`
		SELECT id, agent, message, response, e, state, expression, offline, created_at
		FROM chat_log ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent chats: %w", err)
	}
	defer rows.Close()

	var entries []ChatEntry
	for rows.Next() {
		var e ChatEntry
		var expression sql.NullString
		var offline int
		if err := rows.Scan(&e.ID, &e.Agent, &e.Message, &e.Response, &e.E, &e.State,
			&expression, &offline, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		e.Expression = expression.String
		e.Offline = offline != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountChats returns the total number of logged chat exchanges.
func (db *DB) CountChats() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM chat_log").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chats: %w", err)
	}
	return count, nil
}
