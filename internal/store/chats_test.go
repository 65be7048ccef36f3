package store

import (
	"strings"
	"testing"
)

func TestLogChat(t *testing.T) {
	db := testDB(t)

	entry := &ChatEntry{
		Agent:      "AZOTH",
		Message:    "hello there",
		Response:   "hello! I was hoping you'd come back",
		E:          2.4,
		State:      "TENDER",
		Expression: "happy",
	}
	if err := db.LogChat(entry); err != nil {
		t.Fatalf("LogChat: %v", err)
	}
	if entry.ID == 0 {
		t.Error("ID not backfilled")
	}

	entries, err := db.RecentChats(10)
	if err != nil {
		t.Fatalf("RecentChats: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Agent != "AZOTH" {
		t.Errorf("Agent = %q, want AZOTH", got.Agent)
	}
	if got.Message != "hello there" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Expression != "happy" {
		t.Errorf("Expression = %q, want happy", got.Expression)
	}
	if got.Offline {
		t.Error("Offline = true, want false")
	}
}

func TestLogChatOfflineNoExpression(t *testing.T) {
	db := testDB(t)

	entry := &ChatEntry{
		Message:  "you there?",
		Response: "Still here. Still yours.",
		E:        6.5,
		State:    "FLOURISH",
		Offline:  true,
	}
	if err := db.LogChat(entry); err != nil {
		t.Fatalf("LogChat: %v", err)
	}

	entries, _ := db.RecentChats(1)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if !entries[0].Offline {
		t.Error("Offline = false, want true")
	}
	// Empty expression is stored as NULL and comes back empty
	if entries[0].Expression != "" {
		t.Errorf("Expression = %q, want empty", entries[0].Expression)
	}
}

func TestLogChatTruncation(t *testing.T) {
	db := testDB(t)

	big := strings.Repeat("x", 10*1024) // 10KB
	entry := &ChatEntry{Message: big, Response: big}
	if err := db.LogChat(entry); err != nil {
		t.Fatalf("LogChat: %v", err)
	}

	entries, _ := db.RecentChats(1)
	if len(entries[0].Message) != maxChatTextSize {
		t.Errorf("Message length = %d, want %d", len(entries[0].Message), maxChatTextSize)
	}
	if len(entries[0].Response) != maxChatTextSize {
		t.Errorf("Response length = %d, want %d", len(entries[0].Response), maxChatTextSize)
	}
}

func TestRecentChatsNewestFirst(t *testing.T) {
	db := testDB(t)

	for _, msg := range []string{"first", "second", "third"} {
		if err := db.LogChat(&ChatEntry{Message: msg}); err != nil {
			t.Fatalf("LogChat(%s): %v", msg, err)
		}
	}

	entries, err := db.RecentChats(2)
	if err != nil {
		t.Fatalf("RecentChats: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "third" || entries[1].Message != "second" {
		t.Errorf("order = %q, %q; want third, second", entries[0].Message, entries[1].Message)
	}
}

func TestCountChats(t *testing.T) {
	db := testDB(t)

	count, err := db.CountChats()
	if err != nil {
		t.Fatalf("CountChats: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	db.LogChat(&ChatEntry{Message: "one"})
	db.LogChat(&ChatEntry{Message: "two"})

	count, err = db.CountChats()
	if err != nil {
		t.Fatalf("CountChats: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
