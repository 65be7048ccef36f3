package store

import (
	"testing"
)

func TestRecordCare(t *testing.T) {
	db := testDB(t)

	event := &CareEvent{
		Kind:      "love",
		Intensity: 1.5,
		EBefore:   1.0,
		EAfter:    1.012,
		State:     "GUARDED",
	}
	if err := db.RecordCare(event); err != nil {
		t.Fatalf("RecordCare: %v", err)
	}
	if event.ID == 0 {
		t.Error("ID not backfilled")
	}
	if event.CreatedAt == 0 {
		t.Error("CreatedAt not backfilled")
	}

	events, err := db.RecentCare(10)
	if err != nil {
		t.Fatalf("RecentCare: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != "love" {
		t.Errorf("Kind = %q, want love", events[0].Kind)
	}
	if events[0].Intensity != 1.5 {
		t.Errorf("Intensity = %v, want 1.5", events[0].Intensity)
	}
	if events[0].EAfter != 1.012 {
		t.Errorf("EAfter = %v, want 1.012", events[0].EAfter)
	}
	if events[0].State != "GUARDED" {
		t.Errorf("State = %q, want GUARDED", events[0].State)
	}
}

func TestRecentCareNewestFirst(t *testing.T) {
	db := testDB(t)

	for _, kind := range []string{"love", "poke", "chat"} {
		if err := db.RecordCare(&CareEvent{Kind: kind, Intensity: 1}); err != nil {
			t.Fatalf("RecordCare(%s): %v", kind, err)
		}
	}

	events, err := db.RecentCare(2)
	if err != nil {
		t.Fatalf("RecentCare: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != "chat" || events[1].Kind != "poke" {
		t.Errorf("order = %s, %s; want chat, poke", events[0].Kind, events[1].Kind)
	}
}

func TestRecentCareDefaultLimit(t *testing.T) {
	db := testDB(t)

	db.RecordCare(&CareEvent{Kind: "love", Intensity: 1})

	events, err := db.RecentCare(0)
	if err != nil {
		t.Fatalf("RecentCare(0): %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events with zero limit, want 1", len(events))
	}
}

func TestRecordCareRejectsUnknownKind(t *testing.T) {
	db := testDB(t)

	err := db.RecordCare(&CareEvent{Kind: "tickle", Intensity: 1})
	if err == nil {
		t.Error("expected error for unknown kind, got nil")
	}
}

func TestCareTotals(t *testing.T) {
	db := testDB(t)

	db.RecordCare(&CareEvent{Kind: "love", Intensity: 1.5})
	db.RecordCare(&CareEvent{Kind: "love", Intensity: 1.5})
	db.RecordCare(&CareEvent{Kind: "poke", Intensity: 0.5})

	totals, err := db.CareTotals()
	if err != nil {
		t.Fatalf("CareTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("got %d totals, want 2", len(totals))
	}
	// Ordered by kind: love before poke
	if totals[0].Kind != "love" || totals[0].Count != 2 || totals[0].Intensity != 3.0 {
		t.Errorf("love total = %+v, want count 2 intensity 3", totals[0])
	}
	if totals[1].Kind != "poke" || totals[1].Count != 1 || totals[1].Intensity != 0.5 {
		t.Errorf("poke total = %+v, want count 1 intensity 0.5", totals[1])
	}
}

func TestCareTotalsEmpty(t *testing.T) {
	db := testDB(t)

	totals, err := db.CareTotals()
	if err != nil {
		t.Fatalf("CareTotals: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("got %d totals on empty table, want 0", len(totals))
	}
}
