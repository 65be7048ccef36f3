package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore is the secondary tier: a reduced JSON document written
// atomically. It deliberately carries fewer fields than the binary
// record (no link times or lifetime counters), enough to rebuild a
// soul that still feels like itself.
type FileStore struct {
	path string
}

// NewFileStore persists to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Name() string { return "file" }

type fileDoc struct {
	E            float64 `json:"e"`
	Floor        float64 `json:"e_floor"`
	Peak         float64 `json:"e_peak"`
	Interactions uint32  `json:"interactions"`
	TotalCare    float64 `json:"total_care"`
	BirthTime    int64   `json:"birth_time"`
	SavedAt      int64   `json:"saved_at"`
	Persona      uint8   `json:"persona"`
	Curiosity    float64 `json:"curiosity"`
	Playfulness  float64 `json:"playfulness"`
	Wisdom       float64 `json:"wisdom"`
}

// Save writes temp-then-rename so a crash mid-write never leaves a
// torn document behind.
func (f *FileStore) Save(rec Record) error {
	s := rec.Snapshot
	doc := fileDoc{
		E:            s.E,
		Floor:        s.Floor,
		Peak:         s.Peak,
		Interactions: s.Interactions,
		TotalCare:    s.TotalCare,
		Persona:      s.Persona,
		Curiosity:    s.Curiosity,
		Playfulness:  s.Playfulness,
		Wisdom:       s.Wisdom,
	}
	if !s.BirthTime.IsZero() {
		doc.BirthTime = s.BirthTime.Unix()
	}
	if !s.SavedAt.IsZero() {
		doc.SavedAt = s.SavedAt.Unix()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("file marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("file mkdir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("file write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("file rename: %w", err)
	}
	return nil
}

// Load parses the document. A document without a positive E is
// rejected; a real soul always has one.
func (f *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Record{}, fmt.Errorf("file read: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Record{}, fmt.Errorf("file parse: %w", err)
	}
	if doc.E <= 0 {
		return Record{}, fmt.Errorf("file record: missing energy")
	}

	var rec Record
	rec.Snapshot.E = doc.E
	rec.Snapshot.Floor = doc.Floor
	rec.Snapshot.Peak = doc.Peak
	rec.Snapshot.Interactions = doc.Interactions
	rec.Snapshot.TotalCare = doc.TotalCare
	rec.Snapshot.Persona = doc.Persona
	rec.Snapshot.Curiosity = doc.Curiosity
	rec.Snapshot.Playfulness = doc.Playfulness
	rec.Snapshot.Wisdom = doc.Wisdom
	if doc.BirthTime != 0 {
		rec.Snapshot.BirthTime = time.Unix(doc.BirthTime, 0)
	}
	if doc.SavedAt != 0 {
		rec.Snapshot.SavedAt = time.Unix(doc.SavedAt, 0)
	}
	return rec, nil
}
