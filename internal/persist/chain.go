package persist

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lazypower/hearth/internal/soul"
)

// Tier is one rung of the persistence ladder.
type Tier interface {
	Name() string
	Save(Record) error
	Load() (Record, error)
}

// Chain tries tiers in priority order. Saves and loads are serialized
// so an autosave can't interleave with a manual save on the same tier.
type Chain struct {
	mu    sync.Mutex
	tiers []Tier
}

// NewChain builds a chain, highest priority first.
func NewChain(tiers ...Tier) *Chain {
	return &Chain{tiers: tiers}
}

// Save writes to the first tier that accepts the record. Lower tiers
// are untouched on success. Only a full sweep of failures is an error;
// the caller logs it and carries on.
func (c *Chain) Save(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, t := range c.tiers {
		if err := t.Save(rec); err != nil {
			log.Printf("persist: %s save: %v", t.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return nil
	}
	if firstErr == nil {
		firstErr = errors.New("no tiers configured")
	}
	return fmt.Errorf("all tiers failed: %w", firstErr)
}

// Load returns the first record that verifies, along with the name of
// the tier that served it. When every tier comes up empty or corrupt
// it returns factory defaults under the name "defaults"; a brand-new
// soul is a normal morning, not an error.
func (c *Chain) Load() (Record, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tiers {
		rec, err := t.Load()
		if err != nil {
			log.Printf("persist: %s load: %v", t.Name(), err)
			continue
		}
		return rec, t.Name()
	}
	return Defaults(), "defaults"
}

// Defaults is the factory record: a newborn soul.
func Defaults() Record {
	return Record{Snapshot: soul.New().Snapshot()}
}
