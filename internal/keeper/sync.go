package keeper

import (
	"context"
	"fmt"
	"log"

	"github.com/lazypower/hearth/internal/store"
)

// SyncNow pushes the full soul state to the cloud, archives whatever
// the offline queue collected, and saves. Queue entries survive a
// failed sync or a failed archive.
func (k *Keeper) SyncNow(ctx context.Context) error {
	snap := k.Soul.Snapshot()
	if err := k.Cloud.Sync(ctx, snap, k.Soul.State().String(), k.AgentName()); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	k.Soul.RecordSync()

	entries := k.Queue.Drain()
	if len(entries) > 0 && k.DB != nil {
		review := make([]store.ReviewEntry, len(entries))
		for i, e := range entries {
			review[i] = store.ReviewEntry{
				HappenedAt: e.Timestamp.UnixMilli(),
				Input:      e.Input,
				Output:     e.Output,
				E:          e.E,
				State:      e.State,
				Quality:    e.Quality,
			}
		}
		if err := k.DB.ArchiveReview(review); err != nil {
			log.Printf("keeper: archive offline exchanges: %v", err)
			for _, e := range entries {
				k.Queue.Add(e)
			}
		} else {
			log.Printf("keeper: archived %d offline exchanges", len(review))
		}
	}

	if err := k.Save(); err != nil {
		log.Printf("keeper: save after sync: %v", err)
	}
	return nil
}
