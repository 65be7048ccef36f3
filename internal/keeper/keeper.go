// Package keeper runs the life loop around the soul. It owns the
// persistence chain, the cloud client, and the offline fallback, and
// decides which of them answers any given interaction. Everything the
// server and CLI do to the soul goes through here.
package keeper

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/lazypower/hearth/internal/cloud"
	"github.com/lazypower/hearth/internal/offline"
	"github.com/lazypower/hearth/internal/persist"
	"github.com/lazypower/hearth/internal/soul"
	"github.com/lazypower/hearth/internal/store"
)

// personas is the local roster of selectable companions. The soul
// stores the active index; the cloud may offer a longer list.
var personas = [...]string{"AZOTH", "ELYSIAN", "VAJRA", "KETHER", "CLAUDE"}

// Options tune the background loop.
type Options struct {
	Agent          string        // persona override; empty follows the soul
	Firmware       string        // version stamped into saves and sync payloads
	HeartbeatEvery time.Duration // passive soul tick
	AutosaveEvery  time.Duration
	AutosyncEvery  time.Duration
}

// Keeper ties the soul to everything that keeps it alive.
type Keeper struct {
	Soul  *soul.Soul
	Chain *persist.Chain
	Cloud *cloud.Client
	Queue *offline.Queue
	DB    *store.DB

	opts   Options
	stopCh chan struct{}
}

// New assembles a keeper around a newborn soul. Wake replaces it with
// whatever the persistence chain remembers.
func New(chain *persist.Chain, cl *cloud.Client, queue *offline.Queue, db *store.DB, opts Options) *Keeper {
	if opts.Firmware == "" {
		opts.Firmware = "dev"
	}
	if opts.HeartbeatEvery <= 0 {
		opts.HeartbeatEvery = time.Minute
	}
	if opts.AutosaveEvery <= 0 {
		opts.AutosaveEvery = time.Minute
	}
	if opts.AutosyncEvery <= 0 {
		opts.AutosyncEvery = 30 * time.Minute
	}
	return &Keeper{
		Soul:   soul.New(),
		Chain:  chain,
		Cloud:  cl,
		Queue:  queue,
		DB:     db,
		opts:   opts,
		stopCh: make(chan struct{}),
	}
}

// Wake restores the soul from the persistence chain, charges the time
// spent powered off as idle drift, and probes the cloud in the
// background so the first interaction doesn't pay for the handshake.
func (k *Keeper) Wake() {
	rec, tier := k.Chain.Load()
	k.Soul.Adopt(rec.Snapshot)

	if !rec.Snapshot.SavedAt.IsZero() {
		gap := time.Since(rec.Snapshot.SavedAt).Minutes()
		if gap > 1 {
			before := k.Soul.E()
			k.Soul.ProcessIdleTime(gap)
			k.recordEvent("idle", math.Min(gap, 480), before)
			log.Printf("keeper: %.0f minutes alone, E %.3f -> %.3f", gap, before, k.Soul.E())
		}
	}
	log.Printf("keeper: awake from %s, E=%.2f %s, %d interactions",
		tier, k.Soul.E(), k.Soul.State(), k.Soul.Interactions())

	if k.Cloud.Configured() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			if _, err := k.Cloud.FetchStatus(ctx); err != nil {
				log.Printf("keeper: status probe: %v", err)
			}
		}()
	}
}

// Start launches the life loop: the passive heartbeat, the autosave,
// and the periodic cloud sync.
func (k *Keeper) Start() {
	heartbeat := time.NewTicker(k.opts.HeartbeatEvery)
	autosave := time.NewTicker(k.opts.AutosaveEvery)
	autosync := time.NewTicker(k.opts.AutosyncEvery)

	go func() {
		defer heartbeat.Stop()
		defer autosave.Stop()
		defer autosync.Stop()

		for {
			select {
			case <-heartbeat.C:
				k.Soul.Update(0, 0, k.opts.HeartbeatEvery.Minutes())
			case <-autosave.C:
				if err := k.Save(); err != nil {
					log.Printf("keeper: autosave: %v", err)
				}
			case <-autosync.C:
				if !k.Cloud.Configured() || !k.Cloud.TokenValid() {
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := k.SyncNow(ctx); err != nil {
					log.Printf("keeper: autosync: %v", err)
				}
				cancel()
			case <-k.stopCh:
				return
			}
		}
	}()
}

// Stop halts the life loop and saves one last time.
func (k *Keeper) Stop() {
	close(k.stopCh)
	if err := k.Save(); err != nil {
		log.Printf("keeper: final save: %v", err)
	}
}

// Save writes the soul through the persistence chain.
func (k *Keeper) Save() error {
	return k.Chain.Save(persist.Record{
		Snapshot: k.Soul.Snapshot(),
		Firmware: k.opts.Firmware,
	})
}

// Reset returns the soul to newborn defaults and saves. The reset
// happens in place under the soul's own lock, so the heartbeat loop
// and concurrent handlers never see a half-swapped soul. The offline
// queue is dropped with it. There is no undo.
func (k *Keeper) Reset() error {
	old := k.Soul.E()
	k.Soul.Reset()
	k.Queue.Clear()
	log.Printf("keeper: factory reset, E %.2f -> %.2f", old, k.Soul.E())
	return k.Save()
}

// AgentName returns the active persona: the config override when set,
// otherwise whichever the soul has chosen.
func (k *Keeper) AgentName() string {
	if k.opts.Agent != "" {
		return k.opts.Agent
	}
	return personas[int(k.Soul.Persona())%len(personas)]
}

// Personas returns the selectable roster, preferring the cloud's list.
func (k *Keeper) Personas(ctx context.Context) []string {
	if k.Cloud.Configured() {
		list, err := k.Cloud.ListPersonas(ctx)
		if err == nil && len(list) > 0 {
			return list
		}
		if err != nil {
			log.Printf("keeper: personas: %v", err)
		}
	}
	return personas[:]
}

// ChoosePersona pins the soul to the named persona from the local
// roster and saves the choice.
func (k *Keeper) ChoosePersona(name string) error {
	for i, p := range personas {
		if strings.EqualFold(p, name) {
			k.Soul.SetPersona(uint8(i))
			if err := k.Save(); err != nil {
				log.Printf("keeper: save persona: %v", err)
			}
			return nil
		}
	}
	return fmt.Errorf("unknown persona %q", name)
}

// recordEvent logs a care event; storage trouble never blocks a touch.
func (k *Keeper) recordEvent(kind string, intensity, before float64) {
	if k.DB == nil {
		return
	}
	ev := &store.CareEvent{
		Kind:      kind,
		Intensity: intensity,
		EBefore:   before,
		EAfter:    k.Soul.E(),
		State:     k.Soul.State().String(),
	}
	if err := k.DB.RecordCare(ev); err != nil {
		log.Printf("keeper: record %s: %v", kind, err)
	}
}

// logChat appends an exchange to the transcript log.
func (k *Keeper) logChat(agent, message, response, expression string, wasOffline bool) {
	if k.DB == nil {
		return
	}
	entry := &store.ChatEntry{
		Agent:      agent,
		Message:    message,
		Response:   response,
		E:          k.Soul.E(),
		State:      k.Soul.State().String(),
		Expression: expression,
		Offline:    wasOffline,
	}
	if err := k.DB.LogChat(entry); err != nil {
		log.Printf("keeper: log chat: %v", err)
	}
}
