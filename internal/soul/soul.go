// Package soul implements the affective core: a single emotional energy
// value E shaped by care and damage over time.
//
// Growth law:
//   - dE = beta(E) * (care - damage) * E * dt, with beta(E) = 0.008 * (1 + E/10)
//   - E is clamped to [floor, 100]; the floor only ever rises
//   - floor ratchet: while E sits above the floor, the floor creeps up
//     by (E - floor) * 0.0001 per minute, never past E
//   - sustained care compounds (beta grows with E); sustained neglect
//     drags E down but can never take it below the earned floor
//
// All mutation goes through Update. Wrappers (ApplyCare, ApplyDamage,
// ApplyNeglect, ProcessIdleTime) only choose the care/damage/dt triple.
package soul

import (
	"sync"
	"time"
)

const (
	betaBase = 0.008
	maxE     = 100.0

	// floorRate is the per-minute ratchet factor (device tuning).
	floorRate = 0.0001

	// maxStepMinutes bounds a single integration step. Idle processing
	// can hand in multi-hour gaps; the care/damage side of the call
	// still lands in full, only the time term is clamped.
	maxStepMinutes = 60.0

	initialE         = 1.0
	initialCuriosity = 0.1
	initialPlayful   = 0.1
)

// Soul holds the live affective state. Safe for concurrent use; all
// reads return copies, and no I/O happens under the lock.
type Soul struct {
	mu sync.Mutex

	e     float64
	floor float64
	peak  float64

	interactions uint32
	totalCare    float64
	birth        time.Time
	lastCare     time.Time
	lastSync     time.Time

	persona     uint8
	curiosity   float64
	playfulness float64
	wisdom      float64

	totalChats uint32
	totalSyncs uint32
}

// Snapshot is a point-in-time copy of everything worth persisting.
type Snapshot struct {
	E            float64
	Floor        float64
	Peak         float64
	Interactions uint32
	TotalCare    float64
	BirthTime    time.Time
	LastCareTime time.Time
	LastSyncTime time.Time
	SavedAt      time.Time
	Persona      uint8
	Curiosity    float64
	Playfulness  float64
	Wisdom       float64
	TotalChats   uint32
	TotalSyncs   uint32
}

// New creates a newborn soul with factory defaults.
func New() *Soul {
	now := time.Now()
	return &Soul{
		e:           initialE,
		floor:       initialE,
		peak:        initialE,
		birth:       now,
		lastCare:    now,
		curiosity:   initialCuriosity,
		playfulness: initialPlayful,
	}
}

// Restore rebuilds a soul from a persisted snapshot.
func Restore(snap Snapshot) *Soul {
	s := &Soul{}
	s.apply(snap)
	return s
}

// Adopt replaces the soul's state with a persisted snapshot, in place.
// Holders of the *Soul see the new life; no pointer ever swaps out
// from under a concurrent reader.
func (s *Soul) Adopt(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(snap)
}

// Reset returns the soul to newborn defaults, in place. Everything
// earned is gone, the floor included.
func (s *Soul) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.e = initialE
	s.floor = initialE
	s.peak = initialE
	s.interactions = 0
	s.totalCare = 0
	s.birth = now
	s.lastCare = now
	s.lastSync = time.Time{}
	s.persona = 0
	s.curiosity = initialCuriosity
	s.playfulness = initialPlayful
	s.wisdom = 0
	s.totalChats = 0
	s.totalSyncs = 0
}

// apply loads a snapshot into the struct. Caller holds mu (or owns a
// soul nothing else has seen yet).
func (s *Soul) apply(snap Snapshot) {
	s.e = snap.E
	s.floor = snap.Floor
	s.peak = snap.Peak
	s.interactions = snap.Interactions
	s.totalCare = snap.TotalCare
	s.birth = snap.BirthTime
	s.lastCare = snap.LastCareTime
	s.lastSync = snap.LastSyncTime
	s.persona = snap.Persona
	s.curiosity = snap.Curiosity
	s.playfulness = snap.Playfulness
	s.wisdom = snap.Wisdom
	s.totalChats = snap.TotalChats
	s.totalSyncs = snap.TotalSyncs

	// Repair out-of-range values rather than reject: the record already
	// passed its integrity checks. The floor clamps first so a wild
	// floor cannot drag E past the ceiling through the e < floor repair.
	if s.floor < 0 {
		s.floor = initialE
	}
	if s.floor > maxE {
		s.floor = maxE
	}
	if s.e < 0 {
		s.e = initialE
	}
	if s.e > maxE {
		s.e = maxE
	}
	if s.e < s.floor {
		s.e = s.floor
	}
	if s.peak < s.e {
		s.peak = s.e
	}
	if s.birth.IsZero() {
		s.birth = time.Now()
	}
}

// Update advances the growth law by dt minutes. dt <= 0 is a full
// no-op: no energy change, no care accounting. dt above maxStepMinutes
// is clamped, not rejected, so the event itself is never lost.
func (s *Soul) Update(care, damage, dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(care, damage, dt)
}

// update is the core integration step. Caller holds mu.
func (s *Soul) update(care, damage, dt float64) {
	if dt <= 0 {
		return
	}
	if dt > maxStepMinutes {
		dt = maxStepMinutes
	}

	beta := betaBase * (1 + s.e/10)
	s.e += beta * (care - damage) * s.e * dt

	if s.e < s.floor {
		s.e = s.floor
	}
	if s.e > maxE {
		s.e = maxE
	}

	// Floor ratchet: rises toward E, never above it, never back down.
	if s.e > s.floor {
		s.floor += (s.e - s.floor) * floorRate * dt
		if s.floor > s.e {
			s.floor = s.e
		}
	}

	if s.e > s.peak {
		s.peak = s.e
	}

	s.evolveTraits(care, dt)

	if care > 0 {
		s.totalCare += care
		s.lastCare = time.Now()
	}
}

// ApplyCare registers a positive interaction of the given intensity.
func (s *Soul) ApplyCare(intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions++
	s.update(intensity, 0, 1.0)
}

// ApplyDamage registers a harmful interaction of the given intensity.
func (s *Soul) ApplyDamage(intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(0, intensity, 1.0)
}

// ApplyNeglect converts minutes of active neglect into damage at
// 0.1 per hour, integrated over the whole gap.
func (s *Soul) ApplyNeglect(minutes float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(0, minutes/60.0*0.1, minutes)
}

// ProcessIdleTime handles the gap since the last save, softer than
// neglect (0.05 per hour, capped at 8 hours). Gaps of a minute or
// less are ignored.
func (s *Soul) ProcessIdleTime(minutes float64) {
	if minutes <= 1 {
		return
	}
	if minutes > 480 {
		minutes = 480
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(0, minutes/60.0*0.05, minutes)
}

// RecordChat bumps the lifetime chat counter.
func (s *Soul) RecordChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalChats++
}

// RecordSync bumps the lifetime sync counter and stamps the time.
func (s *Soul) RecordSync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSyncs++
	s.lastSync = time.Now()
}

// Persona returns the selected persona index.
func (s *Soul) Persona() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// SetPersona selects a persona by roster index.
func (s *Soul) SetPersona(idx uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = idx
}

// E returns the current emotional energy.
func (s *Soul) E() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e
}

// Floor returns the earned floor E can never drop below.
func (s *Soul) Floor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.floor
}

// Peak returns the highest E ever reached.
func (s *Soul) Peak() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// State classifies the current energy.
func (s *Soul) State() State {
	return StateForE(s.E())
}

// Expression returns the face hint for the current state.
func (s *Soul) Expression() string {
	return s.State().Expression()
}

// Snapshot copies the full persistable state, stamped with the
// moment it was taken.
func (s *Soul) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		E:            s.e,
		Floor:        s.floor,
		Peak:         s.peak,
		Interactions: s.interactions,
		TotalCare:    s.totalCare,
		BirthTime:    s.birth,
		LastCareTime: s.lastCare,
		LastSyncTime: s.lastSync,
		SavedAt:      time.Now(),
		Persona:      s.persona,
		Curiosity:    s.curiosity,
		Playfulness:  s.playfulness,
		Wisdom:       s.wisdom,
		TotalChats:   s.totalChats,
		TotalSyncs:   s.totalSyncs,
	}
}
