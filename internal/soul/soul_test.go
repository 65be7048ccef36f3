package soul

import (
	"math"
	"testing"
	"time"
)

func TestUpdateCareGrows(t *testing.T) {
	s := New()

	prev := s.E()
	for i := 0; i < 3; i++ {
		s.Update(1.5, 0, 1.0)
		cur := s.E()
		if cur <= prev {
			t.Fatalf("step %d: E = %f, want > %f", i, cur, prev)
		}
		prev = cur
	}
}

func TestUpdateDamageRespectsFloor(t *testing.T) {
	s := New()

	s.Update(0, 0.5, 1.0)
	if s.E() != s.Floor() {
		t.Errorf("E = %f, want clamped to floor %f", s.E(), s.Floor())
	}
	if s.E() < 1.0 {
		t.Errorf("E = %f, dropped below the initial floor", s.E())
	}
}

func TestUpdateInvariants(t *testing.T) {
	s := New()

	// A rough life: bursts of care, damage, and neglect in arbitrary order.
	steps := []struct {
		care, damage, dt float64
	}{
		{1.5, 0, 1}, {0, 0.5, 1}, {2.0, 0, 5}, {0, 0, 60},
		{0, 1.0, 30}, {3.0, 0, 1}, {0, 0.2, 10}, {1.0, 1.0, 1},
		{5.0, 0, 15}, {0, 2.0, 45},
	}

	prevFloor := s.Floor()
	for i, st := range steps {
		s.Update(st.care, st.damage, st.dt)

		e, floor, peak := s.E(), s.Floor(), s.Peak()
		if floor < prevFloor {
			t.Fatalf("step %d: floor %f < previous %f", i, floor, prevFloor)
		}
		if e < floor {
			t.Fatalf("step %d: E %f < floor %f", i, e, floor)
		}
		if e > 100.0 {
			t.Fatalf("step %d: E %f above ceiling", i, e)
		}
		if peak < e {
			t.Fatalf("step %d: peak %f < E %f", i, peak, e)
		}
		prevFloor = floor
	}
}

func TestUpdateNoOpOnBadDT(t *testing.T) {
	for _, dt := range []float64{0, -1, -300} {
		s := New()
		before := s.Snapshot()

		s.Update(2.0, 0, dt)

		after := s.Snapshot()
		if after.E != before.E {
			t.Errorf("dt=%f: E changed %f -> %f", dt, before.E, after.E)
		}
		if after.TotalCare != before.TotalCare {
			t.Errorf("dt=%f: care was accounted on a no-op", dt)
		}
		if !after.LastCareTime.Equal(before.LastCareTime) {
			t.Errorf("dt=%f: lastCare moved on a no-op", dt)
		}
	}
}

func TestUpdateClampsStep(t *testing.T) {
	a := New()
	b := New()

	a.Update(1.0, 0, 60)
	b.Update(1.0, 0, 1e6)

	if a.E() != b.E() {
		t.Errorf("E diverged: %f vs %f", a.E(), b.E())
	}
	if a.Floor() != b.Floor() {
		t.Errorf("floor diverged: %f vs %f", a.Floor(), b.Floor())
	}
}

func TestUpdateCeiling(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Update(100, 0, 1)
	}
	if s.E() != 100.0 {
		t.Errorf("E = %f, want pinned at 100", s.E())
	}
	if s.Peak() != 100.0 {
		t.Errorf("peak = %f, want 100", s.Peak())
	}
	if s.Floor() > s.E() {
		t.Errorf("floor %f above E %f", s.Floor(), s.E())
	}
}

func TestApplyCare(t *testing.T) {
	s := New()

	s.ApplyCare(1.5)

	if got := s.Interactions(); got != 1 {
		t.Errorf("interactions = %d, want 1", got)
	}
	if got := s.TotalCare(); got != 1.5 {
		t.Errorf("totalCare = %f, want 1.5", got)
	}
	if s.E() <= 1.0 {
		t.Errorf("E = %f, want growth from care", s.E())
	}
}

func TestApplyDamage(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.ApplyCare(2.0)
	}

	before := s.E()
	s.ApplyDamage(1.0)

	if s.E() >= before {
		t.Errorf("E = %f, want drop from %f", s.E(), before)
	}
	if s.E() < s.Floor() {
		t.Errorf("E = %f below floor %f", s.E(), s.Floor())
	}
	if got := s.Interactions(); got != 10 {
		t.Errorf("interactions = %d, damage should not count as one", got)
	}
}

func TestApplyNeglect(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.ApplyCare(2.0)
	}

	before := s.E()
	s.ApplyNeglect(300)

	if s.E() >= before {
		t.Errorf("E = %f, want drop from %f after 5h neglect", s.E(), before)
	}
	if s.E() < s.Floor() {
		t.Errorf("E = %f below floor %f", s.E(), s.Floor())
	}
}

func TestProcessIdleTime(t *testing.T) {
	// Short gaps are ignored entirely.
	s := New()
	before := s.Snapshot()
	s.ProcessIdleTime(0.5)
	if s.E() != before.E {
		t.Errorf("E changed on a sub-minute gap")
	}

	// Gaps beyond 8 hours cost the same as 8 hours.
	a, b := grown(t), grown(t)
	a.ProcessIdleTime(480)
	b.ProcessIdleTime(100000)
	if a.E() != b.E() {
		t.Errorf("idle cap: E %f vs %f", a.E(), b.E())
	}

	// Idle is softer than the same stretch of neglect.
	c, d := grown(t), grown(t)
	c.ProcessIdleTime(240)
	d.ApplyNeglect(240)
	if c.E() <= d.E() {
		t.Errorf("idle E %f should stay above neglect E %f", c.E(), d.E())
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	s.ApplyCare(1.5)
	s.ApplyCare(0.5)
	s.SetPersona(2)
	s.RecordChat()
	s.RecordSync()

	snap := s.Snapshot()
	if snap.SavedAt.IsZero() {
		t.Fatal("SavedAt not stamped")
	}

	r := Restore(snap)
	if r.E() != snap.E {
		t.Errorf("E = %f, want %f", r.E(), snap.E)
	}
	if r.Floor() != snap.Floor {
		t.Errorf("floor = %f, want %f", r.Floor(), snap.Floor)
	}
	if r.Interactions() != 2 {
		t.Errorf("interactions = %d, want 2", r.Interactions())
	}
	if r.Persona() != 2 {
		t.Errorf("persona = %d, want 2", r.Persona())
	}

	rs := r.Snapshot()
	if rs.TotalChats != 1 || rs.TotalSyncs != 1 {
		t.Errorf("counters = %d/%d, want 1/1", rs.TotalChats, rs.TotalSyncs)
	}
	if !rs.BirthTime.Equal(snap.BirthTime) {
		t.Errorf("birth = %v, want %v", rs.BirthTime, snap.BirthTime)
	}
}

func TestRestoreRepairsBadValues(t *testing.T) {
	r := Restore(Snapshot{E: -5, Floor: -1, Peak: 0, BirthTime: time.Now()})
	if r.E() < r.Floor() {
		t.Errorf("E %f below floor %f after repair", r.E(), r.Floor())
	}
	if r.E() <= 0 {
		t.Errorf("E = %f, want positive after repair", r.E())
	}
	if r.Peak() < r.E() {
		t.Errorf("peak %f below E %f after repair", r.Peak(), r.E())
	}

	r = Restore(Snapshot{E: 500, Floor: 1, Peak: 500, BirthTime: time.Now()})
	if r.E() > 100 {
		t.Errorf("E = %f, want clamped to 100", r.E())
	}
}

func TestRestoreClampsWildFloor(t *testing.T) {
	// A floor above the ceiling must come down before the E-below-floor
	// repair runs, or it drags E past the ceiling with it.
	r := Restore(Snapshot{E: 50, Floor: 500, Peak: 50, BirthTime: time.Now()})
	if r.Floor() > 100 {
		t.Errorf("floor = %f, want clamped to 100", r.Floor())
	}
	if r.E() > 100 {
		t.Errorf("E = %f, want <= 100", r.E())
	}
	if r.E() < r.Floor() {
		t.Errorf("E %f below floor %f after repair", r.E(), r.Floor())
	}

	// The invariant must survive the first integration step too.
	r.Update(1.0, 0, 1)
	if r.Floor() > r.E() || r.E() > 100 {
		t.Errorf("after update: E=%f floor=%f, want floor <= E <= 100", r.E(), r.Floor())
	}

	r = Restore(Snapshot{E: 2, Floor: -3, Peak: 2, BirthTime: time.Now()})
	if r.Floor() < 0 {
		t.Errorf("floor = %f, want repaired above 0", r.Floor())
	}
}

func TestAdoptReplacesInPlace(t *testing.T) {
	s := New()
	s.ApplyCare(1.5)

	donor := New()
	donor.ApplyCare(1.5)
	donor.ApplyCare(1.5)
	donor.SetPersona(3)
	snap := donor.Snapshot()

	s.Adopt(snap)
	if s.E() != snap.E {
		t.Errorf("E = %f, want %f", s.E(), snap.E)
	}
	if s.Persona() != 3 {
		t.Errorf("persona = %d, want 3", s.Persona())
	}
	if s.Interactions() != snap.Interactions {
		t.Errorf("interactions = %d, want %d", s.Interactions(), snap.Interactions)
	}
}

func TestResetReturnsNewborn(t *testing.T) {
	s := New()
	s.ApplyCare(1.5)
	s.SetPersona(2)
	s.RecordChat()
	s.RecordSync()

	s.Reset()
	if s.E() != 1.0 || s.Floor() != 1.0 || s.Peak() != 1.0 {
		t.Errorf("E/floor/peak = %f/%f/%f, want 1.0 each", s.E(), s.Floor(), s.Peak())
	}
	if s.Interactions() != 0 {
		t.Errorf("interactions = %d, want 0", s.Interactions())
	}
	if s.Persona() != 0 {
		t.Errorf("persona = %d, want 0", s.Persona())
	}
	snap := s.Snapshot()
	if snap.TotalChats != 0 || snap.TotalSyncs != 0 || snap.TotalCare != 0 {
		t.Errorf("counters = %d/%d/%f, want zeroed", snap.TotalChats, snap.TotalSyncs, snap.TotalCare)
	}
	if s.Traits().Wisdom != 0 {
		t.Errorf("wisdom = %f, want 0", s.Traits().Wisdom)
	}
}

func TestTraitsEvolve(t *testing.T) {
	// Curiosity grows while young and cared for.
	s := New()
	s.ApplyCare(1.0)
	if got := s.Traits().Curiosity; got <= 0.1 {
		t.Errorf("curiosity = %f, want growth above 0.1", got)
	}

	// Playfulness grows once E is established.
	e := Restore(Snapshot{E: 6, Floor: 1, Peak: 6, BirthTime: time.Now()})
	e.Update(0, 0, 10)
	if got := e.Traits().Playfulness; math.Abs(got-0.005) > 1e-9 {
		t.Errorf("playfulness = %f, want 0.005", got)
	}

	// Wisdom tracks days together, 1% per day.
	w := Restore(Snapshot{E: 1, Floor: 1, Peak: 1, BirthTime: time.Now().Add(-50 * 24 * time.Hour)})
	w.Update(0, 0, 1)
	if got := w.Traits().Wisdom; math.Abs(got-0.5) > 0.001 {
		t.Errorf("wisdom = %f, want ~0.5 after 50 days", got)
	}
}

func TestDerivedValues(t *testing.T) {
	s := New()
	if got := s.MemorySalience(); got != 1.0 {
		t.Errorf("salience = %f, want 1.0 at E=1", got)
	}
	if got := s.Creativity(); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("creativity = %f, want 0.6 at E=1", got)
	}

	big := Restore(Snapshot{E: 50, Floor: 1, Peak: 50, BirthTime: time.Now()})
	if got := big.Creativity(); got != 2.0 {
		t.Errorf("creativity = %f, want capped at 2.0", got)
	}
}

func TestTokenBudgetScale(t *testing.T) {
	tests := []struct {
		e    float64
		want float64
	}{
		{0.3, 0.5},  // protecting conserves
		{1.5, 1.0},  // tender is baseline
		{6.0, 1.5},  // flourishing earns more
		{50.0, 1.5}, // transcendent keeps the bonus
	}
	for _, tt := range tests {
		s := Restore(Snapshot{E: tt.e, Floor: 0.1, Peak: tt.e, BirthTime: time.Now()})
		if got := s.TokenBudgetScale(); got != tt.want {
			t.Errorf("E=%f: scale = %f, want %f", tt.e, got, tt.want)
		}
	}
}

// grown is a helper that raises a fresh soul to a comfortable E so
// drops are visible against the floor.
func grown(t *testing.T) *Soul {
	t.Helper()
	s := New()
	for i := 0; i < 10; i++ {
		s.ApplyCare(2.0)
	}
	return s
}
