package soul

import (
	"math"
	"time"
)

// Traits are slow-moving personality dimensions shaped by how the
// soul is treated. They color prompts and display, but carry no
// authority over E itself.
type Traits struct {
	Curiosity   float64
	Playfulness float64
	Wisdom      float64
}

// evolveTraits nudges personality per integration step. Caller holds mu.
//   - curiosity grows while young (E < 5) and actively cared for
//   - playfulness grows once established (E >= 5)
//   - wisdom tracks shared lifetime, 1% per day together
func (s *Soul) evolveTraits(care, dt float64) {
	if s.e < 5 && care > 0 {
		s.curiosity = math.Min(1.0, s.curiosity+0.001*dt)
	}
	if s.e >= 5 {
		s.playfulness = math.Min(1.0, s.playfulness+0.0005*dt)
	}
	s.wisdom = math.Min(1.0, s.daysTogether()*0.01)
}

// daysTogether is the age of the bond in fractional days. Caller holds mu.
func (s *Soul) daysTogether() float64 {
	if s.birth.IsZero() {
		return 0
	}
	return time.Since(s.birth).Hours() / 24
}

// Traits returns a copy of the current personality.
func (s *Soul) Traits() Traits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Traits{
		Curiosity:   s.curiosity,
		Playfulness: s.playfulness,
		Wisdom:      s.wisdom,
	}
}

// DaysTogether returns the age of the bond in fractional days.
func (s *Soul) DaysTogether() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daysTogether()
}

// Interactions returns the lifetime count of care interactions.
func (s *Soul) Interactions() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactions
}

// TotalCare returns the lifetime sum of applied care.
func (s *Soul) TotalCare() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCare
}

// MemorySalience scales how strongly a moment should be remembered.
// Superlinear in E: a loved companion remembers harder.
func (s *Soul) MemorySalience() float64 {
	return math.Pow(s.E(), 1.8)
}

// Creativity scales generation temperature, 0.5 at birth up to 2.0.
func (s *Soul) Creativity() float64 {
	return math.Min(2.0, 0.5+s.E()/10)
}

// TokenBudgetScale sizes reply budgets by state: flourishing and above
// earn half again the budget, a protecting soul conserves.
func (s *Soul) TokenBudgetScale() float64 {
	switch st := s.State(); {
	case st >= StateFlourishing:
		return 1.5
	case st == StateProtecting:
		return 0.5
	default:
		return 1.0
	}
}
