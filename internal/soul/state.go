package soul

// State buckets the emotional energy E into the seven display states.
// Boundaries are exclusive: E must be strictly above a threshold to
// reach the state, so E = 0.5 still reads as PROTECT.
type State int

const (
	StateProtecting State = iota
	StateGuarded
	StateTender
	StateWarm
	StateFlourishing
	StateRadiant
	StateTranscendent
)

var stateNames = [...]string{
	"PROTECT",
	"GUARDED",
	"TENDER",
	"WARM",
	"FLOURISH",
	"RADIANT",
	"TRANSCEND",
}

// Expressions match the device's face set, one per state.
var stateExpressions = [...]string{
	"sleeping",
	"sad",
	"curious",
	"neutral",
	"happy",
	"excited",
	"love",
}

// StateForE classifies an energy value. Pure and stateless: the same E
// always maps to the same state, with no hysteresis between reads.
func StateForE(e float64) State {
	switch {
	case e > 30:
		return StateTranscendent
	case e > 12:
		return StateRadiant
	case e > 5:
		return StateFlourishing
	case e > 2:
		return StateWarm
	case e > 1:
		return StateTender
	case e > 0.5:
		return StateGuarded
	default:
		return StateProtecting
	}
}

// String returns the short display name used on screens and on the wire.
func (s State) String() string {
	if s < StateProtecting || s > StateTranscendent {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Expression returns the face hint shown for this state.
func (s State) Expression() string {
	if s < StateProtecting || s > StateTranscendent {
		return "neutral"
	}
	return stateExpressions[s]
}
