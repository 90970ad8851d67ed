package simulation

// Outcome is what the win detector concluded after a tick
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeLevelComplete
	OutcomeGameComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLevelComplete:
		return "level_complete"
	case OutcomeGameComplete:
		return "game_complete"
	default:
		return "none"
	}
}

// DetectWin reports completion once a single particle remains.
// The last level ends the game instead of completing a level.
func DetectWin(count, level int) Outcome {
	if count != 1 {
		return OutcomeNone
	}
	if level >= MaxLevel {
		return OutcomeGameComplete
	}
	return OutcomeLevelComplete
}
