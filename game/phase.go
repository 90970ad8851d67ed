package game

// Phase is the session's position in the game state machine
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlaying
	PhasePaused
	PhaseWin      // Level cleared, waiting to advance
	PhaseComplete // Final level cleared, only Reset leaves
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseWin:
		return "win"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Running reports whether the tick pipeline advances in this phase
func (p Phase) Running() bool {
	return p == PhasePlaying
}

// Visible reports whether the host should draw the current level
func (p Phase) Visible() bool {
	return p != PhaseMenu
}

// MarshalText renders the phase name in snapshots
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
