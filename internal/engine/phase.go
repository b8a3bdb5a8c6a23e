package engine

// GamePhase represents the current phase of the game state machine.
type GamePhase int

const (
	PhaseSetup    GamePhase = iota // board validated, players not seated
	PhasePlaying                   // accepting player actions
	PhaseGameOver                  // scores settled
)

var phaseNames = map[GamePhase]string{
	PhaseSetup:    "Setup",
	PhasePlaying:  "Playing",
	PhaseGameOver: "GameOver",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "Unknown"
}
