package loading

import "fmt"

// Phase is the orchestrator's coarse state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseAwaitingRetry
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseAwaitingRetry:
		return "awaiting-retry"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the orchestrator.
type State struct {
	Phase Phase
	// Level is the level being loaded or awaiting a retry decision.
	Level int
	// Percent is the last progress shown while loading.
	Percent int
	// Err is the failure awaiting a decision.
	Err error
}

// Decision is the player's answer to a failed load.
type Decision int

const (
	DecisionRetry Decision = iota + 1
	DecisionCancel
)

func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionCancel:
		return "cancel"
	default:
		return "none"
	}
}

func loadingMessage(level, percent int) string {
	return fmt.Sprintf("Loading level %d...\n%d%%", level, percent)
}

func resourcesMessage(percent int) string {
	return fmt.Sprintf("Loading resources...\n%d%%", percent)
}

func errorMessage(level int, err error) string {
	return fmt.Sprintf("Error loading level %d\n%v", level, err)
}
