package session

// State is the interaction state of a session
type State int

const (
	StateIdle State = iota
	StateReady
	StateForecasting
	StatePresented
	StateWarning
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:        "idle",
	StateReady:       "ready",
	StateForecasting: "forecasting",
	StatePresented:   "presented",
	StateWarning:     "warning",
	StateFailed:      "failed",
}

func (s State) String() string {
	if name, exists := stateNames[s]; exists {
		return name
	}
	return "unknown"
}
