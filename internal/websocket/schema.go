package websocket

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventTick     Event = "tick"
	EventFinished Event = "finished"
	EventError    Event = "error"
)

// StateResponse carries the full session snapshot, sent once right after the
// upgrade so a reconnecting client can re-render.
type StateResponse struct {
	Event    Event       `json:"event"`
	Snapshot interface{} `json:"snapshot"`
}

// TickResponse is pushed once per second while the session countdown runs.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// FinishedResponse announces the terminal state with the graded result.
type FinishedResponse struct {
	Event  Event       `json:"event"`
	Result interface{} `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
