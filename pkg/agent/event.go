package agent

// EventKind tags the events an agent emits during a live session.
type EventKind int

const (
	// EventPartialText carries a chunk of the assistant's answer.
	EventPartialText EventKind = iota
	// EventTurnComplete marks the end of one assistant turn.
	EventTurnComplete
	// EventInterrupted signals the in-flight turn was cancelled by newer input.
	EventInterrupted
)

func (k EventKind) String() string {
	switch k {
	case EventPartialText:
		return "partial_text"
	case EventTurnComplete:
		return "turn_complete"
	case EventInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Event is one item on a session's event stream. Text is only set for
// EventPartialText.
type Event struct {
	Kind EventKind
	Text string
}
