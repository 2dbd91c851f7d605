package live

// State is the connection state of a Channel.
type State int

const (
	Connecting State = iota
	Open
	ClosedUnexpected
	ClosedIntentional
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case ClosedUnexpected:
		return "closed-unexpected"
	case ClosedIntentional:
		return "closed"
	default:
		return "unknown"
	}
}

// CounterMessage is one decoded frame of the counter endpoint.
type CounterMessage struct {
	Counter int `json:"counter"`
}
