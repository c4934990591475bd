package bt

// NodeState is the outcome a node reports after a tick.
type NodeState int

const (
	NotStarted NodeState = iota
	Running
	Succeeded
	Failed
)

func (s NodeState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Invalid"
	}
}

// IsTerminal reports whether the state ends a pass. Running is the only
// non-terminal state a ticked node can report.
func (s NodeState) IsTerminal() bool {
	return s != Running
}

// MarshalText renders the state by name so snapshots and logs stay readable.
func (s NodeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
