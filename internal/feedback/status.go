package feedback

// Status is the state of a feedback run. StatusRunning is the only
// non-terminal state.
type Status int

const (
	StatusRunning Status = iota
	StatusSuccess
	StatusInsufficientResults
	StatusNoRelevant
	// StatusNoExpansion is reached when precision is below target but every
	// candidate term is already in the query.
	StatusNoExpansion
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusSuccess:
		return "SUCCESS"
	case StatusInsufficientResults:
		return "FAIL_INSUFFICIENT_RESULTS"
	case StatusNoRelevant:
		return "FAIL_NO_RELEVANT"
	case StatusNoExpansion:
		return "FAIL_NO_EXPANSION_POSSIBLE"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the run stops in this state.
func (s Status) Terminal() bool { return s != StatusRunning }

// Failed reports whether s is a terminal failure.
func (s Status) Failed() bool { return s.Terminal() && s != StatusSuccess }
