package inventory

// Status is the result of loading one chunk.
type Status int

const (
	OutcomeLoaded Status = iota
	OutcomeFailed
	OutcomeDuplicate
)

func (s Status) String() string {
	switch s {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeFailed:
		return "failed"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Outcome is the typed result for the chunk at Index. AssemblyID is empty when decoding failed.
type Outcome struct {
	Index      int
	Status     Status
	AssemblyID string
	Err        error
}

// Report aggregates per-chunk outcomes in file order.
type Report struct {
	Outcomes  []Outcome
	TailBytes int
}

// Count returns the number of outcomes with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Problems returns the failed and duplicate outcomes.
func (r *Report) Problems() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status != OutcomeLoaded {
			out = append(out, o)
		}
	}
	return out
}
