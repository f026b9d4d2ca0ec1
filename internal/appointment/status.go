package appointment

// transitions is the full status adjacency. Completion requires the patient
// to have been called or taken in first; waiting jumps straight to completed
// are rejected. Terminal states admit nothing.
var transitions = map[Status][]Status{
	StatusWaiting:    {StatusCalled, StatusInProgress, StatusCancelled},
	StatusCalled:     {StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
