package mutate

import "fmt"

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// InvariantError reports a state the gesture layer should never have produced. The
// reducer refuses to advance; callers must surface it instead of continuing.
type InvariantError struct {
	Action ActionType
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Action, e.Reason)
}

func invariantf(a ActionType, format string, args ...any) error {
	return &InvariantError{Action: a, Reason: fmt.Sprintf(format, args...)}
}
