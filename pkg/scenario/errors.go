package scenario

import "fmt"

// TypeError reports an operation applied to values of incompatible kinds.
type TypeError struct {
	Op    string
	Left  ValueKind
	Right ValueKind
}

func (e *TypeError) Error() string {
	if e.Right == "" {
		return fmt.Sprintf("type error: cannot %s %s value", e.Op, e.Left)
	}
	return fmt.Sprintf("type error: cannot %s %s and %s", e.Op, e.Left, e.Right)
}
