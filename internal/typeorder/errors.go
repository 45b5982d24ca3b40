package typeorder

import (
	"fmt"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// UntrackedError reports that a query touched a primitive the graph has
// never seen. Query entry points translate the internal signal into this
// error (or a graceful default, for join/meet/solve).
type UntrackedError struct {
	Annotation typesystem.Type
}

func (e *UntrackedError) Error() string {
	return fmt.Sprintf("type order: untracked type %s", e.Annotation)
}

// CyclicError reports that integrity checking found a cycle through the
// given annotation.
type CyclicError struct {
	Annotation typesystem.Type
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("type order: cycle through %s", e.Annotation)
}

// IncompleteError reports a structural hole found by integrity checking: a
// missing key, a missing backedge mirror, or an absent Top/Bottom.
type IncompleteError struct {
	Reason string
}

func (e *IncompleteError) Error() string {
	return "type order: incomplete graph: " + e.Reason
}

// InconsistentMROError reports that the C3 merge failed for a type.
type InconsistentMROError struct {
	Annotation typesystem.Type
}

func (e *InconsistentMROError) Error() string {
	return fmt.Sprintf("type order: inconsistent method resolution order for %s", e.Annotation)
}

// untrackedSignal is panicked by internal lookups and recovered at query
// entry points; it never escapes the package.
type untrackedSignal struct {
	annotation typesystem.Type
}

func raiseUntracked(annotation typesystem.Type) {
	panic(untrackedSignal{annotation: annotation})
}

// recoverUntracked converts an in-flight untracked signal into err, leaving
// any other panic alone. Use as: defer recoverUntracked(&err).
func recoverUntracked(err *error) {
	if r := recover(); r != nil {
		signal, ok := r.(untrackedSignal)
		if !ok {
			panic(r)
		}
		*err = &UntrackedError{Annotation: signal.annotation}
	}
}
