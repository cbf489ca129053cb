package reconcile

import (
	"errors"
	"fmt"

	"github.com/c360studio/tagsonomy/catalog"
)

// Status is the discriminant of a per-securable reconciliation outcome.
type Status string

const (
	// StatusApplied means the add/remove delta was applied in full.
	StatusApplied Status = "applied"

	// StatusUnchanged means the desired and owned tag sets already matched;
	// no remote mutation was issued.
	StatusUnchanged Status = "unchanged"

	// StatusBudgetExceeded means the projected tag count met or exceeded the
	// ceiling; the securable was skipped without any mutation.
	StatusBudgetExceeded Status = "budget_exceeded"

	// StatusFailed means a remote call failed; calls issued before the
	// failure stand, and a re-run recomputes the then-smaller delta.
	StatusFailed Status = "failed"
)

// ErrBudgetExceeded is the sentinel wrapped into budget-exceeded outcomes.
var ErrBudgetExceeded = errors.New("projected tag count exceeds ceiling")

// RemoteError wraps a failed remote tagging call with the securable and
// operation it belonged to.
type RemoteError struct {
	Op        string
	Key       string
	Securable catalog.Securable
	Err       error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q on %s: %v", e.Op, e.Key, e.Securable, e.Err)
	}
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Securable, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RemoteError) Unwrap() error { return e.Err }

// Outcome is the result of reconciling one securable. Added and Removed
// list the tag keys whose create/delete calls succeeded, so a partially
// applied failure still reports what changed.
type Outcome struct {
	Securable catalog.Securable
	Status    Status
	Added     []string
	Removed   []string
	Err       error
}

// Failed reports whether the outcome needs operator attention.
func (o Outcome) Failed() bool {
	return o.Status == StatusBudgetExceeded || o.Status == StatusFailed
}
