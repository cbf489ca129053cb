// Package reconcile implements the tag reconciliation engine: diffing a
// securable's desired tag set against its current remote tags and applying
// the minimal add/remove delta, bounded by a per-object tag budget and
// restricted to tags this system owns.
//
// Ownership is determined solely by the configured key prefix. A tag whose
// key does not start with the prefix was created by another actor and is
// never a candidate for deletion, whatever the desired set says.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/metric"
)

// Defaults for the two externally tunable parameters.
const (
	// DefaultPrefix marks tags owned by this system.
	DefaultPrefix = "tx_"

	// DefaultMaxTags is the per-securable tag-count ceiling.
	DefaultMaxTags = 50
)

// Reconciler applies derived tag sets to remote securables. Construct with
// NewReconciler; the zero value is not usable.
type Reconciler struct {
	api     catalog.TagAPI
	prefix  string
	maxTags int
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPrefix sets the tag-key ownership prefix.
func WithPrefix(prefix string) Option {
	return func(r *Reconciler) { r.prefix = prefix }
}

// WithMaxTags sets the per-securable tag-count ceiling.
func WithMaxTags(n int) Option {
	return func(r *Reconciler) { r.maxTags = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithMetrics sets the metrics sink. Nil disables instrumentation.
func WithMetrics(m *metric.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// NewReconciler creates a reconciler over the given tagging API.
func NewReconciler(api catalog.TagAPI, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:     api,
		prefix:  DefaultPrefix,
		maxTags: DefaultMaxTags,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the configured ownership prefix.
func (r *Reconciler) Prefix() string { return r.prefix }

// Reconcile brings the securable's owned tags in line with the desired
// labels. The sequence per securable is fetch, diff, budget check, apply;
// the budget check is a precondition, so a securable that would exceed the
// ceiling is left exactly as found.
func (r *Reconciler) Reconcile(ctx context.Context, sec catalog.Securable, desired []string) Outcome {
	newTags := make(map[string]struct{}, len(desired))
	for _, label := range desired {
		newTags[r.prefix+label] = struct{}{}
	}

	start := time.Now()
	current, err := r.api.ListTags(ctx, sec)
	r.metrics.RemoteCall("list", time.Since(start))
	if err != nil {
		return r.fail(sec, nil, nil, &RemoteError{Op: "list tags", Securable: sec, Err: err})
	}

	owned := make(map[string]struct{})
	for key := range current {
		if strings.HasPrefix(key, r.prefix) {
			owned[key] = struct{}{}
		}
	}

	toAdd := sortedDiff(newTags, owned)
	toDelete := sortedDiff(owned, newTags)

	projected := len(current) + len(toAdd) - len(toDelete)
	if projected >= r.maxTags {
		outcome := Outcome{
			Securable: sec,
			Status:    StatusBudgetExceeded,
			Err: fmt.Errorf("%w: %s carries %d tags, projected %d with ceiling %d",
				ErrBudgetExceeded, sec, len(current), projected, r.maxTags),
		}
		r.metrics.Outcome(string(StatusBudgetExceeded))
		return outcome
	}

	if len(toAdd) == 0 && len(toDelete) == 0 {
		r.metrics.Outcome(string(StatusUnchanged))
		return Outcome{Securable: sec, Status: StatusUnchanged}
	}

	// Deletes first: a renamed concept frees budget before its replacement
	// tag is created.
	var removed []string
	if len(toDelete) > 0 {
		r.logger.Info("Removing tags", "securable", sec.String(), "tags", toDelete)
	}
	for _, key := range toDelete {
		start := time.Now()
		err := r.api.DeleteTag(ctx, sec, key)
		r.metrics.RemoteCall("delete", time.Since(start))
		if err != nil {
			return r.fail(sec, nil, removed, &RemoteError{Op: "delete tag", Key: key, Securable: sec, Err: err})
		}
		removed = append(removed, key)
	}

	var added []string
	if len(toAdd) > 0 {
		r.logger.Info("Adding tags", "securable", sec.String(), "tags", toAdd)
	}
	for _, key := range toAdd {
		start := time.Now()
		err := r.api.CreateTag(ctx, sec, key, "")
		r.metrics.RemoteCall("create", time.Since(start))
		if err != nil {
			return r.fail(sec, added, removed, &RemoteError{Op: "create tag", Key: key, Securable: sec, Err: err})
		}
		added = append(added, key)
	}

	r.metrics.TagsAdded(len(added))
	r.metrics.TagsRemoved(len(removed))
	r.metrics.Outcome(string(StatusApplied))
	return Outcome{Securable: sec, Status: StatusApplied, Added: added, Removed: removed}
}

// Clear removes every owned tag from the securable without consulting the
// ontology. It is reconciliation toward the empty desired set.
func (r *Reconciler) Clear(ctx context.Context, sec catalog.Securable) Outcome {
	return r.Reconcile(ctx, sec, nil)
}

// fail records the partial progress alongside the cause.
func (r *Reconciler) fail(sec catalog.Securable, added, removed []string, err *RemoteError) Outcome {
	r.logger.Error("Reconciliation failed", "securable", sec.String(), "error", err)
	r.metrics.TagsAdded(len(added))
	r.metrics.TagsRemoved(len(removed))
	r.metrics.Outcome(string(StatusFailed))
	return Outcome{Securable: sec, Status: StatusFailed, Added: added, Removed: removed, Err: err}
}

// sortedDiff returns the keys of a not present in b, sorted so the apply
// order is deterministic.
func sortedDiff(a, b map[string]struct{}) []string {
	var out []string
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
