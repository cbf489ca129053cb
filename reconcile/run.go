package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/tagsonomy/catalog"
)

// Item is one unit of batch work: a securable and its desired labels. Nil
// labels clear the securable's owned tags.
type Item struct {
	Securable catalog.Securable
	Labels    []string
}

// Report is the whole-run result: one outcome per item, in item order.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Outcomes []Outcome
}

// Counts returns the number of outcomes per status.
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed reports whether any securable's outcome failed.
func (r *Report) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return true
		}
	}
	return false
}

// Run reconciles every item through a bounded worker pool. Each securable's
// fetch-diff-apply sequence runs on a single worker, so per-securable
// atomicity holds; there is no shared state and no abort flag, so one
// failure never cancels the others. Cancellation is honored between
// securables: items not yet started when ctx is done are recorded as failed
// with the context error.
func (r *Reconciler) Run(ctx context.Context, items []Item, concurrency int) *Report {
	if concurrency < 1 {
		concurrency = 1
	}

	report := &Report{
		RunID:    uuid.New().String(),
		Started:  time.Now(),
		Outcomes: make([]Outcome, len(items)),
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			report.Outcomes[i] = Outcome{
				Securable: item.Securable,
				Status:    StatusFailed,
				Err:       err,
			}
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Outcomes[i] = r.Reconcile(ctx, item.Securable, item.Labels)
		}(i, item)
	}

	wg.Wait()
	report.Duration = time.Since(report.Started)
	return report
}
