// Package publish emits sync run events to NATS so downstream consumers
// (dashboards, audit stores) can observe what the reconciler changed.
//
// Publishing is optional: a nil *Publisher skips every emit, so drivers
// without a configured NATS URL pass nil instead of guarding call sites.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/tagsonomy/reconcile"
)

// Subjects for run events.
const (
	SubjectRunCompleted = "tagsonomy.run.completed"
	SubjectOutcome      = "tagsonomy.run.outcome"
)

// OutcomeEvent is the wire format for one securable's outcome.
type OutcomeEvent struct {
	RunID         string    `json:"run_id"`
	Command       string    `json:"command"`
	SecurableType string    `json:"securable_type"`
	SecurableName string    `json:"securable_name"`
	Status        string    `json:"status"`
	Added         []string  `json:"added,omitempty"`
	Removed       []string  `json:"removed,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// RunEvent is the wire format for a completed batch run.
type RunEvent struct {
	RunID      string         `json:"run_id"`
	Command    string         `json:"command"`
	Started    time.Time      `json:"started"`
	DurationMS int64          `json:"duration_ms"`
	Securables int            `json:"securables"`
	Counts     map[string]int `json:"counts"`
}

// Publisher publishes run events to a NATS connection.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials NATS and returns a publisher. Callers that do not configure
// a NATS URL should skip Connect and use a nil *Publisher.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("tagsonomy"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &Publisher{nc: nc}, nil
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	_ = p.nc.Flush()
	p.nc.Close()
}

// PublishReport emits one outcome event per securable followed by a run
// summary event. A nil publisher is a no-op.
func (p *Publisher) PublishReport(ctx context.Context, command string, report *reconcile.Report) error {
	if p == nil || p.nc == nil {
		return nil
	}

	now := time.Now()
	for _, o := range report.Outcomes {
		if err := ctx.Err(); err != nil {
			return err
		}

		event := OutcomeEvent{
			RunID:         report.RunID,
			Command:       command,
			SecurableType: string(o.Securable.Type),
			SecurableName: o.Securable.Name,
			Status:        string(o.Status),
			Added:         o.Added,
			Removed:       o.Removed,
			Timestamp:     now,
		}
		if o.Err != nil {
			event.Error = o.Err.Error()
		}

		if err := p.emit(SubjectOutcome, event); err != nil {
			return err
		}
	}

	counts := make(map[string]int)
	for status, n := range report.Counts() {
		counts[string(status)] = n
	}

	summary := RunEvent{
		RunID:      report.RunID,
		Command:    command,
		Started:    report.Started,
		DurationMS: report.Duration.Milliseconds(),
		Securables: len(report.Outcomes),
		Counts:     counts,
	}
	if err := p.emit(SubjectRunCompleted, summary); err != nil {
		return err
	}

	return p.nc.Flush()
}

func (p *Publisher) emit(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
