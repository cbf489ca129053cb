package publish

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/tagsonomy/catalog"
	"github.com/c360studio/tagsonomy/reconcile"
)

func TestNilPublisherIsNoOp(t *testing.T) {
	var p *Publisher

	report := &reconcile.Report{RunID: "r1"}
	assert.NoError(t, p.PublishReport(context.Background(), "update", report))

	// Close on nil must not panic either.
	p.Close()
}

func TestOutcomeEventWire(t *testing.T) {
	event := OutcomeEvent{
		RunID:         "r1",
		Command:       "update",
		SecurableType: "TABLE",
		SecurableName: "prod.mfg.engine_parts",
		Status:        "applied",
		Added:         []string{"tx_EQUIPMENT"},
		Removed:       []string{"tx_ENGINE"},
		Timestamp:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["run_id"])
	assert.Equal(t, "TABLE", decoded["securable_type"])
	assert.Equal(t, "applied", decoded["status"])
	assert.NotContains(t, decoded, "error", "empty error is omitted")
}

func TestRunEventWire(t *testing.T) {
	event := RunEvent{
		RunID:      "r1",
		Command:    "clear",
		Started:    time.Now(),
		DurationMS: 1234,
		Securables: 3,
		Counts:     map[string]int{"applied": 2, "failed": 1},
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded RunEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, event.RunID, decoded.RunID)
	assert.Equal(t, event.DurationMS, decoded.DurationMS)
	assert.Equal(t, event.Counts, decoded.Counts)
}

func TestDisconnectedPublisherIsNoOp(t *testing.T) {
	p := &Publisher{}
	report := &reconcile.Report{
		RunID: "r1",
		Outcomes: []reconcile.Outcome{
			{Securable: catalog.Securable{Type: catalog.SecurableTable, Name: "t"}},
		},
	}

	assert.NoError(t, p.PublishReport(context.Background(), "update", report))
	p.Close()
}
