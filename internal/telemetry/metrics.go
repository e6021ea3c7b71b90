package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const engineScopeName = "github.com/steveyegge/doctags/tracker"

// Metrics holds the instruments the engine reports a run through. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	runs     metric.Int64Counter
	actions  metric.Int64Counter
	failures metric.Int64Counter
	tasks    metric.Int64Histogram
}

// NewMetrics creates the engine instruments on the global meter provider.
// With telemetry disabled the provider is a no-op and so are the instruments.
func NewMetrics() *Metrics {
	m := meter(engineScopeName)
	runs, _ := m.Int64Counter("doctags.runs",
		metric.WithDescription("Engine runs by mode"),
	)
	actions, _ := m.Int64Counter("doctags.record.actions",
		metric.WithDescription("Record actions taken (created, updated, reopened, closed, ...)"),
	)
	failures, _ := m.Int64Counter("doctags.failures",
		metric.WithDescription("Per-document and per-record failures"),
	)
	tasks, _ := m.Int64Histogram("doctags.record.tasks",
		metric.WithDescription("Open tasks per record after reconciliation"),
	)
	return &Metrics{runs: runs, actions: actions, failures: failures, tasks: tasks}
}

// Run counts one run in the given mode.
func (m *Metrics) Run(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("doctags.mode", mode)))
}

// Action counts n record actions of one kind.
func (m *Metrics) Action(ctx context.Context, action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.actions.Add(ctx, int64(n), metric.WithAttributes(attribute.String("doctags.action", action)))
}

// Failure counts one failure at the given stage.
func (m *Metrics) Failure(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("doctags.stage", stage)))
}

// Tasks records the task count written to a record.
func (m *Metrics) Tasks(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.tasks.Record(ctx, int64(n))
}
