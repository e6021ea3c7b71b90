package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/store/memory"
	"github.com/steveyegge/doctags/internal/types"
)

func TestInitDisabled(t *testing.T) {
	t.Setenv("DOCTAGS_OTEL_ENABLED", "")
	require.NoError(t, Init(context.Background(), "doctags", "test"))
	assert.False(t, Enabled())
	assert.NoError(t, Shutdown(context.Background()))
}

func TestInitStdout(t *testing.T) {
	t.Setenv("DOCTAGS_OTEL_ENABLED", "true")
	t.Setenv("DOCTAGS_OTEL_STDOUT", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
	require.NoError(t, Init(context.Background(), "doctags", "test"))
	assert.Len(t, shutdownFns, 2)
	assert.NoError(t, Shutdown(context.Background()))
	assert.Empty(t, shutdownFns)
}

func TestTargetsFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		stdout   string
		endpoint string
		metrics  string
		want     exportTargets
	}{
		{name: "no endpoint falls back to stdout", want: exportTargets{stdout: true}},
		{
			name:     "shared endpoint",
			endpoint: "localhost:4318",
			want:     exportTargets{traceEndpoint: "localhost:4318", metricEndpoint: "localhost:4318"},
		},
		{
			name:     "metrics endpoint overrides",
			stdout:   "true",
			endpoint: "localhost:4318",
			metrics:  "metrics:4318",
			want:     exportTargets{stdout: true, traceEndpoint: "localhost:4318", metricEndpoint: "metrics:4318"},
		},
		{
			name:    "metrics only",
			metrics: "metrics:4318",
			want:    exportTargets{metricEndpoint: "metrics:4318"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCTAGS_OTEL_STDOUT", tt.stdout)
			t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", tt.endpoint)
			t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", tt.metrics)
			assert.Equal(t, tt.want, targetsFromEnv())
		})
	}
}

func TestWrapStore_DisabledReturnsInner(t *testing.T) {
	t.Setenv("DOCTAGS_OTEL_ENABLED", "")
	inner := memory.New()
	assert.Same(t, inner, WrapStore(inner))
}

func TestInstrumentedStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	s := newInstrumentedStore(inner)

	rec, err := s.CreateRecord(ctx, "[1 open] Tags in docs/a.md", "body", []string{types.LabelTracking})
	require.NoError(t, err)

	title := "[2 open] Tags in docs/a.md"
	_, err = s.UpdateRecord(ctx, rec.Number, store.RecordUpdate{Title: &title})
	require.NoError(t, err)
	require.NoError(t, s.AddComment(ctx, rec.Number, "hello"))
	require.NoError(t, s.AddLabels(ctx, rec.Number, []string{"x"}))

	got, err := s.GetRecord(ctx, rec.Number)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.True(t, got.HasLabel("x"))

	open, err := s.ListRecords(ctx, types.StateOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, []string{"hello"}, inner.Comments(rec.Number))
}

func TestInstrumentedStore_PropagatesErrors(t *testing.T) {
	inner := memory.New()
	boom := errors.New("boom")
	inner.Errors["get:7"] = boom
	s := newInstrumentedStore(inner)

	_, err := s.GetRecord(context.Background(), 7)
	assert.ErrorIs(t, err, boom)

	_, err = s.GetComment(context.Background(), "42")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.Run(ctx, "full")
	m.Action(ctx, "created", 1)
	m.Failure(ctx, "process")
	m.Tasks(ctx, 3)

	m = NewMetrics()
	m.Run(ctx, "full")
	m.Action(ctx, "created", 2)
	m.Failure(ctx, "process")
	m.Tasks(ctx, 3)
}
