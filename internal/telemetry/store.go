package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/doctags/internal/store"
	"github.com/steveyegge/doctags/internal/types"
)

const storeScopeName = "github.com/steveyegge/doctags/store"

// InstrumentedStore wraps store.IssueStore with OTel tracing and metrics.
// Every method gets a span and is counted in doctags.store.* metrics.
// Use WrapStore to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStore struct {
	inner  store.IssueStore
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapStore returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is.
func WrapStore(s store.IssueStore) store.IssueStore {
	if !Enabled() {
		return s
	}
	return newInstrumentedStore(s)
}

func newInstrumentedStore(s store.IssueStore) *InstrumentedStore {
	m := meter(storeScopeName)
	ops, _ := m.Int64Counter("doctags.store.operations",
		metric.WithDescription("Total issue store operations executed"),
	)
	dur, _ := m.Float64Histogram("doctags.store.operation.duration",
		metric.WithDescription("Issue store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("doctags.store.errors",
		metric.WithDescription("Total issue store operation errors"),
	)
	return &InstrumentedStore{
		inner:  s,
		tracer: Tracer(storeScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

var _ store.IssueStore = (*InstrumentedStore)(nil)

// op starts a span and records a metric for the named store operation.
func (s *InstrumentedStore) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("doctags.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStore) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func recordAttr(number int) attribute.KeyValue {
	return attribute.Int("doctags.record", number)
}

func (s *InstrumentedStore) ListRecords(ctx context.Context, state types.RecordState) ([]*types.TrackingRecord, error) {
	attrs := []attribute.KeyValue{attribute.String("doctags.record.state", string(state))}
	ctx, span, t := s.op(ctx, "ListRecords", attrs...)
	recs, err := s.inner.ListRecords(ctx, state)
	if err == nil {
		span.SetAttributes(attribute.Int("doctags.result.count", len(recs)))
	}
	s.done(ctx, span, t, err, attrs...)
	return recs, err
}

func (s *InstrumentedStore) GetRecord(ctx context.Context, number int) (*types.TrackingRecord, error) {
	ctx, span, t := s.op(ctx, "GetRecord", recordAttr(number))
	rec, err := s.inner.GetRecord(ctx, number)
	s.done(ctx, span, t, err)
	return rec, err
}

func (s *InstrumentedStore) CreateRecord(ctx context.Context, title, body string, labels []string) (*types.TrackingRecord, error) {
	attrs := []attribute.KeyValue{attribute.Int("doctags.label.count", len(labels))}
	ctx, span, t := s.op(ctx, "CreateRecord", attrs...)
	rec, err := s.inner.CreateRecord(ctx, title, body, labels)
	if err == nil {
		span.SetAttributes(recordAttr(rec.Number))
	}
	s.done(ctx, span, t, err, attrs...)
	return rec, err
}

func (s *InstrumentedStore) UpdateRecord(ctx context.Context, number int, update store.RecordUpdate) (*types.TrackingRecord, error) {
	attrs := []attribute.KeyValue{recordAttr(number)}
	if update.State != nil {
		attrs = append(attrs, attribute.String("doctags.record.state", string(*update.State)))
	}
	ctx, span, t := s.op(ctx, "UpdateRecord", attrs...)
	rec, err := s.inner.UpdateRecord(ctx, number, update)
	s.done(ctx, span, t, err)
	return rec, err
}

func (s *InstrumentedStore) AddComment(ctx context.Context, number int, body string) error {
	ctx, span, t := s.op(ctx, "AddComment", recordAttr(number))
	err := s.inner.AddComment(ctx, number, body)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStore) AddLabels(ctx context.Context, number int, labels []string) error {
	ctx, span, t := s.op(ctx, "AddLabels", recordAttr(number))
	err := s.inner.AddLabels(ctx, number, labels)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStore) ListReactions(ctx context.Context, commentID string) ([]string, error) {
	ctx, span, t := s.op(ctx, "ListReactions", attribute.String("doctags.comment", commentID))
	v, err := s.inner.ListReactions(ctx, commentID)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStore) GetComment(ctx context.Context, commentID string) (*types.Comment, error) {
	ctx, span, t := s.op(ctx, "GetComment", attribute.String("doctags.comment", commentID))
	c, err := s.inner.GetComment(ctx, commentID)
	if err == nil {
		span.SetAttributes(attribute.String("doctags.comment.author", c.Author))
	}
	s.done(ctx, span, t, err)
	return c, err
}
