package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that turns task spans into renderer events.
//
// A task started from inside another task, such as a watch re-run, carries the
// span ID of the enclosing task as its parent. A failed span is reported with an
// error that keeps the exit status and cancellation recorded on the span.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge reporting to renderer. A nil renderer drops all events.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart announces the task.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}

	var parentID string
	if enclosing := trace.SpanFromContext(parent).SpanContext(); enclosing.IsValid() {
		parentID = enclosing.SpanID().String()
	}
	b.renderer.OnTaskStart(sc.SpanID().String(), parentID, s.Name(), s.StartTime())
}

// OnEnd reports the outcome of the task.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	if b.renderer == nil || !sc.IsValid() {
		return
	}
	b.renderer.OnTaskComplete(sc.SpanID().String(), s.EndTime(), outcome(s.Status(), s.Attributes()))
}

// outcome rebuilds the task error from the span status and the failure attributes.
func outcome(status sdktrace.Status, attrs []attribute.KeyValue) error {
	if status.Code != codes.Error {
		return nil
	}

	desc := status.Description
	if desc == "" {
		desc = "task failed"
	}
	err := errors.New(desc)

	for _, kv := range attrs {
		switch kv.Key {
		case domain.AttrCancelled:
			if kv.Value.AsBool() {
				return errors.Join(context.Canceled, err)
			}
		case domain.AttrExitCode:
			err = domain.Annotate(err, domain.MetaExitCode, int(kv.Value.AsInt64()))
		}
	}
	return err
}

// ForceFlush does nothing; events are delivered synchronously.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
