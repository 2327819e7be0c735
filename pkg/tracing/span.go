// Package tracing times operations. LogDuration logs a single elapsed time;
// spans carried in a context build a per-request tree that is logged in one
// pass once the request is answered.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type spanKey struct{}

// Span is one timed step of a request. A nil *Span is valid and ignores
// every call, so code below an untraced entry point needs no checks.
type Span struct {
	name    string
	traceID string
	start   time.Time
	elapsed time.Duration

	mu       sync.Mutex
	attrs    []slog.Attr
	children []*Span
}

// Start opens a root span named name and returns a context carrying it.
func Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	span := &Span{name: name, traceID: traceID, start: time.Now()}
	return context.WithValue(ctx, spanKey{}, span), span
}

// StartChild opens a span under the one carried by ctx. When ctx carries no
// span it returns ctx unchanged and a nil span.
func StartChild(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	child := &Span{name: name, traceID: parent.traceID, start: time.Now()}
	parent.mu.Lock()
	parent.children = append(parent.children, child)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, child), child
}

// FromContext returns the span carried by ctx, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(spanKey{}).(*Span)
	return span
}

func (s *Span) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.elapsed = time.Since(s.start)
	s.mu.Unlock()
}

func (s *Span) SetAttr(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

func (s *Span) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Children returns a snapshot of the spans opened directly under s.
func (s *Span) Children() []*Span {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

// Log writes s and its descendants depth-first to logger at debug level,
// one record per span. Nothing is built when debug is disabled.
func (s *Span) Log(logger *slog.Logger) {
	if s == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	s.log(logger, 0)
}

func (s *Span) log(logger *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := make([]slog.Attr, 0, len(s.attrs)+4)
	attrs = append(attrs,
		slog.String("trace_id", s.traceID),
		slog.String("span", s.name),
		slog.Int("depth", depth),
		slog.Float64("duration_ms", float64(s.elapsed.Microseconds())/1000),
	)
	attrs = append(attrs, s.attrs...)
	children := s.children
	s.mu.Unlock()

	logger.LogAttrs(context.Background(), slog.LevelDebug, "span", attrs...)
	for _, child := range children {
		child.log(logger, depth+1)
	}
}
