package logging

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler duplicates records across several slog handlers, letting one
// logger feed stdout, the journal, and the log history at once.
type TeeHandler struct {
	sinks []slog.Handler
}

// NewTee creates a handler that forwards each record to every sink.
func NewTee(sinks ...slog.Handler) *TeeHandler {
	return &TeeHandler{sinks: sinks}
}

// Enabled implements slog.Handler. A record is enabled if any sink wants it.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range t.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler. Sinks below the record's level are
// skipped; errors from the rest are joined rather than aborting the fan-out.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range t.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TeeHandler) fork(derive func(slog.Handler) slog.Handler) *TeeHandler {
	sinks := make([]slog.Handler, len(t.sinks))
	for i, s := range t.sinks {
		sinks[i] = derive(s)
	}
	return &TeeHandler{sinks: sinks}
}

// WithAttrs implements slog.Handler.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return t
	}
	return t.fork(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}
	return t.fork(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}
