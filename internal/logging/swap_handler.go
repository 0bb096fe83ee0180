package logging

import (
	"context"
	"log/slog"
	"sync"
)

// handlerSlot holds the backing handler a module logger resolves through.
type handlerSlot struct {
	mu sync.RWMutex
	h  slog.Handler
}

// swapHandler is a slog.Handler whose backing handler can be replaced at
// runtime. Loggers handed out before Initialize stay valid because every
// call resolves through the slot, and With-derived handlers reapply their
// attrs and groups on whatever handler the slot currently holds.
type swapHandler struct {
	slot *handlerSlot
	wrap []func(slog.Handler) slog.Handler
}

func newSwapHandler(h slog.Handler) *swapHandler {
	return &swapHandler{slot: &handlerSlot{h: h}}
}

// replace swaps the backing handler for this logger and all handlers
// derived from it via WithAttrs or WithGroup.
func (s *swapHandler) replace(h slog.Handler) {
	s.slot.mu.Lock()
	s.slot.h = h
	s.slot.mu.Unlock()
}

func (s *swapHandler) resolve() slog.Handler {
	s.slot.mu.RLock()
	h := s.slot.h
	s.slot.mu.RUnlock()
	for _, derive := range s.wrap {
		h = derive(h)
	}
	return h
}

// Enabled implements slog.Handler.
func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.resolve().Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.resolve().Handle(ctx, r)
}

func (s *swapHandler) derived(derive func(slog.Handler) slog.Handler) *swapHandler {
	wrap := make([]func(slog.Handler) slog.Handler, len(s.wrap), len(s.wrap)+1)
	copy(wrap, s.wrap)
	return &swapHandler{slot: s.slot, wrap: append(wrap, derive)}
}

// WithAttrs implements slog.Handler.
func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.derived(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup implements slog.Handler.
func (s *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.derived(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}
