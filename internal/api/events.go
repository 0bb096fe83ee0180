package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/strobed/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for engine state, effect progress, and torch transitions",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"effect-started":   events.EffectStartedEvent{},
		"effect-completed": events.EffectCompletedEvent{},
		"queue-empty":      events.QueueEmptyEvent{},
		"engine-error":     events.EngineErrorEvent{},
		"state-changed":    events.StateChangedEvent{},
		"torch-state":      events.TorchStateEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Event channel for this connection
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.EffectStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.EffectCompletedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.QueueEmptyEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.EngineErrorEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.StateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.TorchStateEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial snapshot so clients do not have to wait for a transition
		if err := send.Data(events.StateChangedEvent{
			State:     string(s.engine.State()),
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
