package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/strobed/internal/events"
	"github.com/smazurov/strobed/internal/logging"
)

// registerLogRoutes registers the log streaming SSE endpoint.
func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Real-time log streaming via Server-Sent Events. Sends historical logs first, then streams new logs.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// The response headers are not flushed until the first event goes
		// out, so greet the client before replaying history. Clients that
		// only care about live entries can skip entries from before their
		// connect timestamp.
		greeting := events.LogEntryEvent{
			Timestamp: time.Now().Format(time.RFC3339Nano),
			Level:     "info",
			Module:    "api",
			Message:   "log stream connected",
		}
		if err := send.Data(greeting); err != nil {
			return
		}

		// Historical logs from the retained history
		buffer := logging.GetBuffer()
		if buffer != nil {
			for _, entry := range buffer.Snapshot() {
				event := events.LogEntryEvent{
					Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
					Level:      entry.Level,
					Module:     entry.Module,
					Message:    entry.Message,
					Attributes: entry.Attributes,
				}
				if err := send.Data(event); err != nil {
					return
				}
			}
		}

		// Larger buffer for logs
		eventCh := make(chan any, 100)

		unsubscribe := events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, eventCh)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
