package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/strobed/internal/api/models"
	"github.com/smazurov/strobed/internal/strobe"
)

// registerQueueRoutes registers the effect queue endpoints.
func (s *Server) registerQueueRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-queue",
		Method:      http.MethodGet,
		Path:        "/api/queue",
		Summary:     "Queue",
		Description: "Get the number of effects waiting in the queue",
		Tags:        []string{"queue"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.QueueResponse, error) {
		return &models.QueueResponse{
			Body: models.QueueData{Size: s.engine.QueueSize()},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "enqueue-effect",
		Method:      http.MethodPost,
		Path:        "/api/queue/effect",
		Summary:     "Enqueue Effect",
		Description: "Append a single effect to the queue. Omitted fields get defaults: STROBE, 1000ms, 10Hz, intensity 1.0.",
		Tags:        []string{"queue"},
		Errors:      []int{400, 401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Body models.EffectRequest
	}) (*models.EnqueueResponse, error) {
		effect := input.Body.ToEffect()
		if err := effect.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		s.engine.Enqueue(effect)
		return &models.EnqueueResponse{
			Body: models.EnqueueData{
				ID:        effect.ID,
				QueueSize: s.engine.QueueSize(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "enqueue-effects",
		Method:      http.MethodPost,
		Path:        "/api/queue/effects",
		Summary:     "Enqueue Effects",
		Description: "Append a batch of effects to the queue atomically, preserving order",
		Tags:        []string{"queue"},
		Errors:      []int{400, 401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Body struct {
			Effects []models.EffectRequest `json:"effects" minItems:"1" doc:"Effects in the order they should run"`
		}
	}) (*models.EnqueueBatchResponse, error) {
		effects := make([]strobe.Effect, len(input.Body.Effects))
		for i, req := range input.Body.Effects {
			effects[i] = req.ToEffect()
			if err := effects[i].Validate(); err != nil {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
		}
		s.engine.EnqueueAll(effects)
		ids := make([]string, len(effects))
		for i, effect := range effects {
			ids[i] = effect.ID
		}
		return &models.EnqueueBatchResponse{
			Body: models.EnqueueBatchData{
				IDs:       ids,
				QueueSize: s.engine.QueueSize(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-queue",
		Method:      http.MethodDelete,
		Path:        "/api/queue",
		Summary:     "Clear Queue",
		Description: "Discard all waiting effects. The currently running effect is not affected.",
		Tags:        []string{"queue"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.ClearQueue()
		return &models.MessageResponse{Body: models.MessageData{Message: "queue cleared"}}, nil
	})
}
