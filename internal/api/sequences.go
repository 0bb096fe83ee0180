package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/strobed/internal/api/models"
	"github.com/smazurov/strobed/internal/sequence"
	"github.com/smazurov/strobed/internal/strobe"
)

// registerSequenceRoutes registers CRUD and playback endpoints for stored
// effect sequences.
func (s *Server) registerSequenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-sequences",
		Method:      http.MethodGet,
		Path:        "/api/sequences",
		Summary:     "List Sequences",
		Description: "List all stored sequences",
		Tags:        []string{"sequences"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.SequenceListResponse, error) {
		all := s.store.All()
		sequences := make([]models.SequenceData, len(all))
		for i, seq := range all {
			sequences[i] = models.SequenceData{
				Name:        seq.Name,
				Description: seq.Description,
				Effects:     seq.Effects,
			}
		}
		return &models.SequenceListResponse{
			Body: models.SequenceListData{
				Sequences: sequences,
				Count:     len(sequences),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-sequence",
		Method:      http.MethodGet,
		Path:        "/api/sequences/{name}",
		Summary:     "Get Sequence",
		Description: "Get a stored sequence by name",
		Tags:        []string{"sequences"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Sequence name"`
	}) (*models.SequenceResponse, error) {
		seq, ok := s.store.Get(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("sequence not found: " + input.Name)
		}
		return &models.SequenceResponse{
			Body: models.SequenceData{
				Name:        seq.Name,
				Description: seq.Description,
				Effects:     seq.Effects,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "put-sequence",
		Method:      http.MethodPut,
		Path:        "/api/sequences/{name}",
		Summary:     "Store Sequence",
		Description: "Create or replace a stored sequence",
		Tags:        []string{"sequences"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Sequence name"`
		Body struct {
			Description string                 `json:"description,omitempty" doc:"Optional description"`
			Effects     []models.EffectRequest `json:"effects" minItems:"1" doc:"Effects in playback order"`
		}
	}) (*models.SequenceResponse, error) {
		effects := make([]strobe.Effect, len(input.Body.Effects))
		for i, req := range input.Body.Effects {
			effects[i] = req.ToEffect()
		}
		seq := sequence.Sequence{
			Name:        input.Name,
			Description: input.Body.Description,
			Effects:     effects,
		}
		if err := s.store.Put(seq); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return &models.SequenceResponse{
			Body: models.SequenceData{
				Name:        seq.Name,
				Description: seq.Description,
				Effects:     seq.Effects,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-sequence",
		Method:      http.MethodDelete,
		Path:        "/api/sequences/{name}",
		Summary:     "Delete Sequence",
		Description: "Remove a stored sequence",
		Tags:        []string{"sequences"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Sequence name"`
	}) (*models.MessageResponse, error) {
		if err := s.store.Remove(input.Name); err != nil {
			return nil, huma.Error404NotFound(err.Error())
		}
		return &models.MessageResponse{Body: models.MessageData{Message: "sequence deleted"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "play-sequence",
		Method:      http.MethodPost,
		Path:        "/api/sequences/{name}/play",
		Summary:     "Play Sequence",
		Description: "Enqueue all effects of a stored sequence and start the engine",
		Tags:        []string{"sequences"},
		Errors:      []int{401, 404},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Name string `path:"name" doc:"Sequence name"`
	}) (*models.PlayResponse, error) {
		seq, ok := s.store.Get(input.Name)
		if !ok {
			return nil, huma.Error404NotFound("sequence not found: " + input.Name)
		}
		s.engine.EnqueueAll(seq.Effects)
		s.engine.Start()
		return &models.PlayResponse{
			Body: models.PlayData{
				Message:   "sequence enqueued",
				Enqueued:  len(seq.Effects),
				QueueSize: s.engine.QueueSize(),
			},
		}, nil
	})
}
