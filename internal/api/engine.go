package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/strobed/internal/api/models"
)

// registerEngineRoutes registers engine lifecycle and torch endpoints.
// Lifecycle commands are handed to the engine's execution goroutine and
// return before the transition is observable, so they all answer with a
// simple acknowledgement.
func (s *Server) registerEngineRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-engine-status",
		Method:      http.MethodGet,
		Path:        "/api/engine",
		Summary:     "Engine Status",
		Description: "Get the current engine state, queue size, and torch state",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.EngineStatusResponse, error) {
		return &models.EngineStatusResponse{
			Body: models.EngineStatusData{
				State:     string(s.engine.State()),
				QueueSize: s.engine.QueueSize(),
				TorchOn:   s.engine.TorchOn(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-engine",
		Method:      http.MethodPost,
		Path:        "/api/engine/start",
		Summary:     "Start",
		Description: "Begin executing queued effects",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.Start()
		return &models.MessageResponse{Body: models.MessageData{Message: "start requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "pause-engine",
		Method:      http.MethodPost,
		Path:        "/api/engine/pause",
		Summary:     "Pause",
		Description: "Freeze the current effect, turning the torch off and preserving elapsed time",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.Pause()
		return &models.MessageResponse{Body: models.MessageData{Message: "pause requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "resume-engine",
		Method:      http.MethodPost,
		Path:        "/api/engine/resume",
		Summary:     "Resume",
		Description: "Continue the paused effect from where it left off",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.Resume()
		return &models.MessageResponse{Body: models.MessageData{Message: "resume requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-engine",
		Method:      http.MethodPost,
		Path:        "/api/engine/stop",
		Summary:     "Stop",
		Description: "Abort the current effect and force the torch off. The queue is kept.",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.Stop()
		return &models.MessageResponse{Body: models.MessageData{Message: "stop requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "force-off",
		Method:      http.MethodPost,
		Path:        "/api/engine/force-off",
		Summary:     "Force Off",
		Description: "Fail-safe: force the torch off regardless of engine state, retrying on failure",
		Tags:        []string{"engine"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.ForceOff()
		return &models.MessageResponse{Body: models.MessageData{Message: "force off requested"}}, nil
	})

	// Torch endpoints bypass the queue entirely.
	huma.Register(s.api, huma.Operation{
		OperationID: "get-torch-status",
		Method:      http.MethodGet,
		Path:        "/api/torch",
		Summary:     "Torch Status",
		Description: "Get the torch controller state",
		Tags:        []string{"torch"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.TorchStatusResponse, error) {
		return &models.TorchStatusResponse{
			Body: models.TorchStatusData{
				On:        s.engine.TorchOn(),
				Available: s.torch.Available(),
				Backend:   s.torch.Name(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "torch-on",
		Method:      http.MethodPost,
		Path:        "/api/torch/on",
		Summary:     "Torch On",
		Description: "Turn the torch on directly, bypassing the effect queue",
		Tags:        []string{"torch"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.SwitchOn()
		return &models.MessageResponse{Body: models.MessageData{Message: "torch on requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "torch-off",
		Method:      http.MethodPost,
		Path:        "/api/torch/off",
		Summary:     "Torch Off",
		Description: "Turn the torch off directly, bypassing the effect queue",
		Tags:        []string{"torch"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*models.MessageResponse, error) {
		s.engine.SwitchOff()
		return &models.MessageResponse{Body: models.MessageData{Message: "torch off requested"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-torch-intensity",
		Method:      http.MethodPost,
		Path:        "/api/torch/intensity",
		Summary:     "Set Intensity",
		Description: "Map an analog intensity onto the binary torch using a threshold cutoff",
		Tags:        []string{"torch"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct {
		Body models.IntensityRequest
	}) (*models.MessageResponse, error) {
		s.engine.SetIntensity(input.Body.Intensity, input.Body.Threshold)
		return &models.MessageResponse{Body: models.MessageData{Message: "intensity applied"}}, nil
	})
}
