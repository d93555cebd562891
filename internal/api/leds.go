package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/indicatord/internal/api/models"
)

// registerLEDRoutes registers the LED control endpoints.
func (s *Server) registerLEDRoutes() {
	// Apply a pattern
	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-pattern",
		Method:      http.MethodPost,
		Path:        "/api/led/pattern",
		Summary:     "Set LED Pattern",
		Description: "Apply a color/blink pattern. Zero or sub-50ms on/off periods produce a static color; black turns the LED off.",
		Tags:        []string{"led"},
		Errors:      []int{401, 503},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.PatternRequest) (*models.LedStateResponse, error) {
		b := input.Body
		if !s.engine.SetPattern(b.R, b.G, b.B, b.OnMs, b.OffMs) {
			return nil, huma.Error503ServiceUnavailable("No LED hardware available")
		}
		return s.stateResponse(), nil
	})

	// Current state
	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-state",
		Method:      http.MethodGet,
		Path:        "/api/led",
		Summary:     "Get LED State",
		Description: "Get the current logical LED state",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.LedStateResponse, error) {
		return s.stateResponse(), nil
	})

	// Brightness
	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-brightness",
		Method:      http.MethodPut,
		Path:        "/api/led/brightness",
		Summary:     "Set Brightness",
		Description: "Set the global brightness level applied to all patterns",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.BrightnessRequest) (*models.LedStateResponse, error) {
		s.engine.SetBrightness(input.Body.Level)
		return s.stateResponse(), nil
	})

	// Breathing
	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-breathing",
		Method:      http.MethodPut,
		Path:        "/api/led/breathing",
		Summary:     "Set Breathing",
		Description: "Enable or disable rendering blink patterns as smooth breathing ramps. Ignored when the hardware cannot breathe.",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *models.BreathingRequest) (*models.LedStateResponse, error) {
		s.engine.SetBreathing(input.Body.Enabled)
		return s.stateResponse(), nil
	})

	// Capabilities
	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/led/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "Get the probed hardware backend and its breathing capabilities",
		Tags:        []string{"led"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, input *struct{}) (*models.CapabilitiesResponse, error) {
		return &models.CapabilitiesResponse{
			Body: models.CapabilitiesData{
				Backend:    s.engine.BackendName(),
				CanBreathe: s.engine.CanBreathe(),
				BreathType: s.engine.BreathTypeName(),
			},
		}, nil
	})
}

func (s *Server) stateResponse() *models.LedStateResponse {
	snap := s.engine.Snapshot()
	return &models.LedStateResponse{
		Body: models.LedStateData{
			R:       snap.R,
			G:       snap.G,
			B:       snap.B,
			OnMs:    snap.OnMs,
			OffMs:   snap.OffMs,
			Level:   snap.Level,
			Breathe: snap.Breathe,
			Style:   snap.Style,
			Backend: snap.Backend,
		},
	}
}
