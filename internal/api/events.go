package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/indicatord/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	// Register SSE endpoint with event type mapping
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for pattern changes, brightness, breathing and backend status",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"pattern-changed":    events.PatternChangedEvent{},
		"brightness-changed": events.BrightnessChangedEvent{},
		"breathing-changed":  events.BreathingChangedEvent{},
		"backend-probed":     events.BackendProbedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 10)

		// Subscribe to all event types using event bus
		unsubscribers := []func(){
			events.SubscribeToChannel[events.PatternChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BrightnessChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BreathingChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.BackendProbedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Send the current state as the connection confirmation
		snap := s.engine.Snapshot()
		if err := send.Data(events.PatternChangedEvent{
			R: snap.R, G: snap.G, B: snap.B,
			OnMs:      snap.OnMs,
			OffMs:     snap.OffMs,
			Breathe:   snap.Breathe,
			Level:     snap.Level,
			Style:     snap.Style,
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		// Keep connection alive and forward events
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				// Send event using Huma's SSE sender with error handling
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})
}
