package events

// Event type constants for kelindar/event.
const (
	TypePatternChanged uint32 = iota + 1
	TypeBrightnessChanged
	TypeBreathingChanged
	TypeBackendProbed
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// PatternChangedEvent is published whenever the engine accepts a new
// logical LED state (color, blink timing, breathing or brightness).
type PatternChangedEvent struct {
	R         int    `json:"r" example:"255" doc:"Red intensity (0-255)"`
	G         int    `json:"g" example:"0" doc:"Green intensity (0-255)"`
	B         int    `json:"b" example:"0" doc:"Blue intensity (0-255)"`
	OnMs      int    `json:"on_ms" example:"500" doc:"Blink on period in milliseconds, 0 when not blinking"`
	OffMs     int    `json:"off_ms" example:"1500" doc:"Blink off period in milliseconds, 0 when not blinking"`
	Breathe   bool   `json:"breathe" example:"false" doc:"Whether the pattern renders as a smooth intensity ramp"`
	Level     int    `json:"level" example:"255" doc:"Global brightness level (1-255)"`
	Style     string `json:"style" example:"blink" doc:"Derived pattern style: off, static, blink or breath"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PatternChangedEvent.
func (e PatternChangedEvent) Type() uint32 { return TypePatternChanged }

// BrightnessChangedEvent is published when the global brightness level changes.
type BrightnessChangedEvent struct {
	Level     int    `json:"level" example:"128" doc:"Global brightness level (1-255)"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BrightnessChangedEvent.
func (e BrightnessChangedEvent) Type() uint32 { return TypeBrightnessChanged }

// BreathingChangedEvent is published when software breathing is toggled.
type BreathingChangedEvent struct {
	Enabled   bool   `json:"enabled" example:"true" doc:"Whether breathing is enabled"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BreathingChangedEvent.
func (e BreathingChangedEvent) Type() uint32 { return TypeBreathingChanged }

// BackendProbedEvent reports the hardware backend selected at startup.
type BackendProbedEvent struct {
	Backend    string `json:"backend" example:"vanilla" doc:"Name of the probed sysfs backend, empty when none matched"`
	CanBreathe bool   `json:"can_breathe" example:"true" doc:"Whether software breathing is supported"`
	BreathType string `json:"breath_type" example:"half-sine" doc:"Breathing ramp shape: disabled, half-sine or hard-step"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BackendProbedEvent.
func (e BackendProbedEvent) Type() uint32 { return TypeBackendProbed }

// LogEntryEvent represents a log entry published to SSE clients.
type LogEntryEvent struct {
	ID         string         `json:"id" doc:"Unique event identifier"`
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Module that emitted the entry"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
