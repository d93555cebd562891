// Package models holds the request/response shapes shared by the API
// endpoints.
package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"12345" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// LED models

// PatternRequestData describes a requested indicator pattern. Zero on/off
// periods (or periods under 50ms) produce a static color; both positive
// produce a blinking or breathing pattern.
type PatternRequestData struct {
	R     int `json:"r" minimum:"0" maximum:"255" example:"255" doc:"Red intensity (0-255)"`
	G     int `json:"g" minimum:"0" maximum:"255" example:"0" doc:"Green intensity (0-255)"`
	B     int `json:"b" minimum:"0" maximum:"255" example:"0" doc:"Blue intensity (0-255)"`
	OnMs  int `json:"on_ms" minimum:"0" maximum:"60000" example:"500" doc:"Blink on period in milliseconds"`
	OffMs int `json:"off_ms" minimum:"0" maximum:"60000" example:"1500" doc:"Blink off period in milliseconds"`
}

type PatternRequest struct {
	Body PatternRequestData
}

// LedStateData is the current logical LED state.
type LedStateData struct {
	R       int    `json:"r" example:"255" doc:"Red intensity (0-255)"`
	G       int    `json:"g" example:"0" doc:"Green intensity (0-255)"`
	B       int    `json:"b" example:"0" doc:"Blue intensity (0-255)"`
	OnMs    int    `json:"on_ms" example:"500" doc:"Blink on period in milliseconds"`
	OffMs   int    `json:"off_ms" example:"1500" doc:"Blink off period in milliseconds"`
	Level   int    `json:"level" example:"255" doc:"Global brightness level (1-255)"`
	Breathe bool   `json:"breathe" example:"false" doc:"Whether breathing is enabled"`
	Style   string `json:"style" example:"blink" doc:"Derived pattern style: off, static, blink or breath"`
	Backend string `json:"backend" example:"vanilla" doc:"Active sysfs backend, empty when none matched"`
}

type LedStateResponse struct {
	Body LedStateData
}

// BrightnessRequestData sets the global brightness level.
type BrightnessRequestData struct {
	Level int `json:"level" minimum:"1" maximum:"255" example:"128" doc:"Brightness level (1-255)"`
}

type BrightnessRequest struct {
	Body BrightnessRequestData
}

// BreathingRequestData toggles software breathing.
type BreathingRequestData struct {
	Enabled bool `json:"enabled" example:"true" doc:"Whether blink patterns should render as breathing ramps"`
}

type BreathingRequest struct {
	Body BreathingRequestData
}

// CapabilitiesData describes what the probed hardware backend can do.
type CapabilitiesData struct {
	Backend    string `json:"backend" example:"vanilla" doc:"Name of the active sysfs backend, empty when none matched"`
	CanBreathe bool   `json:"can_breathe" example:"true" doc:"Whether software breathing is supported"`
	BreathType string `json:"breath_type" example:"half-sine" doc:"Breathing ramp shape: disabled, half-sine or hard-step"`
}

type CapabilitiesResponse struct {
	Body CapabilitiesData
}

// Log models

type LogEntryData struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"led" doc:"Module that emitted the entry"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Buffered log entries in chronological order"`
	Count   int            `json:"count" example:"42" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}
