package led

import (
	"log/slog"

	"github.com/smazurov/indicatord/internal/metrics"
)

// BreathType enumerates brightness ramp shapes used for software breathing.
type BreathType int

const (
	// BreathDisabled means software breathing is not used.
	BreathDisabled BreathType = iota

	// BreathHalfSine is the default smooth intensity curve.
	BreathHalfSine

	// BreathHardStep emulates hardware blinking via software breathing.
	BreathHardStep
)

// String returns the name used in config values, API responses and events.
func (t BreathType) String() string {
	switch t {
	case BreathHalfSine:
		return "half-sine"
	case BreathHardStep:
		return "hard-step"
	default:
		return "disabled"
	}
}

// ParseBreathType maps a config string onto a BreathType.
func ParseBreathType(s string) (BreathType, bool) {
	switch s {
	case "half-sine":
		return BreathHalfSine, true
	case "hard-step":
		return BreathHardStep, true
	case "disabled":
		return BreathDisabled, true
	default:
		return BreathDisabled, false
	}
}

// Backend is a hardware-specific LED driver: a set of optional control
// operations plus capability flags. Concrete backends live in the backends
// package; the engine only consumes this bundle through the nil-safe
// dispatch methods below.
type Backend struct {
	Name       string
	CanBreathe bool
	BreathType BreathType

	EnableFn func(enable bool)
	BlinkFn  func(onMs, offMs int)
	ValueFn  func(r, g, b int)
	CloseFn  func()
}

// enable toggles the LED on/off control when the backend has one.
func (b *Backend) enable(on bool) {
	if b.EnableFn != nil {
		b.EnableFn(on)
	}
}

// SetBlink configures the hardware blink period. If both periods are
// positive the PWM generator is used for full intensity blinking, otherwise
// it only adjusts brightness. A no-op when the backend has no blink control.
func (b *Backend) SetBlink(onMs, offMs int) {
	if b.BlinkFn != nil {
		b.enable(false)
		b.BlinkFn(onMs, offMs)
	}
}

// SetValue sets the LED color, intensities in the 0-255 range. The LED is
// disabled around the channel writes so that multi-channel hardware latches
// all of them at once.
func (b *Backend) SetValue(r, g, bl int) {
	if b.ValueFn != nil {
		b.enable(false)
		b.ValueFn(r, g, bl)
		b.enable(true)
	}
}

// Close releases all control files held by the backend.
func (b *Backend) Close() {
	if b.CloseFn != nil {
		b.CloseFn()
	}
}

// breathType reports the effective ramp shape, honoring CanBreathe.
func (b *Backend) breathType() BreathType {
	if !b.CanBreathe {
		return BreathDisabled
	}
	return b.BreathType
}

// Candidate is a named backend constructor tried during probing. Probe
// attempts to open every control file the backend requires and returns nil
// when any of them is missing, closing whatever it already opened.
type Candidate struct {
	Name  string
	Probe func() *Backend
}

// Probe tries candidates in order and returns the first match, or nil when
// the device has no controllable indicator LED. The candidate order is
// chosen by the caller to minimize false positives (most structurally
// distinctive control-file layouts first). A non-empty forced name narrows
// probing to that single candidate.
func Probe(candidates []Candidate, forced string, log *slog.Logger) *Backend {
	if log == nil {
		log = slog.Default()
	}

	for _, c := range candidates {
		if forced != "" && c.Name != forced {
			continue
		}

		backend := c.Probe()
		if backend == nil {
			metrics.ProbeAttempts.WithLabelValues(c.Name, "miss").Inc()
			continue
		}
		metrics.ProbeAttempts.WithLabelValues(c.Name, "match").Inc()

		log.Info("led sysfs backend probed",
			"backend", backend.Name,
			"can_breathe", backend.CanBreathe,
			"breath_type", backend.BreathType.String())
		return backend
	}

	// Devices without an indicator LED end up here; not an error.
	log.Info("led sysfs backend probed", "backend", "N/A")
	return nil
}
