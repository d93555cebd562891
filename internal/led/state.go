package led

// Style classifies a logical LED state.
type Style int

// Pattern styles derived from a State.
const (
	StyleOff    Style = iota // led is off
	StyleStatic              // led has constant color
	StyleBlink               // led is blinking with on/off periods
	StyleBreath              // led is breathing with rise/fall times
)

// String returns the lowercase style name used in API responses and events.
func (s Style) String() string {
	switch s {
	case StyleOff:
		return "off"
	case StyleStatic:
		return "static"
	case StyleBlink:
		return "blink"
	case StyleBreath:
		return "breath"
	default:
		return "unknown"
	}
}

// State is the logical LED state owned by the engine. Color channels are
// zero unless the LED should be visibly lit; on/off blink periods are either
// both zero or both positive after sanitization.
type State struct {
	R, G, B     int  // color (0-255)
	OnMs, OffMs int  // blink timing in milliseconds
	Level       int  // brightness level (1-255)
	Breathe     bool // breathe instead of blinking
}

// hasColor reports whether the state asks for a visibly lit LED.
func (s *State) hasColor() bool {
	return s.R > 0 || s.G > 0 || s.B > 0
}

// hasEqualTiming reports blink/breathing timing equality.
func (s *State) hasEqualTiming(o *State) bool {
	return s.OnMs == o.OnMs && s.OffMs == o.OffMs
}

// Style evaluates the pattern style of the state.
func (s *State) Style() Style {
	if !s.hasColor() {
		return StyleOff
	}
	if s.OnMs <= 0 || s.OffMs <= 0 {
		return StyleStatic
	}
	if s.Breathe {
		return StyleBreath
	}
	return StyleBlink
}

// sanitize normalizes requested values in place. Blinking black makes no
// sense, blinking needs both periods positive, and breathing needs rise and
// fall times long enough to fit a useful number of intensity adjustments.
func (s *State) sanitize() {
	const minPeriod = stepDelayMinMs * rampMinSteps

	switch {
	case !s.hasColor():
		s.OnMs = 0
		s.OffMs = 0
		s.Breathe = false
	case s.OnMs <= 0 || s.OffMs <= 0:
		s.OnMs = 0
		s.OffMs = 0
		s.Breathe = false
	case s.OnMs < minPeriod || s.OffMs < minPeriod:
		s.Breathe = false
	}
}
