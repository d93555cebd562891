package led

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/metrics"
)

// kernelDelay is the settle gap enforced between consecutive control writes.
// Several backends are known to need a minimum delay before new sysfs values
// "take"; back-to-back writes silently drop or corrupt the pattern.
const kernelDelay = kernelDelayMs * time.Millisecond

// phase tracks which timer, if any, is outstanding. There is never more than
// one pending timer; superseding an old one always cancels it first.
type phase int

const (
	phaseIdle      phase = iota
	phaseSettling        // waiting for the kernel to settle before (re)applying
	phaseApplying        // one-shot static blink+color apply pending
	phaseBreathing       // repeating ramp step timer running
)

// Options configures an Engine.
type Options struct {
	// Candidates are tried in order at Init; see backends.Candidates.
	Candidates []Candidate

	// Backend narrows probing to a single named candidate when non-empty.
	Backend string

	// QuirkBreathing overrides the probed CanBreathe capability.
	QuirkBreathing *bool

	// QuirkBreathType overrides the probed ramp shape.
	QuirkBreathType *BreathType

	// Clock defaults to the wall clock; tests install a mock.
	Clock clock.Clock

	Logger *slog.Logger

	// Bus receives pattern/brightness/probe events when set.
	Bus *events.Bus
}

// Engine owns the single logical LED state and turns requests into a
// sequence of timed backend writes. All mutation happens under one mutex; the
// timer callbacks reacquire it, so the externally visible behavior is that of
// a single-threaded event loop.
type Engine struct {
	mu   sync.Mutex
	clk  clock.Clock
	log  *slog.Logger
	bus  *events.Bus
	opts Options

	backend *Backend
	curr    State
	breathe ramp

	// breatheEnabled is the requested breathing setting. It is folded into
	// every pattern request; the sanitized per-pattern flag in curr may
	// differ when the timing is too short for a useful ramp.
	breatheEnabled bool

	// resetBlink forces a blink-off plus black write on the next settle
	// tick; hardware blink modes leave stale state behind otherwise.
	resetBlink bool

	phase    phase
	timer    *clock.Timer
	timerGen uint64
}

// NewEngine creates an engine in the "no backend" state; Init probes the
// hardware.
func NewEngine(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		clk:  opts.Clock,
		log:  opts.Logger,
		bus:  opts.Bus,
		opts: opts,
		curr: State{
			// Invalid color forces the first real request to register
			// as a change.
			R: -1, G: -1, B: -1,
			Level: 255,
		},
		resetBlink: true,
	}
}

// Init probes the backend candidates and, on success, force-applies an
// all-off state. Returns false when no candidate matched, which callers must
// tolerate: devices without an indicator LED are not an error.
func (e *Engine) Init() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.backend = Probe(e.opts.Candidates, e.opts.Backend, e.log)
	if e.backend == nil {
		return false
	}

	if e.opts.QuirkBreathing != nil {
		e.backend.CanBreathe = *e.opts.QuirkBreathing
	}
	if e.backend.CanBreathe && e.opts.QuirkBreathType != nil {
		e.backend.BreathType = *e.opts.QuirkBreathType
	}

	if e.bus != nil {
		e.bus.Publish(events.BackendProbedEvent{
			Backend:    e.backend.Name,
			CanBreathe: e.backend.CanBreathe,
			BreathType: e.backend.BreathType.String(),
			Timestamp:  e.clk.Now().UTC().Format(time.RFC3339),
		})
	}

	req := e.curr
	req.R, req.G, req.B = 0, 0, 0
	e.start(req)

	return true
}

// Quit cancels pending timers, forces the LED off and releases all control
// files.
func (e *Engine) Quit() {
	e.mu.Lock()
	e.cancelTimer()
	e.phase = phaseIdle
	e.mu.Unlock()

	// Allow the kernel side to settle before the final writes.
	e.clk.Sleep(kernelDelay)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil {
		return
	}
	e.setBlink(0, 0)
	e.setValue(0, 0, 0)
	e.backend.Close()
	e.backend = nil
}

// SetPattern requests a color/blink pattern. Values are clamped (color to
// 0-255, periods to 0-60000ms); periods under 50ms are too fast to be
// perceived as blinking and indistinguishable from a hardware fault, so both
// are forced to zero. The write itself is asynchronous and best-effort;
// false is returned only when no backend was probed.
func (e *Engine) SetPattern(r, g, b, onMs, offMs int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil {
		return false
	}

	req := e.curr
	req.R = clamp(0, 255, r)
	req.G = clamp(0, 255, g)
	req.B = clamp(0, 255, b)
	req.OnMs = clamp(0, 60000, onMs)
	req.OffMs = clamp(0, 60000, offMs)
	if req.OnMs < 50 || req.OffMs < 50 {
		req.OnMs = 0
		req.OffMs = 0
	}
	req.Breathe = e.breatheEnabled
	e.start(req)

	return true
}

// SetBreathing toggles software breathing. A no-op when the active backend
// cannot breathe.
func (e *Engine) SetBreathing(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil || !e.backend.CanBreathe {
		return
	}

	e.breatheEnabled = enabled
	req := e.curr
	req.Breathe = enabled
	e.start(req)

	if e.bus != nil {
		e.bus.Publish(events.BreathingChangedEvent{
			Enabled:   enabled,
			Timestamp: e.clk.Now().UTC().Format(time.RFC3339),
		})
	}
}

// SetBrightness adjusts the global brightness level, clamped to 1-255.
// A level change while breathing adjusts the amplitude without disturbing
// the animation phase.
func (e *Engine) SetBrightness(level int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.backend == nil {
		return
	}

	req := e.curr
	req.Level = clamp(1, 255, level)
	e.start(req)

	if e.bus != nil {
		e.bus.Publish(events.BrightnessChangedEvent{
			Level:     req.Level,
			Timestamp: e.clk.Now().UTC().Format(time.RFC3339),
		})
	}
}

// CanBreathe reports whether the active backend supports software breathing.
func (e *Engine) CanBreathe() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend != nil && e.backend.CanBreathe
}

// BackendName returns the probed backend name, or "" when none matched.
func (e *Engine) BackendName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return ""
	}
	return e.backend.Name
}

// BreathTypeName returns the effective breathing ramp shape name.
func (e *Engine) BreathTypeName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backend == nil {
		return BreathDisabled.String()
	}
	return e.backend.breathType().String()
}

// Snapshot is a copy of the logical LED state plus derived info, for the
// API layer.
type Snapshot struct {
	R, G, B     int
	OnMs, OffMs int
	Level       int
	Breathe     bool
	Style       string
	Backend     string
}

// Snapshot returns the current logical state. The initialization sentinel is
// normalized to black.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.curr
	if s.R < 0 {
		s.R, s.G, s.B = 0, 0, 0
	}
	snap := Snapshot{
		R: s.R, G: s.G, B: s.B,
		OnMs: s.OnMs, OffMs: s.OffMs,
		Level:   s.Level,
		Breathe: s.Breathe,
		Style:   s.Style().String(),
	}
	if e.backend != nil {
		snap.Backend = e.backend.Name
	}
	return snap
}

// start is the single entry point for state transitions; e.mu must be held.
// It is idempotent and safe to call at any rate.
func (e *Engine) start(next State) {
	work := next
	work.sanitize()

	if work == e.curr {
		return
	}

	// Before changing the led state we need to wait a bit for the kernel
	// side to finish with the last change, then possibly reset the
	// blinking status and wait a bit more.
	restart := true

	oldStyle := e.curr.Style()
	newStyle := work.Style()

	// Exception: when already breathing and continuing to breathe with the
	// same timing, hardware blinking is not in use and the running step
	// timer already keeps the updates far enough apart. Only the amplitude
	// (and possibly color) needs to change.
	if oldStyle == StyleBreath && newStyle == StyleBreath &&
		e.curr.hasEqualTiming(&work) {
		restart = false
	}

	// A pure brightness change must adjust the breathing amplitude without
	// affecting the phase; anything else resets the step cursor.
	e.curr.Level = work.Level
	if e.curr != work {
		e.breathe.cursor = 0
	}

	e.curr = work

	metrics.PatternChanges.Inc()
	metrics.CurrentStyle.Set(float64(newStyle))
	if e.bus != nil {
		e.bus.Publish(events.PatternChangedEvent{
			R: work.R, G: work.G, B: work.B,
			OnMs: work.OnMs, OffMs: work.OffMs,
			Breathe:   work.Breathe,
			Level:     work.Level,
			Style:     newStyle.String(),
			Timestamp: e.clk.Now().UTC().Format(time.RFC3339),
		})
	}

	if !restart {
		return
	}

	// Stop a running step/apply timer; a pending settle timer stays put
	// and will pick up the updated state when it fires.
	if e.phase != phaseSettling {
		e.cancelTimer()
	}

	e.breathe.clear()
	if newStyle == StyleBreath {
		e.generateRamp(work.OnMs, work.OffMs)
	}

	// Hardware blink modes leave stale state behind that must be cleared
	// explicitly on the way in and on the way out.
	if oldStyle == StyleBlink || newStyle == StyleBlink {
		e.resetBlink = true
	}

	if e.phase != phaseSettling {
		e.phase = phaseSettling
		e.arm(kernelDelay, e.settleTick)
	}
}

// settleTick runs once the kernel settle delay has elapsed: clear stale
// blink state if needed, then either stop (no color), arm the repeating
// breathing timer, or arm the one-shot static apply.
func (e *Engine) settleTick() {
	e.phase = phaseIdle

	if e.resetBlink {
		// Blinking off - must be followed by an rgb set to take effect.
		e.setBlink(0, 0)
	}

	if !e.curr.hasColor() {
		e.resetBlink = true
	} else if e.breathe.delayMs > 0 {
		e.phase = phaseBreathing
		e.arm(time.Duration(e.breathe.delayMs)*time.Millisecond, e.stepTick)
	} else {
		e.phase = phaseApplying
		e.arm(kernelDelay, e.applyTick)
	}

	if e.resetBlink {
		e.setValue(0, 0, 0)
		e.resetBlink = false
	}
}

// applyTick writes the static blink configuration and color, scaled by the
// brightness level.
func (e *Engine) applyTick() {
	e.phase = phaseIdle

	r := ScaleValue(e.curr.R, e.curr.Level)
	g := ScaleValue(e.curr.G, e.curr.Level)
	b := ScaleValue(e.curr.B, e.curr.Level)

	e.setBlink(e.curr.OnMs, e.curr.OffMs)
	e.setValue(r, g, b)
}

// stepTick emits one breathing step: the base color scaled first by the
// brightness level, then by the ramp amplitude at the cursor.
func (e *Engine) stepTick() {
	if e.breathe.steps <= 0 {
		e.phase = phaseIdle
		return
	}

	if e.breathe.cursor >= e.breathe.steps {
		e.breathe.cursor = 0
	}
	v := int(e.breathe.values[e.breathe.cursor])
	e.breathe.cursor++

	r := ScaleValue(ScaleValue(e.curr.R, e.curr.Level), v)
	g := ScaleValue(ScaleValue(e.curr.G, e.curr.Level), v)
	b := ScaleValue(ScaleValue(e.curr.B, e.curr.Level), v)

	e.setValue(r, g, b)

	e.arm(time.Duration(e.breathe.delayMs)*time.Millisecond, e.stepTick)
}

// generateRamp regenerates the breathing curve for the ramp shape the active
// backend supports.
func (e *Engine) generateRamp(onMs, offMs int) {
	switch e.backend.breathType() {
	case BreathHardStep:
		e.breathe.generateHardStep(onMs, offMs)
	case BreathHalfSine:
		e.breathe.generateHalfSine(onMs, offMs)
	default:
		e.breathe.clear()
	}
	e.log.Debug("breathing ramp generated",
		"delay_ms", e.breathe.delayMs, "steps", e.breathe.steps)
}

// arm schedules fn after d, superseding any previously armed timer. The
// generation counter makes a stopped-but-already-fired timer a no-op.
func (e *Engine) arm(d time.Duration, fn func()) {
	e.timerGen++
	gen := e.timerGen
	e.timer = e.clk.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.timerGen {
			return
		}
		fn()
	})
}

// cancelTimer invalidates and stops the pending timer, if any.
func (e *Engine) cancelTimer() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) setBlink(onMs, offMs int) {
	e.log.Debug("led blink", "on_ms", onMs, "off_ms", offMs)
	e.backend.SetBlink(onMs, offMs)
}

func (e *Engine) setValue(r, g, b int) {
	e.log.Debug("led value", "r", r, "g", g, "b", b)
	e.backend.SetValue(r, g, b)
}

func clamp(lo, hi, val int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
