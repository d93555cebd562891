package led

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// callRecorder captures the backend write sequence for assertions.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// take returns the recorded calls and resets the recorder.
func (r *callRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := r.calls
	r.calls = nil
	return calls
}

func fakeBackend(rec *callRecorder, canBreathe bool, bt BreathType) *Backend {
	return &Backend{
		Name:       "fake",
		CanBreathe: canBreathe,
		BreathType: bt,
		BlinkFn:    func(onMs, offMs int) { rec.record("blink %d %d", onMs, offMs) },
		ValueFn:    func(r, g, b int) { rec.record("value %d %d %d", r, g, b) },
		CloseFn:    func() { rec.record("close") },
	}
}

func newTestEngine(t *testing.T, backend *Backend) (*Engine, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	e := NewEngine(Options{
		Candidates: []Candidate{{Name: backend.Name, Probe: func() *Backend { return backend }}},
		Clock:      mock,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if !e.Init() {
		t.Fatal("Init failed with a matching candidate")
	}
	return e, mock
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d calls %v, want %d calls %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// settle drains the init sequence so tests start from a known dark state.
func settle(rec *callRecorder, mock *clock.Mock) {
	mock.Add(kernelDelay)
	rec.take()
}

func TestEngine_InitTurnsLedOff(t *testing.T) {
	rec := &callRecorder{}
	_, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))

	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 0 0 0"})
}

func TestEngine_NoBackend(t *testing.T) {
	e := NewEngine(Options{
		Candidates: []Candidate{{Name: "none", Probe: func() *Backend { return nil }}},
		Clock:      clock.NewMock(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if e.Init() {
		t.Error("Init succeeded with no matching candidate")
	}
	if e.SetPattern(255, 0, 0, 0, 0) {
		t.Error("SetPattern succeeded with no backend")
	}
	if e.CanBreathe() {
		t.Error("CanBreathe true with no backend")
	}
	if got := e.BackendName(); got != "" {
		t.Errorf("BackendName = %q, want empty", got)
	}
}

func TestEngine_StaticApply(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))
	settle(rec, mock)

	if !e.SetPattern(255, 0, 0, 0, 0) {
		t.Fatal("SetPattern returned false")
	}
	mock.Add(kernelDelay) // settle
	mock.Add(kernelDelay) // apply
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 255 0 0"})

	// Re-requesting the identical pattern must not touch the hardware.
	e.SetPattern(255, 0, 0, 0, 0)
	mock.Add(100 * time.Millisecond)
	assertCalls(t, rec.take(), nil)
}

func TestEngine_BrightnessScalesStatic(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))
	settle(rec, mock)

	e.SetPattern(255, 0, 0, 0, 0)
	mock.Add(kernelDelay)
	mock.Add(kernelDelay)
	rec.take()

	e.SetBrightness(128)
	mock.Add(kernelDelay)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 128 0 0"})
}

func TestEngine_BlinkResetProtocol(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))
	settle(rec, mock)

	e.SetPattern(255, 0, 0, 0, 0)
	mock.Add(kernelDelay)
	mock.Add(kernelDelay)
	rec.take()

	// Entering a hardware blink: stale blink state is cleared with a
	// blink-off plus black write before the new configuration lands.
	e.SetPattern(0, 0, 255, 500, 500)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 0 0 0"})
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 500 500", "value 0 0 255"})

	// Leaving the blink towards off clears it again, with no apply after.
	e.SetPattern(0, 0, 0, 0, 0)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 0 0 0"})
	mock.Add(100 * time.Millisecond)
	assertCalls(t, rec.take(), nil)
}

func TestEngine_SettleCoalescesRequests(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))
	settle(rec, mock)

	// Two requests inside one settle window: only the latest is written.
	e.SetPattern(255, 0, 0, 0, 0)
	e.SetPattern(0, 255, 0, 0, 0)
	mock.Add(kernelDelay)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 0 255 0"})
}

func TestEngine_ShortPeriodsForceStatic(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, false, BreathDisabled))
	settle(rec, mock)

	e.SetPattern(0, 255, 0, 30, 500)
	snap := e.Snapshot()
	if snap.Style != "static" {
		t.Errorf("Style = %q, want static", snap.Style)
	}
	if snap.OnMs != 0 || snap.OffMs != 0 {
		t.Errorf("timing = %d/%d, want 0/0", snap.OnMs, snap.OffMs)
	}
}

func TestEngine_ColorlessClearsTiming(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	e.SetBreathing(true)
	e.SetPattern(0, 0, 0, 500, 500)
	snap := e.Snapshot()
	if snap.Style != "off" {
		t.Errorf("Style = %q, want off", snap.Style)
	}
	if snap.OnMs != 0 || snap.Breathe {
		t.Errorf("got on=%d breathe=%v, want 0/false", snap.OnMs, snap.Breathe)
	}
}

func TestEngine_BreathingDemotedBelowThreshold(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	e.SetBreathing(true)
	e.SetPattern(255, 0, 0, 100, 100)
	snap := e.Snapshot()
	if snap.Style != "blink" {
		t.Errorf("Style = %q, want blink (period too short to breathe)", snap.Style)
	}
}

func TestEngine_BreathingPersistsAcrossPatterns(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	// The setting is made while the LED is dark and must still apply to
	// the next pattern with workable timing.
	e.SetBreathing(true)
	e.SetPattern(0, 255, 0, 1000, 1000)
	snap := e.Snapshot()
	if snap.Style != "breath" {
		t.Errorf("Style = %q, want breath", snap.Style)
	}
}

func TestEngine_BreathingEmitsRampSteps(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	e.SetBreathing(true)
	e.SetPattern(0, 255, 0, 1000, 1000)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), nil) // settle arms the step timer, no write yet

	// 2000ms period at the 50ms floor: 40 steps per cycle.
	for n := 0; n < 40; n++ {
		mock.Add(50 * time.Millisecond)
	}
	calls := rec.take()
	if len(calls) != 40 {
		t.Fatalf("got %d step writes, want 40", len(calls))
	}
	if calls[0] != "value 0 0 0" {
		t.Errorf("first step = %q, want dark start", calls[0])
	}
	peak := false
	for _, c := range calls {
		if c == "value 0 255 0" {
			peak = true
		}
		if c[:5] == "blink" {
			t.Fatalf("unexpected blink write during breathing: %q", c)
		}
	}
	if !peak {
		t.Errorf("ramp never reached full intensity: %v", calls)
	}

	// The cycle wraps around without a restart.
	mock.Add(50 * time.Millisecond)
	assertCalls(t, rec.take(), []string{"value 0 0 0"})
}

func TestEngine_BrightnessKeepsBreathingPhase(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	e.SetBreathing(true)
	e.SetPattern(0, 255, 0, 1000, 1000)
	mock.Add(kernelDelay)
	for n := 0; n < 3; n++ {
		mock.Add(50 * time.Millisecond)
	}
	rec.take()

	// A pure amplitude change continues from the current cursor; the step
	// after it is ramp step 3 scaled down, not a restart from zero.
	e.SetBrightness(128)
	mock.Add(50 * time.Millisecond)
	assertCalls(t, rec.take(), []string{"value 0 30 0"})
}

func TestEngine_ColorChangeResetsBreathingPhase(t *testing.T) {
	rec := &callRecorder{}
	e, mock := newTestEngine(t, fakeBackend(rec, true, BreathHalfSine))
	settle(rec, mock)

	e.SetBreathing(true)
	e.SetPattern(0, 255, 0, 1000, 1000)
	mock.Add(kernelDelay)
	for n := 0; n < 3; n++ {
		mock.Add(50 * time.Millisecond)
	}
	rec.take()

	// Same timing, new color: the running timer keeps its cadence but the
	// ramp restarts from the dark end.
	e.SetPattern(255, 0, 0, 1000, 1000)
	mock.Add(50 * time.Millisecond)
	assertCalls(t, rec.take(), []string{"value 0 0 0"})
}

func TestEngine_BlinkWithoutBlinkControl(t *testing.T) {
	rec := &callRecorder{}
	backend := &Backend{
		Name:    "valueonly",
		ValueFn: func(r, g, b int) { rec.record("value %d %d %d", r, g, b) },
		CloseFn: func() {},
	}
	e, mock := newTestEngine(t, backend)
	settle(rec, mock)

	// Blink pattern on hardware without blink control degrades to a
	// steady color; the missing callbacks must never be dereferenced.
	e.SetPattern(10, 20, 30, 200, 200)
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"value 0 0 0"})
	mock.Add(kernelDelay)
	assertCalls(t, rec.take(), []string{"value 10 20 30"})
	mock.Add(time.Second)
	assertCalls(t, rec.take(), nil)
}

func TestEngine_QuirkOverrides(t *testing.T) {
	rec := &callRecorder{}
	backend := fakeBackend(rec, false, BreathDisabled)
	breathe := true
	bt := BreathHardStep
	mock := clock.NewMock()
	e := NewEngine(Options{
		Candidates:      []Candidate{{Name: backend.Name, Probe: func() *Backend { return backend }}},
		QuirkBreathing:  &breathe,
		QuirkBreathType: &bt,
		Clock:           mock,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if !e.Init() {
		t.Fatal("Init failed")
	}
	if !e.CanBreathe() {
		t.Error("quirk did not enable breathing")
	}
	if got := e.BreathTypeName(); got != "hard-step" {
		t.Errorf("BreathTypeName = %q, want hard-step", got)
	}
}

func TestEngine_Quit(t *testing.T) {
	rec := &callRecorder{}
	backend := fakeBackend(rec, false, BreathDisabled)
	e := NewEngine(Options{
		Candidates: []Candidate{{Name: backend.Name, Probe: func() *Backend { return backend }}},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if !e.Init() {
		t.Fatal("Init failed")
	}
	time.Sleep(3 * kernelDelay)
	rec.take()

	e.Quit()
	assertCalls(t, rec.take(), []string{"blink 0 0", "value 0 0 0", "close"})
	if got := e.BackendName(); got != "" {
		t.Errorf("BackendName after Quit = %q, want empty", got)
	}
}

func TestEngine_SnapshotNormalizesSentinel(t *testing.T) {
	e := NewEngine(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	snap := e.Snapshot()
	if snap.R != 0 || snap.G != 0 || snap.B != 0 {
		t.Errorf("color = %d/%d/%d, want black", snap.R, snap.G, snap.B)
	}
	if snap.Level != 255 {
		t.Errorf("Level = %d, want 255", snap.Level)
	}
	if snap.Style != "off" {
		t.Errorf("Style = %q, want off", snap.Style)
	}
}
