package led

import "testing"

func TestStateStyle(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Style
	}{
		{"black", State{}, StyleOff},
		{"black with timing", State{OnMs: 500, OffMs: 500}, StyleOff},
		{"solid color", State{R: 255, Level: 255}, StyleStatic},
		{"color missing off period", State{G: 255, OnMs: 500}, StyleStatic},
		{"color with timing", State{B: 255, OnMs: 500, OffMs: 500}, StyleBlink},
		{"breathing", State{R: 128, OnMs: 500, OffMs: 500, Breathe: true}, StyleBreath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Style(); got != tt.want {
				t.Errorf("Style() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   State
		want State
	}{
		{
			name: "no color zeroes timing and breathing",
			in:   State{OnMs: 500, OffMs: 500, Breathe: true, Level: 255},
			want: State{Level: 255},
		},
		{
			name: "missing off period disables blinking",
			in:   State{R: 255, OnMs: 500, Breathe: true, Level: 255},
			want: State{R: 255, Level: 255},
		},
		{
			name: "short period demotes breathing to blinking",
			in:   State{R: 255, OnMs: 100, OffMs: 100, Breathe: true, Level: 255},
			want: State{R: 255, OnMs: 100, OffMs: 100, Level: 255},
		},
		{
			name: "valid breathing untouched",
			in:   State{G: 255, OnMs: 250, OffMs: 250, Breathe: true, Level: 128},
			want: State{G: 255, OnMs: 250, OffMs: 250, Breathe: true, Level: 128},
		},
		{
			name: "valid blinking untouched",
			in:   State{B: 64, OnMs: 500, OffMs: 1000, Level: 255},
			want: State{B: 64, OnMs: 500, OffMs: 1000, Level: 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.sanitize()
			if got != tt.want {
				t.Errorf("sanitize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStyleString(t *testing.T) {
	tests := []struct {
		style Style
		want  string
	}{
		{StyleOff, "off"},
		{StyleStatic, "static"},
		{StyleBlink, "blink"},
		{StyleBreath, "breath"},
		{Style(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.style.String(); got != tt.want {
			t.Errorf("Style(%d).String() = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestParseBreathType(t *testing.T) {
	tests := []struct {
		in   string
		want BreathType
		ok   bool
	}{
		{"half-sine", BreathHalfSine, true},
		{"hard-step", BreathHardStep, true},
		{"disabled", BreathDisabled, true},
		{"sine", BreathDisabled, false},
		{"", BreathDisabled, false},
	}
	for _, tt := range tests {
		got, ok := ParseBreathType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBreathType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
