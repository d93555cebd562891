package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// whiteChannel drives a single white led, as found on the Moto G 2nd gen.
type whiteChannel struct {
	maxVal int
	val    *led.SysfsValue
}

func (c *whiteChannel) probe(root string, log *slog.Logger) bool {
	c.maxVal = readNumber(filepath.Join(root, "white", "max_brightness"))
	if c.maxVal <= 0 {
		return false
	}

	c.val = led.NewSysfsValue(log)
	if !c.val.OpenRW(filepath.Join(root, "white", "brightness")) {
		return false
	}

	return true
}

func probeWhite(root string, log *slog.Logger) *led.Backend {
	c := &whiteChannel{maxVal: -1}
	if !c.probe(root, log) {
		if c.val != nil {
			c.val.Close()
		}
		return nil
	}

	return &led.Backend{
		Name:       "white",
		CanBreathe: true,
		BreathType: led.BreathHalfSine,
		ValueFn: func(r, g, b int) {
			// Monochrome: take the maximum of the requested rgb.
			white := max(r, g, b)
			c.val.Set(led.ScaleValue(white, c.maxVal))
		},
		CloseFn: func() {
			c.val.Close()
		},
	}
}
