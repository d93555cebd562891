package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// redgreenPaths names the control files of the two-channel red+green layout.
// It is a subset of the standard rgb paths, so this backend must be probed
// after the full rgb ones.
type redgreenPaths struct {
	max string // R
	val string // W
}

type redgreenChannel struct {
	max *led.SysfsValue
	val *led.SysfsValue
}

func newRedGreenChannel(log *slog.Logger) *redgreenChannel {
	return &redgreenChannel{
		max: led.NewSysfsValue(log),
		val: led.NewSysfsValue(log),
	}
}

func (c *redgreenChannel) close() {
	c.max.Close()
	c.val.Close()
}

func (c *redgreenChannel) probe(p *redgreenPaths) bool {
	ok := false

	if c.val.OpenRW(p.val) {
		if c.max.OpenRO(p.max) {
			c.max.Refresh()
		}
		ok = c.max.Get() > 0
	}

	// The maximum is only sampled at probe time.
	c.max.Close()

	if !ok {
		c.val.Close()
	}
	return ok
}

func (c *redgreenChannel) setValue(value int) {
	c.val.Set(led.ScaleValue(value, c.max.Get()))
}

// redgreenMapColor projects rgb onto the red+green pair. Red and green
// intensities pass through when the pattern defines them; a blue-only color
// must not leave the led dark, so blue drives both channels.
func redgreenMapColor(r, g, b int) (red, green int) {
	if r != 0 || g != 0 {
		return r, g
	}
	return b, b
}

func probeRedGreen(root string, log *slog.Logger) *led.Backend {
	paths := [2]redgreenPaths{}
	for i, dir := range []string{"red", "green"} {
		paths[i] = redgreenPaths{
			max: filepath.Join(root, dir, "max_brightness"),
			val: filepath.Join(root, dir, "brightness"),
		}
	}

	channels := [2]*redgreenChannel{
		newRedGreenChannel(log),
		newRedGreenChannel(log),
	}

	for i := range channels {
		if !channels[i].probe(&paths[i]) {
			for _, c := range channels {
				c.close()
			}
			return nil
		}
	}

	return &led.Backend{
		Name: "redgreen",

		// No hardware blink; software stepping simulates it.
		CanBreathe: true,
		BreathType: led.BreathHardStep,

		ValueFn: func(r, g, b int) {
			red, green := redgreenMapColor(r, g, b)
			channels[0].setValue(red)
			channels[1].setValue(green)
		},
		CloseFn: func() {
			for _, c := range channels {
				c.close()
			}
		},
	}
}
