package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// htcvisionPaths names the control files for one of the two channels (amber
// and green) on HTC Vision / Ace class hardware.
type htcvisionPaths struct {
	max   string // R
	val   string // W
	blink string // W
}

type htcvisionChannel struct {
	max   *led.SysfsValue
	val   *led.SysfsValue
	blink *led.SysfsValue
}

func newHTCVisionChannel(log *slog.Logger) *htcvisionChannel {
	return &htcvisionChannel{
		max:   led.NewSysfsValue(log),
		val:   led.NewSysfsValue(log),
		blink: led.NewSysfsValue(log),
	}
}

func (c *htcvisionChannel) close() {
	c.max.Close()
	c.val.Close()
	c.blink.Close()
}

func (c *htcvisionChannel) probe(p *htcvisionPaths) bool {
	ok := false

	if c.blink.OpenRW(p.blink) && c.val.OpenRW(p.val) {
		if c.max.OpenRO(p.max) {
			c.max.Refresh()
		}
		if c.max.Get() <= 0 {
			c.max.Assume(1)
		}
		ok = true
	}

	// The maximum is only sampled at probe time.
	c.max.Close()

	if !ok {
		c.val.Close()
		c.blink.Close()
	}
	return ok
}

func (c *htcvisionChannel) setValue(value int) {
	c.val.Set(led.ScaleValue(value, c.max.Get()))
}

// setBlink writes the blink toggle, which on this hardware has inverted
// polarity: zero enables blinking.
func (c *htcvisionChannel) setBlink(blink bool) {
	v := 1
	if blink {
		v = 0
	}
	c.blink.Set(v)
}

// htcvisionMapColor projects an rgb color onto the amber/green pair. Only
// one of the two channels can be lit; assume amber = ff7f00, green = 00ff00
// and choose by the r:g ratio. Blue contributes to intensity only.
func htcvisionMapColor(r, g, b int) (amber, green int) {
	if r*3 < g*4 {
		green = max(g, b)
	} else {
		amber = max(r, b)
	}
	return amber, green
}

func probeHTCVision(root string, log *slog.Logger) *led.Backend {
	paths := [2]htcvisionPaths{}
	for i, dir := range []string{"amber", "green"} {
		paths[i] = htcvisionPaths{
			max:   filepath.Join(root, dir, "max_brightness"),
			val:   filepath.Join(root, dir, "brightness"),
			blink: filepath.Join(root, dir, "blink"),
		}
	}

	channels := [2]*htcvisionChannel{
		newHTCVisionChannel(log),
		newHTCVisionChannel(log),
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
		Name:       "htcvision",
		CanBreathe: true,
		BreathType: led.BreathHalfSine,
		BlinkFn: func(onMs, offMs int) {
			blink := onMs > 0 && offMs > 0
			for _, c := range channels {
				c.setBlink(blink)
			}
		},
		ValueFn: func(r, g, b int) {
			amber, green := htcvisionMapColor(r, g, b)
			channels[0].setValue(amber)
			channels[1].setValue(green)
		},
		CloseFn: func() {
			for _, c := range channels {
				c.close()
			}
		},
	}
}
