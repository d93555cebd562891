package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// f5121Paths names the control files of one channel on Sony Xperia X class
// hardware. maxOverride, when positive, is written to the max_brightness
// attribute at probe time instead of trusting its current content.
type f5121Paths struct {
	max         string // RW
	val         string // W
	blink       string // W
	maxOverride int
}

type f5121Channel struct {
	max   *led.SysfsValue
	val   *led.SysfsValue
	blink *led.SysfsValue

	// Blink and brightness writes disturb each other on this hardware,
	// so the requested blink state is only latched here and both files
	// are written together from setValue.
	controlBlink bool
}

func newF5121Channel(log *slog.Logger) *f5121Channel {
	return &f5121Channel{
		max:   led.NewSysfsValue(log),
		val:   led.NewSysfsValue(log),
		blink: led.NewSysfsValue(log),
	}
}

func (c *f5121Channel) close() {
	c.max.Close()
	c.val.Close()
	c.blink.Close()
}

func (c *f5121Channel) probe(p *f5121Paths) bool {
	ok := false

	// Probe control files in reverse existence likelihood order.
	// Practically all led control directories have 'brightness', most
	// have 'max_brightness' while only some have 'blink'.
	if c.blink.OpenRW(p.blink) && c.max.OpenRW(p.max) {
		if p.maxOverride > 0 {
			c.max.Set(p.maxOverride)
		}
		c.max.Refresh()

		if c.max.Get() > 0 && c.val.OpenRW(p.val) {
			ok = true
		}
	}

	// The maximum is only needed at probe time.
	c.max.Close()

	if !ok {
		c.val.Close()
		c.blink.Close()
	}
	return ok
}

func (c *f5121Channel) setValue(value int) {
	value = led.ScaleValue(value, c.max.Get())

	// Ignore blinking requests while brightness is zero.
	if value <= 0 {
		c.controlBlink = false
	}

	// Switching between blinking and static modes can leave stale sysfs
	// state behind depending on the device, so the transitions are
	// ordered: entering blink writes brightness=0 before blink=1, and
	// leaving it writes blink=0 before the brightness. The engine's
	// settle delay separates the reset and reprogram steps.
	if c.controlBlink {
		c.val.Set(0)
		c.blink.Set(1)
	} else {
		c.blink.Set(0)
		c.val.Set(value)
	}
}

func (c *f5121Channel) setBlink(onMs, offMs int) {
	c.controlBlink = onMs > 0 && offMs > 0
}

func f5121PathTable(root string) [][3]f5121Paths {
	j := filepath.Join

	table := [][3]f5121Paths{}

	// f5121 (sony xperia x); the kernel reports a misleading maximum.
	row := [3]f5121Paths{}
	for i, dir := range []string{"led:rgb_red", "led:rgb_green", "led:rgb_blue"} {
		row[i] = f5121Paths{
			max:         j(root, dir, "max_brightness"),
			val:         j(root, dir, "brightness"),
			blink:       j(root, dir, "blink"),
			maxOverride: 255,
		}
	}
	table = append(table, row)

	row = [3]f5121Paths{}
	for i, dir := range []string{"red", "green", "blue"} {
		row[i] = f5121Paths{
			max:   j(root, dir, "max_brightness"),
			val:   j(root, dir, "brightness"),
			blink: j(root, dir, "blink"),
		}
	}
	table = append(table, row)

	return table
}

func probeF5121(root string, log *slog.Logger) *led.Backend {
	channels := [3]*f5121Channel{
		newF5121Channel(log),
		newF5121Channel(log),
		newF5121Channel(log),
	}

	matched := false
	for _, paths := range f5121PathTable(root) {
		if channels[0].probe(&paths[0]) &&
			channels[1].probe(&paths[1]) &&
			channels[2].probe(&paths[2]) {
			matched = true
			break
		}
	}
	if !matched {
		for _, c := range channels {
			c.close()
		}
		return nil
	}

	return &led.Backend{
		Name: "f5121",

		// Prefer the built-in soft blinking over software ramps.
		CanBreathe: false,

		BlinkFn: func(onMs, offMs int) {
			for _, c := range channels {
				c.setBlink(onMs, offMs)
			}
		},
		ValueFn: func(r, g, b int) {
			channels[0].setValue(r)
			channels[1].setValue(g)
			channels[2].setValue(b)
		},
		CloseFn: func() {
			for _, c := range channels {
				c.close()
			}
		},
	}
}
