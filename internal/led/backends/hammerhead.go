package backends

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// hammerheadPaths names the control files of one channel on Nexus 5 class
// hardware. All four files must exist for the probe to match.
type hammerheadPaths struct {
	max    string // R
	val    string // W
	onOff  string // W, takes "on_ms off_ms" pairs
	enable string // W
}

type hammerheadChannel struct {
	maxVal int
	val    *led.SysfsValue
	onOff  *led.SysfsValue
	enable *led.SysfsValue
}

func newHammerheadChannel(log *slog.Logger) *hammerheadChannel {
	return &hammerheadChannel{
		maxVal: -1,
		val:    led.NewSysfsValue(log),
		onOff:  led.NewSysfsValue(log),
		enable: led.NewSysfsValue(log),
	}
}

func (c *hammerheadChannel) close() {
	c.val.Close()
	c.onOff.Close()
	c.enable.Close()
}

func (c *hammerheadChannel) probe(p *hammerheadPaths) bool {
	c.close()

	if c.maxVal = readNumber(p.max); c.maxVal <= 0 {
		return false
	}

	if !c.val.OpenRW(p.val) ||
		!c.onOff.OpenRW(p.onOff) ||
		!c.enable.OpenRW(p.enable) {
		c.close()
		return false
	}

	return true
}

func (c *hammerheadChannel) setEnabled(enable bool) {
	v := 0
	if enable {
		v = 1
	}
	c.enable.Set(v)
}

func (c *hammerheadChannel) setValue(value int) {
	c.val.Set(led.ScaleValue(value, c.maxVal))
}

func (c *hammerheadChannel) setBlink(onMs, offMs int) {
	c.onOff.SetText(fmt.Sprintf("%d %d", onMs, offMs))
}

func probeHammerhead(root string, log *slog.Logger) *led.Backend {
	paths := [3]hammerheadPaths{}
	for i, dir := range []string{"red", "green", "blue"} {
		paths[i] = hammerheadPaths{
			max:    filepath.Join(root, dir, "max_brightness"),
			val:    filepath.Join(root, dir, "brightness"),
			onOff:  filepath.Join(root, dir, "on_off_ms"),
			enable: filepath.Join(root, dir, "rgb_start"),
		}
	}

	channels := [3]*hammerheadChannel{
		newHammerheadChannel(log),
		newHammerheadChannel(log),
		newHammerheadChannel(log),
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
		Name: "hammerhead",

		// Changing led parameters is slow and cpu-heavy enough on this
		// hardware that software breathing cannot be offered.
		CanBreathe: false,

		EnableFn: func(enable bool) {
			for _, c := range channels {
				c.setEnabled(enable)
			}
		},
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
