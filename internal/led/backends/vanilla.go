package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// vanillaPaths names the control files of one channel in the "mainstream"
// three-directory RGB layout. Only brightness is mandatory; the blink delay
// pair and the blink toggle are optional extras some kernels add.
type vanillaPaths struct {
	max    string // R
	val    string // W
	on     string // W
	off    string // W
	blink  string // W
	maxVal int    // fixed maximum when the max path is empty
}

// vanillaChannel drives one color channel.
type vanillaChannel struct {
	maxVal int
	val    *led.SysfsValue
	on     *led.SysfsValue
	off    *led.SysfsValue
	blink  *led.SysfsValue
}

func newVanillaChannel(log *slog.Logger) *vanillaChannel {
	return &vanillaChannel{
		maxVal: -1,
		val:    led.NewSysfsValue(log),
		on:     led.NewSysfsValue(log),
		off:    led.NewSysfsValue(log),
		blink:  led.NewSysfsValue(log),
	}
}

func (c *vanillaChannel) close() {
	c.val.Close()
	c.on.Close()
	c.off.Close()
	c.blink.Close()
}

func (c *vanillaChannel) probe(p *vanillaPaths) bool {
	c.close()

	// Maximum brightness can be read from a file or fixed per device.
	if p.max != "" {
		c.maxVal = readNumber(p.max)
	} else {
		c.maxVal = p.maxVal
	}
	if c.maxVal <= 0 {
		return false
	}

	// Brightness control is always required.
	if !c.val.OpenRW(p.val) {
		c.close()
		return false
	}

	// The on/off period controls are optional, but both are needed if one
	// is present.
	if c.on.OpenRW(p.on) {
		if !c.off.OpenRW(p.off) {
			c.on.Close()
		}
	}

	// Having a 'blink' control file is optional too.
	c.blink.OpenRW(p.blink)

	return true
}

func (c *vanillaChannel) setValue(value int) {
	value = led.ScaleValue(value, c.maxVal)
	if c.val.Get() != value {
		// Writing brightness resets the hardware blink state.
		c.blink.Invalidate()
		c.val.Set(value)
	}

	// The blink toggle reflects whether a blink period is configured; it
	// must be rewritten whenever brightness changes.
	blink := 0
	if c.on.Get() > 0 && c.off.Get() > 0 {
		blink = 1
	}
	c.blink.Set(blink)
}

func (c *vanillaChannel) setBlink(onMs, offMs int) {
	// Blinking config is taken into use when the brightness sysfs is
	// written to, so cached brightness must be invalidated whenever the
	// blink configuration changes.
	if c.on.Get() != onMs {
		c.on.Set(onMs)
		c.val.Invalidate()
		c.blink.Invalidate()
	}
	if c.off.Get() != offMs {
		c.off.Set(offMs)
		c.val.Invalidate()
		c.blink.Invalidate()
	}
}

// vanillaPathTable lists known path layouts per device family.
func vanillaPathTable(root string) [][3]vanillaPaths {
	j := func(elem ...string) string { return filepath.Join(elem...) }

	return [][3]vanillaPaths{
		// vanilla (jolla 1)
		{
			{
				on:  j(root, "led:rgb_red/blink_delay_on"),
				off: j(root, "led:rgb_red/blink_delay_off"),
				val: j(root, "led:rgb_red/brightness"),
				max: j(root, "led:rgb_red/max_brightness"),
			},
			{
				on:  j(root, "led:rgb_green/blink_delay_on"),
				off: j(root, "led:rgb_green/blink_delay_off"),
				val: j(root, "led:rgb_green/brightness"),
				max: j(root, "led:rgb_green/max_brightness"),
			},
			{
				on:  j(root, "led:rgb_blue/blink_delay_on"),
				off: j(root, "led:rgb_blue/blink_delay_off"),
				val: j(root, "led:rgb_blue/brightness"),
				max: j(root, "led:rgb_blue/max_brightness"),
			},
		},
		// i9300 (galaxy s3 international)
		{
			{
				on:    j(root, "led_r/delay_on"),
				off:   j(root, "led_r/delay_off"),
				val:   j(root, "led_r/brightness"),
				max:   j(root, "led_r/max_brightness"),
				blink: j(root, "led_r/blink"),
			},
			{
				on:    j(root, "led_g/delay_on"),
				off:   j(root, "led_g/delay_off"),
				val:   j(root, "led_g/brightness"),
				max:   j(root, "led_g/max_brightness"),
				blink: j(root, "led_g/blink"),
			},
			{
				on:    j(root, "led_b/delay_on"),
				off:   j(root, "led_b/delay_off"),
				val:   j(root, "led_b/brightness"),
				max:   j(root, "led_b/max_brightness"),
				blink: j(root, "led_b/blink"),
			},
		},
		// yuga (sony xperia z)
		{
			{val: j(root, "lm3533-red/brightness"), maxVal: 255},
			{val: j(root, "lm3533-green/brightness"), maxVal: 255},
			{val: j(root, "lm3533-blue/brightness"), maxVal: 255},
		},
		// onyx (oneplus x)
		{
			{
				val:   j(root, "red/brightness"),
				max:   j(root, "red/max_brightness"),
				on:    j(root, "red/pause_hi"),
				off:   j(root, "red/pause_lo"),
				blink: j(root, "red/blink"),
			},
			{
				val:   j(root, "green/brightness"),
				max:   j(root, "green/max_brightness"),
				on:    j(root, "green/pause_hi"),
				off:   j(root, "green/pause_lo"),
				blink: j(root, "green/blink"),
			},
			{
				val:   j(root, "blue/brightness"),
				max:   j(root, "blue/max_brightness"),
				on:    j(root, "blue/pause_hi"),
				off:   j(root, "blue/pause_lo"),
				blink: j(root, "blue/blink"),
			},
		},
	}
}

func probeVanilla(root string, log *slog.Logger) *led.Backend {
	channels := [3]*vanillaChannel{
		newVanillaChannel(log),
		newVanillaChannel(log),
		newVanillaChannel(log),
	}

	matched := false
	for _, paths := range vanillaPathTable(root) {
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
		Name:       "vanilla",
		CanBreathe: true,
		BreathType: led.BreathHalfSine,
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
