package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// baconPaths names the lp55xx-style control files of one channel on OnePlus
// One class hardware. The grpfreq/grppwm/blink/ledreset files live under the
// shared device directory, so writes to them go through the red channel only.
type baconPaths struct {
	val      string // W
	grpfreq  string // W
	grppwm   string // W
	blink    string // W
	ledreset string // W
}

type baconChannel struct {
	maxVal   int
	val      *led.SysfsValue
	grpfreq  *led.SysfsValue
	grppwm   *led.SysfsValue
	blink    *led.SysfsValue
	ledreset *led.SysfsValue
}

func newBaconChannel(log *slog.Logger) *baconChannel {
	return &baconChannel{
		maxVal:   255,
		val:      led.NewSysfsValue(log),
		grpfreq:  led.NewSysfsValue(log),
		grppwm:   led.NewSysfsValue(log),
		blink:    led.NewSysfsValue(log),
		ledreset: led.NewSysfsValue(log),
	}
}

func (c *baconChannel) close() {
	c.val.Close()
	c.grpfreq.Close()
	c.grppwm.Close()
	c.blink.Close()
	c.ledreset.Close()
}

func (c *baconChannel) probe(p *baconPaths) bool {
	c.close()

	if !c.val.OpenRW(p.val) ||
		!c.grpfreq.OpenRW(p.grpfreq) ||
		!c.grppwm.OpenRW(p.grppwm) ||
		!c.blink.OpenRW(p.blink) ||
		!c.ledreset.OpenRW(p.ledreset) {
		c.close()
		return false
	}

	return true
}

// baconState carries the blink parameters shared by all three channels.
// Writing the brightness files disturbs the blink setup, so the group
// registers must be reprogrammed whenever a color is written while blinking.
type baconState struct {
	blink bool
	freq  int
	pwm   int
}

func (s *baconState) configure(onMs, offMs int) {
	if onMs > 0 && offMs > 0 {
		totalMs := onMs + offMs

		// The led blinks about once per second when freq is 20,
		// i.e. 1000ms / 20 = 50.
		s.freq = totalMs / 50

		// pwm is the on:off duty ratio, 0 = always off and 255 =
		// always on. The low 4 bits are ignored, so round up.
		s.pwm = (onMs * 255) / totalMs
		if s.pwm > 0 && s.pwm < 16 {
			s.pwm = 16
		}

		s.blink = true
	} else {
		s.blink = false
		s.freq = 0
		s.pwm = 0
	}
}

func probeBacon(root string, log *slog.Logger) *led.Backend {
	paths := [3]baconPaths{}
	for i, dir := range []string{"red", "green", "blue"} {
		paths[i] = baconPaths{
			val:      filepath.Join(root, dir, "brightness"),
			grpfreq:  filepath.Join(root, dir, "device", "grpfreq"),
			grppwm:   filepath.Join(root, dir, "device", "grppwm"),
			blink:    filepath.Join(root, dir, "device", "blink"),
			ledreset: filepath.Join(root, dir, "device", "ledreset"),
		}
	}

	channels := [3]*baconChannel{
		newBaconChannel(log),
		newBaconChannel(log),
		newBaconChannel(log),
	}

	for i := range channels {
		if !channels[i].probe(&paths[i]) {
			for _, c := range channels {
				c.close()
			}
			return nil
		}
	}

	// The group registers are device-wide; drive them via channel 0.
	ctl := channels[0]
	state := &baconState{}

	return &led.Backend{
		Name: "bacon",

		// Reprogramming the controller is too heavy for software ramps.
		CanBreathe: false,

		EnableFn: func(enable bool) {
			if !enable {
				writeNumber(ctl.ledreset, 1)
			}
		},
		BlinkFn: func(onMs, offMs int) {
			state.configure(onMs, offMs)
			if state.blink {
				writeNumber(ctl.grpfreq, state.freq)
				writeNumber(ctl.grppwm, state.pwm)
			}
			writeNumber(ctl.blink, boolToInt(state.blink))
		},
		ValueFn: func(r, g, b int) {
			// Brightness writes knock out an ongoing blink, so the
			// controller is reset and reprogrammed around them.
			if state.blink {
				writeNumber(ctl.ledreset, 0)
			}

			writeNumber(channels[0].val, led.ScaleValue(r, channels[0].maxVal))
			writeNumber(channels[1].val, led.ScaleValue(g, channels[1].maxVal))
			writeNumber(channels[2].val, led.ScaleValue(b, channels[2].maxVal))

			if state.blink {
				writeNumber(ctl.grpfreq, state.freq)
				writeNumber(ctl.grppwm, state.pwm)
				writeNumber(ctl.blink, 1)
			} else {
				writeNumber(ctl.blink, 0)
			}
		},
		CloseFn: func() {
			for _, c := range channels {
				c.close()
			}
		},
	}
}
