package backends

import (
	"log/slog"
	"path/filepath"

	"github.com/smazurov/indicatord/internal/led"
)

// probeBinary matches a lone on/off indicator behind a button-backlight
// brightness file. This is the probe of last resort.
func probeBinary(root string, log *slog.Logger) *led.Backend {
	val := led.NewSysfsValue(log)
	if !val.OpenRW(filepath.Join(root, "button-backlight", "brightness")) {
		return nil
	}

	return &led.Backend{
		Name: "binary",

		// No hardware blink; software stepping simulates it.
		CanBreathe: true,
		BreathType: led.BreathHardStep,

		ValueFn: func(r, g, b int) {
			// Only on/off control exists; any nonzero rgb lights
			// the led at the logical maximum.
			mono := 0
			if r != 0 || g != 0 || b != 0 {
				mono = 255
			}
			val.Set(led.ScaleValue(mono, 1))
		},
		CloseFn: func() {
			val.Close()
		},
	}
}
