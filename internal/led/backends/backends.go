// Package backends holds the per-device sysfs LED drivers: parameter tables
// naming the control files a given device family exposes, plus the write
// ordering each family needs. Every probe function checks that all of its
// required files exist and are openable, and backs out cleanly otherwise.
package backends

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/smazurov/indicatord/internal/led"
)

// DefaultRoot is where the kernel exposes LED class devices.
const DefaultRoot = "/sys/class/leds"

// Candidates returns the probe candidates in an order that minimizes the
// chance of false positives: the most structurally distinctive control-file
// layouts come first, the most generic ones last. root overrides the sysfs
// LED directory, mainly for tests.
func Candidates(root string, log *slog.Logger) []led.Candidate {
	if root == "" {
		root = DefaultRoot
	}
	if log == nil {
		log = slog.Default()
	}

	return []led.Candidate{
		// Requires presence of unique 'on_off_ms' and 'rgb_start' files.
		{Name: "hammerhead", Probe: func() *led.Backend { return probeHammerhead(root, log) }},

		// Requires presence of unique 'amber' control directory.
		{Name: "htcvision", Probe: func() *led.Backend { return probeHTCVision(root, log) }},

		// Requires the lp55xx-style grpfreq/grppwm/blink device files.
		{Name: "bacon", Probe: func() *led.Backend { return probeBacon(root, log) }},

		// Requires 'brightness', 'max_brightness' and 'blink' control
		// files for red, green and blue channels.
		{Name: "f5121", Probe: func() *led.Backend { return probeF5121(root, log) }},

		// Requires only 'brightness' control files, but still needs
		// three directories for red, green and blue channels.
		{Name: "vanilla", Probe: func() *led.Backend { return probeVanilla(root, log) }},

		// Uses a subset of the "standard" rgb led control paths, so it
		// must be probed after the rgb backends to avoid false matches.
		{Name: "redgreen", Probe: func() *led.Backend { return probeRedGreen(root, log) }},

		// Single control channel with working brightness control and
		// max_brightness.
		{Name: "white", Probe: func() *led.Backend { return probeWhite(root, log) }},

		// Needs just one directory with a 'brightness' control file.
		{Name: "binary", Probe: func() *led.Backend { return probeBinary(root, log) }},
	}
}

// writeNumber writes value unconditionally, bypassing the change-diffing
// cache. Some controllers need redundant rewrites to relatch state.
func writeNumber(sv *led.SysfsValue, value int) {
	sv.SetText(strconv.Itoa(value))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// readNumber reads an integer from a sysfs attribute, -1 on any failure.
func readNumber(path string) int {
	if path == "" {
		return -1
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return -1
	}
	return value
}
