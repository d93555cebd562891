package led

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/smazurov/indicatord/internal/metrics"
)

// SysfsValue is a cached handle onto one sysfs integer attribute. Writes go
// through only when the value actually changes; the cache can be primed
// ("assume") when writing one attribute is known to change another, or
// invalidated to force the next write through.
//
// Set and Refresh perform blocking file I/O and are meant to be called only
// from the engine's timer callbacks.
type SysfsValue struct {
	log  *slog.Logger
	path string
	fd   int
	curr int
}

// NewSysfsValue returns a closed-but-valid handle.
func NewSysfsValue(log *slog.Logger) *SysfsValue {
	if log == nil {
		log = slog.Default()
	}
	return &SysfsValue{log: log, fd: -1, curr: -1}
}

// OpenRW opens path for reading and writing. Missing files are reported at
// debug level only; most control files are optional for some backend.
func (sv *SysfsValue) OpenRW(path string) bool {
	return sv.open(path, unix.O_RDWR)
}

// OpenRO opens path read-only, for attributes like max_brightness that are
// only sampled at probe time.
func (sv *SysfsValue) OpenRO(path string) bool {
	return sv.open(path, unix.O_RDONLY)
}

func (sv *SysfsValue) open(path string, mode int) bool {
	sv.Close()

	if path == "" {
		return false
	}
	sv.path = path

	fd, err := unix.Open(path, mode, 0)
	if err != nil {
		if os.IsNotExist(err) {
			sv.log.Debug("sysfs open", "path", path, "error", err)
		} else {
			sv.log.Error("sysfs open", "path", path, "error", err)
		}
		sv.Close()
		return false
	}
	sv.fd = fd
	sv.log.Debug("sysfs opened", "path", path)

	// Current value is not fetched by default.
	return true
}

// Close releases the file descriptor and forgets the path. Safe to call on
// an already-closed handle.
func (sv *SysfsValue) Close() {
	if sv.fd != -1 {
		sv.log.Debug("sysfs closed", "path", sv.path)
		_ = unix.Close(sv.fd)
		sv.fd = -1
	}
	sv.path = ""
}

// Path returns the associated file path, for diagnostic logging.
func (sv *SysfsValue) Path() string {
	if sv.path == "" {
		return "unset"
	}
	return sv.path
}

// Get returns the cached value, or -1 when unknown.
func (sv *SysfsValue) Get() int {
	return sv.curr
}

// Set writes value to the file unless the cache already holds it. Write
// failures are logged and counted but otherwise ignored; the cache is
// updated regardless so future diffing stays consistent with what the state
// machine believes.
func (sv *SysfsValue) Set(value int) bool {
	prev := sv.curr
	sv.curr = value

	if prev == sv.curr {
		return true
	}

	// If the file is closed assume it was optional and stay quiet about
	// transitions related to it.
	if sv.fd == -1 {
		return true
	}

	sv.log.Debug("sysfs write", "path", sv.path, "from", prev, "to", value)

	data := strconv.Itoa(value)
	metrics.SysfsWrites.Inc()

	done, err := unix.Write(sv.fd, []byte(data))
	if err == nil && done == len(data) {
		return true
	}

	metrics.SysfsWriteErrors.Inc()
	if err != nil {
		sv.log.Error("sysfs write", "path", sv.path, "error", err)
	} else {
		sv.log.Error("sysfs write", "path", sv.path, "error", "partial write")
	}
	return false
}

// SetText writes a raw string to the file, bypassing the value cache. Some
// attributes take multi-field values like "on_ms off_ms" pairs that do not
// fit the single-integer caching scheme.
func (sv *SysfsValue) SetText(text string) bool {
	if sv.fd == -1 {
		return true
	}

	sv.log.Debug("sysfs write", "path", sv.path, "text", text)
	metrics.SysfsWrites.Inc()

	done, err := unix.Write(sv.fd, []byte(text))
	if err == nil && done == len(text) {
		return true
	}

	metrics.SysfsWriteErrors.Inc()
	if err != nil {
		sv.log.Error("sysfs write", "path", sv.path, "error", err)
	} else {
		sv.log.Error("sysfs write", "path", sv.path, "error", "partial write")
	}
	return false
}

// Assume updates the cached value without writing. Used when writing one
// sysfs attribute is known to also change another, so that the next Set on
// the other attribute can still be skipped.
func (sv *SysfsValue) Assume(value int) {
	prev := sv.curr
	sv.curr = value

	if prev != sv.curr && sv.fd != -1 {
		sv.log.Debug("sysfs assume", "path", sv.path, "from", prev, "to", value)
	}
}

// Invalidate forgets the cached value so the next Set writes through even if
// the value looks unchanged.
func (sv *SysfsValue) Invalidate() {
	prev := sv.curr
	sv.curr = -1

	if prev != sv.curr && sv.fd != -1 {
		sv.log.Debug("sysfs invalidated", "path", sv.path)
	}
}

// Refresh reads the current value from the file into the cache. Used for
// obtaining initial values (max_brightness at probe time) or when the cache
// is known to be stale.
func (sv *SysfsValue) Refresh() bool {
	if sv.fd == -1 {
		sv.Invalidate()
		return false
	}

	var buf [256]byte
	done, err := unix.Pread(sv.fd, buf[:], 0)
	if err != nil {
		sv.log.Error("sysfs read", "path", sv.path, "error", err)
		sv.Invalidate()
		return false
	}
	if done == 0 {
		sv.log.Error("sysfs read", "path", sv.path, "error", "EOF")
		sv.Invalidate()
		return false
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(buf[:done])))
	if err != nil {
		sv.log.Error("sysfs read", "path", sv.path, "error", err)
		sv.Invalidate()
		return false
	}

	sv.log.Debug("sysfs read", "path", sv.path, "from", sv.curr, "to", value)
	sv.curr = value
	return true
}
