package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/google/uuid"
	"github.com/smazurov/indicatord/cmd"
	"github.com/smazurov/indicatord/internal/api"
	"github.com/smazurov/indicatord/internal/config"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/led/backends"
	"github.com/smazurov/indicatord/internal/logging"
	"github.com/smazurov/indicatord/internal/metrics"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED settings
	LedBackend         string `help:"Force a specific LED backend by name (empty = probe all)" toml:"led.backend" env:"LED_BACKEND"`
	LedSysfsRoot       string `help:"Root of the sysfs LED class tree" default:"/sys/class/leds" toml:"led.sysfs_root" env:"LED_SYSFS_ROOT"`
	LedBrightness      int    `help:"Initial brightness level (1-255)" default:"255" toml:"led.brightness" env:"LED_BRIGHTNESS"`
	LedBreathing       bool   `help:"Render blink patterns as breathing ramps when supported" default:"false" toml:"led.breathing" env:"LED_BREATHING"`
	LedQuirkBreathe    string `help:"Override probed breathing capability (enable, disable)" toml:"led.quirk_breathe" env:"LED_QUIRK_BREATHE"`
	LedQuirkBreathType string `help:"Override probed ramp shape (half-sine, hard-step)" toml:"led.quirk_breath_type" env:"LED_QUIRK_BREATH_TYPE"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLed     string `help:"LED engine logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingWatcher string `help:"Config watcher logging level" default:"info" toml:"logging.watcher" env:"LOGGING_WATCHER"`
}

// ledQuirks translates the string config knobs into engine overrides.
func ledQuirks(opts *Options, logger *slog.Logger) (breathing *bool, breathType *led.BreathType) {
	switch opts.LedQuirkBreathe {
	case "":
	case "enable":
		v := true
		breathing = &v
	case "disable":
		v := false
		breathing = &v
	default:
		logger.Warn("Ignoring unknown breathing quirk", "value", opts.LedQuirkBreathe)
	}

	if opts.LedQuirkBreathType != "" {
		if t, ok := led.ParseBreathType(opts.LedQuirkBreathType); ok {
			breathType = &t
		} else {
			logger.Warn("Ignoring unknown breath type quirk", "value", opts.LedQuirkBreathType)
		}
	}
	return breathing, breathType
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration with CLI > env > TOML precedence
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"led":     opts.LoggingLed,
				"api":     opts.LoggingAPI,
				"watcher": opts.LoggingWatcher,
			},
		})

		logger := logging.GetLogger("main")

		// Create event bus for in-process event handling
		eventBus := events.New()

		// Publish log entries to SSE subscribers
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				ID:         uuid.NewString(),
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		// Create the LED engine
		ledLogger := logging.GetLogger("led")
		quirkBreathing, quirkBreathType := ledQuirks(opts, ledLogger)
		engine := led.NewEngine(led.Options{
			Candidates:      backends.Candidates(opts.LedSysfsRoot, ledLogger),
			Backend:         opts.LedBackend,
			QuirkBreathing:  quirkBreathing,
			QuirkBreathType: quirkBreathType,
			Logger:          ledLogger,
			Bus:             eventBus,
		})

		// Watch the config file for runtime-tunable settings
		watcher := config.NewConfigWatcher(
			opts.Config,
			config.LoadRuntimeSettings,
			logging.GetLogger("watcher"),
		)
		watcher.OnReload(func(settings config.RuntimeSettings) {
			if settings.Led.Brightness > 0 {
				engine.SetBrightness(settings.Led.Brightness)
			}
			if settings.Led.Breathing != nil {
				engine.SetBreathing(*settings.Led.Breathing)
			}
			if len(settings.Logging) > 0 {
				logging.Initialize(config.LoadLoggingConfig(opts.Config))
			}
		})

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			Engine:            engine,
			EventBus:          eventBus,
			PrometheusHandler: metrics.Handler(),
		})

		hooks.OnStart(func() {
			// A device without an indicator LED is not an error; the
			// API stays up and mutating LED calls report 503.
			if engine.Init() {
				engine.SetBrightness(opts.LedBrightness)
				engine.SetBreathing(opts.LedBreathing)
				logger.Info("LED engine initialized",
					"backend", engine.BackendName(),
					"can_breathe", engine.CanBreathe())
			} else {
				logger.Warn("No LED hardware matched, running without LED control")
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher not started", "error", watchErr)
			}

			// Tell systemd we are ready; harmless outside systemd.
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}

			// Leaves the LED off and all control files closed.
			engine.Quit()
		})
	})

	// Add probe command for on-device diagnostics
	cli.Root().AddCommand(cmd.CreateProbeCmd())

	// Run the CLI
	cli.Run()
}
