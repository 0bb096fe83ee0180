package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/strobed/cmd"
	"github.com/smazurov/strobed/internal/api"
	"github.com/smazurov/strobed/internal/config"
	"github.com/smazurov/strobed/internal/events"
	"github.com/smazurov/strobed/internal/logging"
	"github.com/smazurov/strobed/internal/metrics"
	"github.com/smazurov/strobed/internal/mqtt"
	"github.com/smazurov/strobed/internal/sequence"
	"github.com/smazurov/strobed/internal/strobe"
	"github.com/smazurov/strobed/internal/torch"
	"github.com/smazurov/strobed/internal/updater"
	"github.com/smazurov/strobed/internal/version"
	"github.com/spf13/cobra"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Address to listen on" short:"p" default:":8080" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Engine settings
	EngineAutoStart bool `help:"Start executing as soon as an effect is enqueued" default:"true" toml:"engine.auto_start" env:"ENGINE_AUTO_START"`

	// Torch settings
	TorchMode string `help:"Torch backend (sysfs, gpio, noop, empty for auto-detect)" default:"" toml:"torch.mode" env:"TORCH_MODE"`
	TorchLED  string `help:"sysfs LED name for the sysfs backend" default:"" toml:"torch.led" env:"TORCH_LED"`
	GPIOChip  string `help:"GPIO chip for the gpio backend" default:"gpiochip0" toml:"torch.gpio_chip" env:"TORCH_GPIO_CHIP"`
	GPIOLine  int    `help:"GPIO line offset for the gpio backend" default:"0" toml:"torch.gpio_line" env:"TORCH_GPIO_LINE"`

	// Sequences settings
	SequencesFile string `help:"Sequence definitions file" default:"sequences.toml" toml:"sequences.file" env:"SEQUENCES_FILE"`

	// MQTT settings
	MQTTEnabled  bool   `help:"Publish torch and engine state over MQTT" default:"false" toml:"mqtt.enabled" env:"MQTT_ENABLED"`
	MQTTBroker   string `help:"MQTT broker URL" default:"tcp://localhost:1883" toml:"mqtt.broker" env:"MQTT_BROKER"`
	MQTTClientID string `help:"MQTT client identifier" default:"strobed" toml:"mqtt.client_id" env:"MQTT_CLIENT_ID"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Update settings
	UpdateEnabled    bool   `help:"Enable self-update endpoints" default:"false" toml:"update.enabled" env:"UPDATE_ENABLED"`
	UpdateRepository string `help:"GitHub repository for releases" default:"smazurov/strobed" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `help:"Include prereleases when checking for updates" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingEngine   string `help:"Engine logging level" default:"info" toml:"logging.engine" env:"LOGGING_ENGINE"`
	LoggingAPI      string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingTorch    string `help:"Torch logging level" default:"info" toml:"logging.torch" env:"LOGGING_TORCH"`
	LoggingMQTT     string `help:"MQTT logging level" default:"info" toml:"logging.mqtt" env:"LOGGING_MQTT"`
	LoggingSequence string `help:"Sequence store logging level" default:"info" toml:"logging.sequence" env:"LOGGING_SEQUENCE"`
}

func main() {
	var rootCmd *cobra.Command

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, rootCmd); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"engine":   opts.LoggingEngine,
				"api":      opts.LoggingAPI,
				"torch":    opts.LoggingTorch,
				"mqtt":     opts.LoggingMQTT,
				"sequence": opts.LoggingSequence,
			},
		})

		logger := logging.GetLogger("main")
		logger.Info("Starting strobed", "version", version.String())

		eventBus := events.New()

		// Forward log entries onto the bus so the SSE log stream sees them
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(events.LogEntryEvent{
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
				Level:      entry.Level,
				Module:     entry.Module,
				Message:    entry.Message,
				Attributes: entry.Attributes,
			})
		})

		torchCtrl, err := torch.New(torch.Config{
			Mode:     opts.TorchMode,
			LED:      opts.TorchLED,
			GPIOChip: opts.GPIOChip,
			GPIOLine: opts.GPIOLine,
		}, logging.GetLogger("torch"))
		if err != nil {
			logger.Error("Failed to create torch controller", "error", err)
			os.Exit(1)
		}

		engine := strobe.New(torchCtrl, eventBus, logging.GetLogger("engine"),
			strobe.WithAutoStart(opts.EngineAutoStart))

		// Sequence store with hot reload on file edits
		sequenceLogger := logging.GetLogger("sequence")
		store := sequence.NewStore(opts.SequencesFile)
		if loadErr := store.Load(); loadErr != nil {
			logger.Warn("Failed to load sequences", "error", loadErr, "file", opts.SequencesFile)
		}

		watcher := config.NewConfigWatcher(opts.SequencesFile, sequence.LoadFile, sequenceLogger)
		watcher.OnReload(func(sequences map[string]sequence.Sequence) {
			sequenceLogger.Info("Sequences file changed, reloading", "count", len(sequences))
			store.Replace(sequences)
		})

		var recorder *metrics.Recorder
		if opts.MetricsEnabled {
			recorder = metrics.NewRecorder(nil, eventBus, engine)
		}

		var bridge *mqtt.Bridge
		if opts.MQTTEnabled {
			publisher, mqttErr := mqtt.NewRealPublisher(opts.MQTTBroker, opts.MQTTClientID)
			if mqttErr != nil {
				logger.Warn("Failed to connect to MQTT broker", "error", mqttErr, "broker", opts.MQTTBroker)
			} else {
				bridge = mqtt.NewBridge(publisher, eventBus, logging.GetLogger("mqtt"))
				logger.Info("MQTT bridge connected", "broker", opts.MQTTBroker)
			}
		}

		var updateService updater.Service
		if opts.UpdateEnabled {
			updateService, err = updater.NewService(&updater.Options{
				Repository: opts.UpdateRepository,
				Prerelease: opts.UpdatePrerelease,
			})
			if err != nil {
				logger.Warn("Failed to create update service", "error", err)
			}
		}

		apiOpts := &api.Options{
			AuthUsername:  opts.AuthUsername,
			AuthPassword:  opts.AuthPassword,
			Engine:        engine,
			Torch:         torchCtrl,
			Store:         store,
			EventBus:      eventBus,
			UpdateService: updateService,
		}
		if recorder != nil {
			apiOpts.PrometheusHandler = recorder.Handler()
		}

		server := api.NewServer(apiOpts)

		hooks.OnStart(func() {
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Failed to watch sequences file", "error", watchErr)
			}

			// Tell systemd we are up when running under Type=notify
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("systemd notify failed", "error", notifyErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if _, notifyErr := daemon.SdNotify(false, daemon.SdNotifyStopping); notifyErr != nil {
				logger.Debug("systemd notify failed", "error", notifyErr)
			}

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if watchErr := watcher.Stop(); watchErr != nil {
				logger.Warn("Error stopping sequences watcher", "error", watchErr)
			}

			if bridge != nil {
				if closeErr := bridge.Close(); closeErr != nil {
					logger.Warn("Error closing MQTT bridge", "error", closeErr)
				}
			}

			if recorder != nil {
				recorder.Close()
			}

			// Close drains the engine and forces the torch off
			engine.Close()
			if closeErr := torchCtrl.Close(); closeErr != nil {
				logger.Warn("Error closing torch controller", "error", closeErr)
			}
		})
	})

	rootCmd = cli.Root()
	rootCmd.Use = "strobed"
	rootCmd.Version = version.String()

	rootCmd.AddCommand(cmd.CreateValidateCmd())
	rootCmd.AddCommand(cmd.CreatePlayCmd())

	cli.Run()
}
