package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smazurov/strobed/internal/events"
	"github.com/smazurov/strobed/internal/logging"
	"github.com/smazurov/strobed/internal/sequence"
	"github.com/smazurov/strobed/internal/strobe"
	"github.com/smazurov/strobed/internal/torch"
	"github.com/spf13/cobra"
)

// CreatePlayCmd creates the play command. It runs a single stored sequence
// to completion without starting the daemon, useful for testing patterns
// from the shell.
func CreatePlayCmd() *cobra.Command {
	var sequencesFile string
	var torchMode string
	var torchLED string
	var gpioChip string
	var gpioLine int
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "play <sequence-name>",
		Short: "Play a stored sequence and exit",
		Long: `Loads the sequences file, enqueues the named sequence on a local ` +
			`engine, and blocks until it finishes or is interrupted. ` +
			`Ctrl-C forces the torch off before exiting.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			name := args[0]

			loggingConfig := logging.Config{
				Level:  "info",
				Format: "text",
			}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("play").With("sequence", name)

			sequences, err := sequence.LoadFile(sequencesFile)
			if err != nil {
				logger.Error("Failed to load sequences", "error", err, "file", sequencesFile)
				os.Exit(1)
			}

			seq, ok := sequences[name]
			if !ok {
				logger.Error("Sequence not found", "file", sequencesFile)
				os.Exit(1)
			}

			ctrl, err := torch.New(torch.Config{
				Mode:     torchMode,
				LED:      torchLED,
				GPIOChip: gpioChip,
				GPIOLine: gpioLine,
			}, logger)
			if err != nil {
				logger.Error("Failed to create torch controller", "error", err)
				os.Exit(1)
			}

			bus := events.New()
			engine := strobe.New(ctrl, bus, logger, strobe.WithAutoStart(false))

			done := make(chan any, 1)
			unsubscribe := events.SubscribeToChannel[events.QueueEmptyEvent](bus, done)
			defer unsubscribe()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			fmt.Printf("Playing %q (%d effects) on %s\n", name, len(seq.Effects), ctrl.Name())
			engine.EnqueueAll(seq.Effects)
			engine.Start()

			select {
			case <-done:
				logger.Info("Sequence finished")
			case sig := <-sigCh:
				logger.Info("Interrupted, forcing torch off", "signal", sig.String())
			}

			// Close forces the torch off on every exit path
			engine.Close()
		},
	}

	cmd.Flags().StringVarP(&sequencesFile, "sequences", "s", "sequences.toml", "Sequences file to load")
	cmd.Flags().StringVar(&torchMode, "torch", "", "Torch backend: sysfs, gpio, noop (default auto-detect)")
	cmd.Flags().StringVar(&torchLED, "led", "", "sysfs LED name for the sysfs backend")
	cmd.Flags().StringVar(&gpioChip, "gpio-chip", "gpiochip0", "GPIO chip for the gpio backend")
	cmd.Flags().IntVar(&gpioLine, "gpio-line", 0, "GPIO line offset for the gpio backend")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")

	return cmd
}
