package torch

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// Config selects the torch backend. An empty Mode means auto-detect.
type Config struct {
	Mode     string // "sysfs", "gpio", "noop" or "" for auto
	LED      string // sysfs LED name for Mode "sysfs"
	GPIOChip string // gpio chip name for Mode "gpio", e.g. "gpiochip0"
	GPIOLine int    // gpio line offset for Mode "gpio"
}

// New creates a torch controller for the configured backend.
// With no explicit mode it detects the board and falls back to the no-op
// controller (dry-run) when no hardware is found.
func New(cfg Config, logger *slog.Logger) (Controller, error) {
	switch cfg.Mode {
	case "sysfs":
		return newSysfs(cfg.LED)
	case "gpio":
		return newGPIO(cfg.GPIOChip, cfg.GPIOLine)
	case "noop":
		return newNoop(logger), nil
	case "":
		return detect(logger), nil
	default:
		return nil, fmt.Errorf("unknown torch mode %q", cfg.Mode)
	}
}

// detect picks a controller based on the device tree model.
func detect(logger *slog.Logger) Controller {
	boardModel := detectBoard()

	if logger != nil {
		logger.Info("Detecting board for torch control", "board_model", boardModel)
	}

	// Known boards with an addressable flash/status LED
	var candidates []string
	switch {
	case strings.Contains(boardModel, "Raspberry Pi"):
		candidates = []string{"ACT", "led0"}
	case strings.Contains(boardModel, "NanoPC-T6"):
		candidates = []string{"usr_led"}
	case strings.Contains(boardModel, "Orange Pi"):
		candidates = []string{"blue_led", "green_led"}
	}

	for _, led := range candidates {
		if ctrl, err := newSysfs(led); err == nil {
			if logger != nil {
				logger.Info("Using sysfs torch controller", "led", led)
			}
			return ctrl
		}
	}

	if logger != nil {
		logger.Info("No torch hardware detected, using no-op controller", "board_model", boardModel)
	}
	return newNoop(logger)
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}

	// Device tree model contains null bytes, trim them
	model := strings.TrimRight(string(data), "\x00")
	return model
}
