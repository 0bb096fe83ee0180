//go:build linux

package torch

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// gpio implements Controller using the Linux GPIO character device.
// The line switches a relay or MOSFET driving the lamp.
type gpio struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	name string
}

// newGPIO requests the given line as an output, initially low (lamp off).
func newGPIO(chipName string, offset int) (*gpio, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request torch line %d: %w", offset, err)
	}

	return &gpio{
		chip: chip,
		line: line,
		name: fmt.Sprintf("gpio:%s/%d", chipName, offset),
	}, nil
}

// Set drives the output line high or low.
func (g *gpio) Set(on bool) error {
	value := 0
	if on {
		value = 1
	}
	if err := g.line.SetValue(value); err != nil {
		return fmt.Errorf("set torch line: %w", err)
	}
	return nil
}

// Available reports whether the line is held.
func (g *gpio) Available() bool {
	return g.line != nil
}

// Name identifies the backing implementation.
func (g *gpio) Name() string {
	return g.name
}

// Close drives the line low and releases GPIO resources.
// Reconfigures the line to input before closing so external hardware sees a
// clean state across daemon restarts.
func (g *gpio) Close() error {
	var errs []error

	if g.line != nil {
		if err := g.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear torch line: %w", err))
		}
		if err := g.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure torch line: %w", err))
		}
		if err := g.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close torch line: %w", err))
		}
	}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
