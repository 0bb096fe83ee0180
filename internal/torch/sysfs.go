package torch

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux sysfs LED interface
type sysfs struct {
	led string // sysfs LED name, e.g. "white:flash"
}

// newSysfs creates a sysfs torch controller for the named LED.
// The LED trigger is set to "none" so brightness is under manual control.
func newSysfs(led string) (*sysfs, error) {
	ledPath := filepath.Join(sysfsLEDPath, led)
	if _, err := os.Stat(ledPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("LED %q not found at %s", led, ledPath)
	}

	triggerPath := filepath.Join(ledPath, "trigger")
	if err := os.WriteFile(triggerPath, []byte("none"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to set LED trigger to none: %w", err)
	}

	return &sysfs{led: led}, nil
}

// Set writes the LED brightness (on/off).
func (s *sysfs) Set(on bool) error {
	brightnessPath := filepath.Join(sysfsLEDPath, s.led, "brightness")

	value := "0"
	if on {
		value = "1"
	}

	if err := os.WriteFile(brightnessPath, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}

	return nil
}

// Available reports whether the LED still exists in sysfs.
func (s *sysfs) Available() bool {
	_, err := os.Stat(filepath.Join(sysfsLEDPath, s.led))
	return err == nil
}

// Name identifies the backing implementation.
func (s *sysfs) Name() string {
	return "sysfs:" + s.led
}

// Close turns the LED off and releases nothing else; sysfs needs no teardown.
func (s *sysfs) Close() error {
	return s.Set(false)
}
