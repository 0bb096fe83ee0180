//go:build !linux

package torch

import "errors"

// gpio is not available on non-Linux platforms.
type gpio struct{}

// newGPIO returns an error on non-Linux platforms.
func newGPIO(_ string, _ int) (*gpio, error) {
	return nil, errors.New("torch: gpio not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (g *gpio) Set(_ bool) error {
	return errors.New("torch: gpio not supported")
}

// Available reports false on non-Linux platforms.
func (g *gpio) Available() bool {
	return false
}

// Name identifies the backing implementation.
func (g *gpio) Name() string {
	return "gpio:unsupported"
}

// Close is a no-op on non-Linux platforms.
func (g *gpio) Close() error {
	return nil
}
