// Package torch provides binary light control with hardware abstraction.
// The sysfs implementation drives a kernel LED class device, the gpiocdev
// implementation drives a GPIO output line (relay / MOSFET switched lamp),
// and the fake implementation allows testing without hardware.
package torch

// Controller abstracts the binary light source the strobe engine toggles.
type Controller interface {
	// Set commands the light on or off. Redundant calls are safe.
	Set(on bool) error

	// Available reports whether the underlying hardware can be driven.
	Available() bool

	// Name identifies the backing implementation (for logs and the API).
	Name() string

	// Close releases hardware resources, leaving the light off.
	Close() error
}
