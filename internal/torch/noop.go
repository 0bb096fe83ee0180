package torch

import "log/slog"

// noop implements Controller as a dry-run for systems without a torch.
// It accepts every command so the engine can be exercised end to end.
type noop struct {
	logger *slog.Logger
}

// newNoop creates a new no-op torch controller
func newNoop(logger *slog.Logger) *noop {
	return &noop{
		logger: logger,
	}
}

// Set logs the request but performs no actual hardware control
func (n *noop) Set(on bool) error {
	n.logger.Debug("Torch control not available (no-op)",
		"on", on)
	return nil
}

// Available reports true so the engine runs in dry-run mode.
func (n *noop) Available() bool {
	return true
}

// Name identifies the backing implementation.
func (n *noop) Name() string {
	return "noop"
}

// Close is a no-op.
func (n *noop) Close() error {
	return nil
}
