package channel

import "log/slog"

// advisory runs a best-effort side effect such as a reaction call. Failures
// are logged and discarded; they must never abort the turn.
func advisory(logger *slog.Logger, op string, fn func() error) {
	if err := fn(); err != nil {
		logger.Warn("advisory operation failed", "op", op, "err", err)
	}
}
