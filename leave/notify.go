package leave

import (
	"context"

	"go.uber.org/zap"
)

// =============================================================================
// NOTIFIER - fire-and-forget delivery to employees and approvers
// =============================================================================

// Notifier delivers a message to an employee. Implementations must return
// promptly; the engine suppresses errors and never rolls back a transition
// because delivery failed.
type Notifier interface {
	Notify(ctx context.Context, recipient EmployeeID, message string) error
}

// LogNotifier writes notifications to the log. The default for development
// and the demo server; real delivery lives outside the core.
type LogNotifier struct {
	Logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, recipient EmployeeID, message string) error {
	n.Logger.Info("notify",
		zap.String("recipient", string(recipient)),
		zap.String("message", message),
	)
	return nil
}
