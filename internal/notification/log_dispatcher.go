package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher writes notices to the application log instead of sending them.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher constructs a LogDispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// Notify logs the rendered notice.
func (d *LogDispatcher) Notify(_ context.Context, notice Notice) error {
	msg := Render(notice)
	d.logger.Info("eligibility notice",
		zap.String("to", notice.RecipientEmail),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
