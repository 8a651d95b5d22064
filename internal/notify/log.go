package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, n.Message,
		"alert_id", n.Alert.ID,
		"severity", n.Alert.Severity,
		"cell", n.Cell,
		"lat", n.Location.Coordinates.Latitude,
		"lon", n.Location.Coordinates.Longitude)
	return nil
}
