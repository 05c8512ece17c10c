// Package notifier delivers consent notifications to the data principal.
package notifier

import (
	"context"
	"log/slog"

	"stacia/internal/consent/models"
	"stacia/pkg/requestcontext"
)

// LogNotifier writes notifications to the structured log. It stands in for a
// push channel; the HTTP response also carries the notification.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notification models.Notification) error {
	n.logger.InfoContext(ctx, "consent notification",
		"title", notification.Title,
		"description", notification.Description,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
