package notifications

import (
	"context"

	"github.com/jerbear472/WaveSight/internal/models"
)

// Notifier delivers alert notifications and periodic summaries.
type Notifier interface {
	NotifyAlerts(ctx context.Context, alerts []models.Alert) error
	SendDailySummary(ctx context.Context, alerts []models.Alert) error
}
