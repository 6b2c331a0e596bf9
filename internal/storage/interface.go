package storage

import (
	"context"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
)

// Store is the relational persistence contract. Alerts are append-only;
// cultural trends and trend insights are idempotent daily upserts.
type Store interface {
	SaveAlert(ctx context.Context, alert models.Alert) error
	AlertsSince(ctx context.Context, since time.Time) ([]models.Alert, error)
	UpsertCulturalTrend(ctx context.Context, trend models.CulturalTrend) error
	UpsertTrendInsight(ctx context.Context, insight models.TrendInsight) error
	Close()
}

// Archiver stores raw scan snapshots as named blobs for later replay or
// audit, separate from the relational records.
type Archiver interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(filename string) error
}
