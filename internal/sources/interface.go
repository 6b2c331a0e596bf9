package sources

import (
	"context"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
)

// ContentSource is the contract for platforms that supply scoreable content
// items (videos, posts) for alert scans.
type ContentSource interface {
	GetName() string
	FetchCandidates(ctx context.Context, queries []string, since time.Duration, maxPerQuery int) ([]models.ContentItem, error)
	IsEnabled() bool
}

// EvidenceSource supplies post/comment corpora for cultural topic analysis.
type EvidenceSource interface {
	Name() string
	FetchEvidence(ctx context.Context, topic string, maxItems int) ([]models.EvidencePost, error)
}
