package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/sirupsen/logrus"
)

// PostgresStore persists alerts and analysis records in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool and creates the schema if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	pool, err := pgxpool.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &PostgresStore{db: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS alerts (
			alert_id        TEXT PRIMARY KEY,
			alert_type      TEXT NOT NULL,
			content_id      TEXT NOT NULL,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			channel_title   TEXT NOT NULL DEFAULT '',
			view_count      BIGINT NOT NULL DEFAULT 0,
			like_count      BIGINT NOT NULL DEFAULT 0,
			wave_score      DOUBLE PRECISION NOT NULL DEFAULT 0,
			growth_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
			sentiment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			reason          TEXT NOT NULL DEFAULT '',
			severity        TEXT NOT NULL DEFAULT 'LOW',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts (created_at);

		CREATE TABLE IF NOT EXISTS cultural_trends (
			topic             TEXT NOT NULL,
			name              TEXT NOT NULL,
			coordinate_x      DOUBLE PRECISION NOT NULL,
			coordinate_y      DOUBLE PRECISION NOT NULL,
			sentiment_score   DOUBLE PRECISION NOT NULL,
			total_posts       INTEGER NOT NULL,
			total_engagement  BIGINT NOT NULL,
			avg_engagement    DOUBLE PRECISION NOT NULL,
			source_spread     INTEGER NOT NULL,
			dominant_sources  JSONB NOT NULL DEFAULT '[]',
			cultural_velocity DOUBLE PRECISION NOT NULL,
			cultural_momentum TEXT NOT NULL,
			category          TEXT NOT NULL,
			mainstream_score  DOUBLE PRECISION NOT NULL,
			disruption_score  DOUBLE PRECISION NOT NULL,
			cultural_impact   TEXT NOT NULL,
			temporal_trend    TEXT NOT NULL,
			platform          TEXT NOT NULL,
			analysis_date     DATE NOT NULL,
			confidence        DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (topic, analysis_date)
		);

		CREATE TABLE IF NOT EXISTS trend_insights (
			trend_name      TEXT NOT NULL,
			category        TEXT NOT NULL,
			total_items     INTEGER NOT NULL,
			total_reach     BIGINT NOT NULL,
			total_likes     BIGINT NOT NULL,
			total_comments  BIGINT NOT NULL,
			engagement_rate DOUBLE PRECISION NOT NULL,
			wave_score      DOUBLE PRECISION NOT NULL,
			sentiment_score DOUBLE PRECISION NOT NULL,
			trend_score     DOUBLE PRECISION NOT NULL,
			data_sources    JSONB NOT NULL DEFAULT '[]',
			top_content     JSONB,
			analysis_date   DATE NOT NULL,
			PRIMARY KEY (trend_name, analysis_date)
		);
	`

	_, err := s.db.Exec(ctx, schema)
	return err
}

// SaveAlert inserts an alert record. Alerts are immutable, so a duplicate
// alert_id is left untouched rather than updated.
func (s *PostgresStore) SaveAlert(ctx context.Context, alert models.Alert) error {
	query := `
		INSERT INTO alerts (
			alert_id, alert_type, content_id, title, description,
			channel_title, view_count, like_count, wave_score,
			growth_rate, sentiment_score, reason, severity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (alert_id) DO NOTHING
	`

	_, err := s.db.Exec(
		ctx,
		query,
		alert.AlertID,
		alert.AlertType,
		alert.ContentID,
		alert.Title,
		alert.Description,
		alert.ChannelTitle,
		alert.ViewCount,
		alert.LikeCount,
		alert.WaveScore,
		alert.GrowthRate,
		alert.SentimentScore,
		alert.Reason,
		alert.Severity.String(),
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving alert %s: %w", alert.AlertID, err)
	}

	return nil
}

// AlertsSince returns alerts created at or after the given time, newest first.
func (s *PostgresStore) AlertsSince(ctx context.Context, since time.Time) ([]models.Alert, error) {
	query := `
		SELECT
			alert_id, alert_type, content_id, title, description,
			channel_title, view_count, like_count, wave_score,
			growth_rate, sentiment_score, reason, severity, created_at
		FROM alerts
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("error querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		var severity string

		err := rows.Scan(
			&alert.AlertID,
			&alert.AlertType,
			&alert.ContentID,
			&alert.Title,
			&alert.Description,
			&alert.ChannelTitle,
			&alert.ViewCount,
			&alert.LikeCount,
			&alert.WaveScore,
			&alert.GrowthRate,
			&alert.SentimentScore,
			&alert.Reason,
			&severity,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning alert: %w", err)
		}

		if err := alert.Severity.UnmarshalText([]byte(severity)); err != nil {
			return nil, fmt.Errorf("error parsing severity: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}

	return alerts, nil
}

// UpsertCulturalTrend writes one analysis run keyed on (topic, analysis_date),
// so re-running a day's analysis replaces that day's record.
func (s *PostgresStore) UpsertCulturalTrend(ctx context.Context, trend models.CulturalTrend) error {
	query := `
		INSERT INTO cultural_trends (
			topic, name, coordinate_x, coordinate_y, sentiment_score,
			total_posts, total_engagement, avg_engagement, source_spread,
			dominant_sources, cultural_velocity, cultural_momentum, category,
			mainstream_score, disruption_score, cultural_impact,
			temporal_trend, platform, analysis_date, confidence
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		ON CONFLICT (topic, analysis_date) DO UPDATE
		SET
			name = $2,
			coordinate_x = $3,
			coordinate_y = $4,
			sentiment_score = $5,
			total_posts = $6,
			total_engagement = $7,
			avg_engagement = $8,
			source_spread = $9,
			dominant_sources = $10,
			cultural_velocity = $11,
			cultural_momentum = $12,
			category = $13,
			mainstream_score = $14,
			disruption_score = $15,
			cultural_impact = $16,
			temporal_trend = $17,
			platform = $18,
			confidence = $20
	`

	sourcesJSON, err := json.Marshal(trend.DominantSources)
	if err != nil {
		return fmt.Errorf("error marshaling dominant sources: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		trend.Topic,
		trend.Name,
		trend.Coordinates.X,
		trend.Coordinates.Y,
		trend.SentimentScore,
		trend.TotalPosts,
		trend.TotalEngagement,
		trend.AvgEngagement,
		trend.SourceSpread,
		sourcesJSON,
		trend.CulturalVelocity,
		trend.CulturalMomentum,
		trend.Category,
		trend.MainstreamScore,
		trend.DisruptionScore,
		trend.CulturalImpact,
		trend.TemporalTrend,
		trend.Platform,
		trend.AnalysisDate,
		trend.Confidence,
	)
	if err != nil {
		return fmt.Errorf("error upserting cultural trend %s: %w", trend.Topic, err)
	}

	logrus.Debugf("Upserted cultural trend %q for %s", trend.Topic, trend.AnalysisDate.Format("2006-01-02"))
	return nil
}

// UpsertTrendInsight writes one aggregate record keyed on
// (trend_name, analysis_date).
func (s *PostgresStore) UpsertTrendInsight(ctx context.Context, insight models.TrendInsight) error {
	query := `
		INSERT INTO trend_insights (
			trend_name, category, total_items, total_reach, total_likes,
			total_comments, engagement_rate, wave_score, sentiment_score,
			trend_score, data_sources, top_content, analysis_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (trend_name, analysis_date) DO UPDATE
		SET
			category = $2,
			total_items = $3,
			total_reach = $4,
			total_likes = $5,
			total_comments = $6,
			engagement_rate = $7,
			wave_score = $8,
			sentiment_score = $9,
			trend_score = $10,
			data_sources = $11,
			top_content = $12
	`

	sourcesJSON, err := json.Marshal(insight.DataSources)
	if err != nil {
		return fmt.Errorf("error marshaling data sources: %w", err)
	}

	var topContentJSON []byte
	if insight.TopContent != nil {
		topContentJSON, err = json.Marshal(insight.TopContent)
		if err != nil {
			return fmt.Errorf("error marshaling top content: %w", err)
		}
	}

	_, err = s.db.Exec(
		ctx,
		query,
		insight.TrendName,
		insight.Category,
		insight.TotalItems,
		insight.TotalReach,
		insight.TotalLikes,
		insight.TotalComments,
		insight.EngagementRate,
		insight.WaveScore,
		insight.SentimentScore,
		insight.TrendScore,
		sourcesJSON,
		topContentJSON,
		insight.AnalysisDate,
	)
	if err != nil {
		return fmt.Errorf("error upserting trend insight %s: %w", insight.TrendName, err)
	}

	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}
