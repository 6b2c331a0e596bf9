package alerts

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of the storage interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveAlert(ctx context.Context, alert models.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockStore) AlertsSince(ctx context.Context, since time.Time) ([]models.Alert, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]models.Alert), args.Error(1)
}

func (m *MockStore) UpsertCulturalTrend(ctx context.Context, trend models.CulturalTrend) error {
	args := m.Called(ctx, trend)
	return args.Error(0)
}

func (m *MockStore) UpsertTrendInsight(ctx context.Context, insight models.TrendInsight) error {
	args := m.Called(ctx, insight)
	return args.Error(0)
}

func (m *MockStore) Close() {
	m.Called()
}

// MockNotifier is a mock implementation of the notification service
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAlerts(ctx context.Context, alerts []models.Alert) error {
	args := m.Called(ctx, alerts)
	return args.Error(0)
}

func (m *MockNotifier) SendDailySummary(ctx context.Context, alerts []models.Alert) error {
	args := m.Called(ctx, alerts)
	return args.Error(0)
}

// stubSource serves a fixed item list.
type stubSource struct {
	items []models.ContentItem
	err   error
}

func (s *stubSource) GetName() string { return "stub" }
func (s *stubSource) IsEnabled() bool { return true }

func (s *stubSource) FetchCandidates(context.Context, []string, time.Duration, int) ([]models.ContentItem, error) {
	return s.items, s.err
}

func viralItem(id string) models.ContentItem {
	return models.ContentItem{
		ID:           id,
		Source:       "stub",
		Platform:     "Test Channel",
		Title:        "Something big is happening",
		ViewCount:    2000000,
		LikeCount:    100000,
		CommentCount: 20000,
		PublishedAt:  time.Now().Add(-2 * time.Hour),
	}
}

func newTestEngine(items []models.ContentItem, store *MockStore, notifier *MockNotifier) *Engine {
	return NewEngine(
		[]sources.ContentSource{&stubSource{items: items}},
		sentiment.NewScorer(),
		store,
		nil,
		notifier,
		nil,
	)
}

func metricsFrom(item models.ContentItem) models.ContentMetrics {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})
	return engine.metricsFor(item)
}

func TestEvaluate_ViewGate(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	item := viralItem("low_views")
	item.ViewCount = 50000

	_, fired := engine.evaluate(metricsFrom(item), engine.Criteria())
	assert.False(t, fired)
}

func TestEvaluate_AgeGate(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	item := viralItem("too_old")
	item.PublishedAt = time.Now().Add(-48 * time.Hour)

	_, fired := engine.evaluate(metricsFrom(item), engine.Criteria())
	assert.False(t, fired)
}

func TestEvaluate_EngagementRatioFires(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	metrics := models.ContentMetrics{
		ContentID:         "eng",
		Title:             "quiet title",
		ViewCount:         200000,
		LikeCount:         10000,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Contains(t, alert.Reason, "High engagement ratio: 0.050")
	assert.Equal(t, models.SeverityMedium, alert.Severity)
}

func TestEvaluate_WaveScoreEscalatesToHigh(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	metrics := models.ContentMetrics{
		ContentID:         "wave",
		Title:             "quiet title",
		ViewCount:         150000,
		WaveScore:         0.81,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Contains(t, alert.Reason, "High wave score: 0.810")
	assert.Equal(t, models.SeverityHigh, alert.Severity)
}

func TestEvaluate_CriticalKeywordDominates(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	metrics := models.ContentMetrics{
		ContentID:         "crit",
		Title:             "BREAKING news about the market",
		ViewCount:         150000,
		WaveScore:         0.9,
		GrowthRate:        3,
		SentimentScore:    0.5,
		HoursSincePublish: 1,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Equal(t, models.SeverityCritical, alert.Severity)
	assert.Contains(t, alert.Reason, "Contains keywords: breaking")
	assert.Contains(t, alert.Reason, "High wave score")
	assert.Contains(t, alert.Reason, "Rapid growth: 3.00x")
}

func TestEvaluate_NonCriticalKeywordKeepsFloor(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	// A keyword-only match adds a reason without escalating.
	metrics := models.ContentMetrics{
		ContentID:         "kw",
		Title:             "this went viral overnight",
		ViewCount:         150000,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Contains(t, alert.Reason, "Contains keywords: viral")
	assert.Equal(t, models.SeverityLow, alert.Severity)

	// Adding an engagement match raises the floor the keyword alone leaves.
	metrics.ContentID = "kw_eng"
	metrics.LikeCount = 10000

	alert, fired = engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Equal(t, models.SeverityMedium, alert.Severity)
}

func TestEvaluate_ExtremeSentiment(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	for _, score := range []float64{0.9, 0.1} {
		metrics := models.ContentMetrics{
			ContentID:         fmt.Sprintf("sent_%v", score),
			Title:             "quiet title",
			ViewCount:         150000,
			SentimentScore:    score,
			HoursSincePublish: 3,
		}

		alert, fired := engine.evaluate(metrics, engine.Criteria())
		require.True(t, fired)
		assert.Contains(t, alert.Reason, "Extreme sentiment")
		assert.Equal(t, models.SeverityMedium, alert.Severity)
	}
}

func TestEvaluate_NoRuleMatchesNoAlert(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	metrics := models.ContentMetrics{
		ContentID:         "calm",
		Title:             "quiet title",
		ViewCount:         150000,
		LikeCount:         100,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	_, fired := engine.evaluate(metrics, engine.Criteria())
	assert.False(t, fired)
}

func TestEvaluate_DescriptionTruncated(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	long := make([]byte, 800)
	for i := range long {
		long[i] = 'x'
	}

	metrics := models.ContentMetrics{
		ContentID:         "trunc",
		Title:             "urgent update",
		Description:       string(long),
		ViewCount:         150000,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.Len(t, alert.Description, 500)
}

func TestEvaluate_TruncationKeepsValidUTF8(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	// A multibyte rune straddling the cut must not be split in half.
	desc := strings.Repeat("x", 499) + strings.Repeat("é", 200)

	metrics := models.ContentMetrics{
		ContentID:         "trunc_utf8",
		Title:             "urgent update",
		Description:       desc,
		ViewCount:         150000,
		SentimentScore:    0.5,
		HoursSincePublish: 3,
	}

	alert, fired := engine.evaluate(metrics, engine.Criteria())
	require.True(t, fired)
	assert.True(t, utf8.ValidString(alert.Description))
	assert.LessOrEqual(t, len(alert.Description), 500)
}

func TestScan_PersistsAndDeduplicates(t *testing.T) {
	store := &MockStore{}
	notifier := &MockNotifier{}
	engine := newTestEngine([]models.ContentItem{viralItem("video_1")}, store, notifier)

	store.On("SaveAlert", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyAlerts", mock.Anything, mock.Anything).Return(nil)

	result, err := engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.CandidatesSeen)
	assert.Equal(t, 1, result.AlertsGenerated)
	assert.NotEmpty(t, result.RunID)

	// Second scan sees the same content but fires nothing new.
	second, err := engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.AlertsGenerated)

	store.AssertNumberOfCalls(t, "SaveAlert", 1)
}

func TestScan_SourceFailureIsIsolated(t *testing.T) {
	store := &MockStore{}
	notifier := &MockNotifier{}

	engine := NewEngine(
		[]sources.ContentSource{
			&stubSource{err: fmt.Errorf("api down")},
			&stubSource{items: []models.ContentItem{viralItem("ok_item")}},
		},
		sentiment.NewScorer(),
		store,
		nil,
		notifier,
		nil,
	)
	store.On("SaveAlert", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyAlerts", mock.Anything, mock.Anything).Return(nil)

	result, err := engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.AlertsGenerated)
	assert.NotEmpty(t, result.Warnings)
}

func TestScan_PersistFailureSkipsAlert(t *testing.T) {
	store := &MockStore{}
	notifier := &MockNotifier{}
	engine := newTestEngine([]models.ContentItem{viralItem("video_1")}, store, notifier)

	store.On("SaveAlert", mock.Anything, mock.Anything).Return(fmt.Errorf("db down"))

	result, err := engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.AlertsGenerated)
	assert.NotEmpty(t, result.Warnings)

	// Unpersisted content is not marked seen and can fire next scan.
	assert.False(t, engine.wasSeen("video_1"))
}

func TestUpdateCriteria_PartialPatch(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	views := int64(25000)
	wave := 0.5
	updated := engine.UpdateCriteria(models.CriteriaPatch{
		MinViewCount: &views,
		MinWaveScore: &wave,
	})

	assert.Equal(t, int64(25000), updated.MinViewCount)
	assert.Equal(t, 0.5, updated.MinWaveScore)

	// Untouched fields keep their defaults.
	defaults := models.DefaultAlertCriteria()
	assert.Equal(t, defaults.MaxHoursOld, updated.MaxHoursOld)
	assert.Equal(t, defaults.Keywords, updated.Keywords)
}

func TestSetCriteria_RestoresSnapshot(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	snapshot := engine.Criteria()
	views := int64(1)
	engine.UpdateCriteria(models.CriteriaPatch{MinViewCount: &views})
	engine.SetCriteria(snapshot)

	assert.Equal(t, snapshot, engine.Criteria())
}

func TestEvictSeen(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	now := time.Now().UTC()
	engine.seen["fresh"] = now.Add(-1 * time.Hour)
	engine.seen["stale"] = now.Add(-48 * time.Hour)

	engine.evictSeen(now, 24)

	assert.True(t, engine.wasSeen("fresh"))
	assert.False(t, engine.wasSeen("stale"))
}

func TestNextQueries_Rotates(t *testing.T) {
	engine := newTestEngine(nil, &MockStore{}, &MockNotifier{})

	first := engine.nextQueries()
	second := engine.nextQueries()

	assert.Len(t, first, 3)
	assert.Len(t, second, 3)
	assert.NotEqual(t, first, second)
}

func TestMetrics_TrackScans(t *testing.T) {
	store := &MockStore{}
	notifier := &MockNotifier{}
	engine := newTestEngine([]models.ContentItem{viralItem("video_1")}, store, notifier)

	store.On("SaveAlert", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyAlerts", mock.Anything, mock.Anything).Return(nil)

	_, err := engine.Scan(context.Background())
	require.NoError(t, err)

	m := engine.Metrics()
	assert.Equal(t, 1, m.TotalScans)
	assert.Equal(t, 1, m.TotalAlerts)
	assert.Equal(t, 1, m.LastCandidates)
}
