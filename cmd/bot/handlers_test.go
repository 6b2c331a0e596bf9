package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jerbear472/WaveSight/internal/cultural"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore records upserts so handler tests can run without a database.
type stubStore struct {
	trends   []models.CulturalTrend
	insights []models.TrendInsight
}

func (s *stubStore) SaveAlert(context.Context, models.Alert) error { return nil }

func (s *stubStore) AlertsSince(context.Context, time.Time) ([]models.Alert, error) {
	return nil, nil
}

func (s *stubStore) UpsertCulturalTrend(_ context.Context, trend models.CulturalTrend) error {
	s.trends = append(s.trends, trend)
	return nil
}

func (s *stubStore) UpsertTrendInsight(_ context.Context, insight models.TrendInsight) error {
	s.insights = append(s.insights, insight)
	return nil
}

func (s *stubStore) Close() {}

func newTestAPI(store *stubStore) *api {
	projector := cultural.NewProjector(nil, sources.NewSyntheticSource(), sentiment.NewScorer())
	return newAPI(nil, projector, store, sentiment.NewScorer())
}

func TestCulturalAnalyzeHandler_SingleTopic(t *testing.T) {
	store := &stubStore{}
	a := newTestAPI(store)

	req := httptest.NewRequest(http.MethodPost, "/api/cultural/analyze", strings.NewReader(`{"topic":"streetwear"}`))
	rec := httptest.NewRecorder()

	a.culturalAnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count  int                    `json:"count"`
		Trends []models.CulturalTrend `json:"trends"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "streetwear", resp.Trends[0].Topic)
	assert.Len(t, store.trends, 1)
}

func TestCulturalAnalyzeHandler_TopicList(t *testing.T) {
	store := &stubStore{}
	a := newTestAPI(store)

	req := httptest.NewRequest(http.MethodPost, "/api/cultural/analyze", strings.NewReader(`{"topics":["AI tools","indie music"]}`))
	rec := httptest.NewRecorder()

	a.culturalAnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.trends, 2)
}

func TestCulturalAnalyzeHandler_MissingTopic(t *testing.T) {
	a := newTestAPI(&stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/cultural/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	a.culturalAnalyzeHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
