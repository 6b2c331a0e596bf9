package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jerbear472/WaveSight/internal/alerts"
	"github.com/jerbear472/WaveSight/internal/cultural"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/storage"
	"github.com/jerbear472/WaveSight/internal/trends"
	"github.com/sirupsen/logrus"
)

type api struct {
	engine      *alerts.Engine
	projector   *cultural.Projector
	store       storage.Store
	scorer      *sentiment.Scorer
	categorizer *trends.Categorizer
}

func newAPI(engine *alerts.Engine, projector *cultural.Projector, store storage.Store, scorer *sentiment.Scorer) *api {
	return &api{
		engine:      engine,
		projector:   projector,
		store:       store,
		scorer:      scorer,
		categorizer: trends.NewCategorizer(),
	}
}

func (a *api) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.engine.Metrics())
}

// scanHandler runs a scan synchronously. An overlapping scan returns 409.
func (a *api) scanHandler(w http.ResponseWriter, r *http.Request) {
	result, err := a.engine.Scan(r.Context())
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *api) criteriaHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.CriteriaPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid criteria payload")
		return
	}

	updated := a.engine.UpdateCriteria(patch)
	writeJSON(w, http.StatusOK, updated)
}

func (a *api) recentAlertsHandler(w http.ResponseWriter, r *http.Request) {
	hours := 24.0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "hours must be a positive number")
			return
		}
		hours = parsed
	}

	recent, err := a.engine.RecentAlerts(r.Context(), hours)
	if err != nil {
		logrus.Errorf("Failed to load recent alerts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	if recent == nil {
		recent = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hours":  hours,
		"count":  len(recent),
		"alerts": recent,
	})
}

func (a *api) culturalAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic  string   `json:"topic"`
		Topics []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid analyze payload")
		return
	}

	topics := req.Topics
	if req.Topic != "" {
		topics = append([]string{req.Topic}, topics...)
	}
	if len(topics) == 0 {
		writeError(w, http.StatusBadRequest, "topic or topics are required")
		return
	}

	results := a.projector.AnalyzeTopics(r.Context(), topics)

	for _, trend := range results {
		if err := a.store.UpsertCulturalTrend(r.Context(), trend); err != nil {
			logrus.Errorf("Failed to persist cultural trend %q: %v", trend.Topic, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(results),
		"trends": results,
	})
}

func (a *api) trendsAggregateHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items               []models.ContentItem `json:"items"`
		SentimentByCategory map[string]float64   `json:"sentiment_by_category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}

	insights := a.categorizer.Aggregate(req.Items, req.SentimentByCategory)

	for _, insight := range insights {
		if err := a.store.UpsertTrendInsight(r.Context(), insight); err != nil {
			logrus.Errorf("Failed to persist trend insight %q: %v", insight.TrendName, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(insights),
		"insights": insights,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
