// Package alerts runs scan cycles over content sources, scores every
// candidate and turns rule matches into persisted alert records.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/notifications"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/sources"
	"github.com/jerbear472/WaveSight/internal/storage"
	"github.com/jerbear472/WaveSight/internal/wavescore"
	"github.com/sirupsen/logrus"
)

const (
	scanTimeout = 5 * time.Minute

	maxDescriptionLen = 500
)

// Title keywords that escalate straight to CRITICAL.
var criticalKeywords = map[string]bool{
	"breaking": true,
	"urgent":   true,
	"alert":    true,
}

// Engine evaluates content against the alert criteria. One scan runs at a
// time; an overlapping trigger is dropped, not queued.
type Engine struct {
	sources  []sources.ContentSource
	scorer   *sentiment.Scorer
	store    storage.Store
	archiver storage.Archiver
	notifier notifications.Notifier

	queryMu        sync.Mutex
	queries        []string
	queryCursor    int
	queriesPerScan int

	criteriaMu sync.RWMutex
	criteria   models.AlertCriteria

	scanMu sync.Mutex

	seenMu sync.Mutex
	seen   map[string]time.Time

	metricsMu sync.Mutex
	metrics   Metrics
}

// Metrics is a running snapshot of engine activity since process start.
type Metrics struct {
	TotalScans     int           `json:"total_scans"`
	TotalAlerts    int           `json:"total_alerts"`
	DroppedScans   int           `json:"dropped_scans"`
	LastScanAt     time.Time     `json:"last_scan_at"`
	LastCandidates int           `json:"last_candidates"`
	LastDuration   time.Duration `json:"last_duration_ns"`
}

// NewEngine wires an engine with default criteria. archiver may be nil when
// no blob account is configured.
func NewEngine(contentSources []sources.ContentSource, scorer *sentiment.Scorer, store storage.Store, archiver storage.Archiver, notifier notifications.Notifier, queries []string) *Engine {
	if len(queries) == 0 {
		queries = DefaultQueries()
	}
	return &Engine{
		sources:        contentSources,
		scorer:         scorer,
		store:          store,
		archiver:       archiver,
		notifier:       notifier,
		queries:        queries,
		queriesPerScan: 3,
		criteria:       models.DefaultAlertCriteria(),
		seen:           make(map[string]time.Time),
	}
}

// DefaultQueries is the rotating trending-topic search set.
func DefaultQueries() []string {
	return []string{
		"AI tools",
		"crypto news",
		"viral video",
		"breaking technology",
		"gaming trends",
		"stock market",
		"new music",
		"internet culture",
	}
}

// Criteria returns a copy of the current alert criteria.
func (e *Engine) Criteria() models.AlertCriteria {
	e.criteriaMu.RLock()
	defer e.criteriaMu.RUnlock()
	return copyCriteria(e.criteria)
}

// SetCriteria replaces the criteria wholesale. Used to restore a snapshot
// after a temporarily tightened scan.
func (e *Engine) SetCriteria(criteria models.AlertCriteria) {
	e.criteriaMu.Lock()
	defer e.criteriaMu.Unlock()
	e.criteria = copyCriteria(criteria)
}

// UpdateCriteria applies a partial override and returns the result. Nil
// fields keep their current values.
func (e *Engine) UpdateCriteria(patch models.CriteriaPatch) models.AlertCriteria {
	e.criteriaMu.Lock()
	defer e.criteriaMu.Unlock()

	if patch.MinViewCount != nil {
		e.criteria.MinViewCount = *patch.MinViewCount
	}
	if patch.MinLikeRatio != nil {
		e.criteria.MinLikeRatio = *patch.MinLikeRatio
	}
	if patch.MinWaveScore != nil {
		e.criteria.MinWaveScore = *patch.MinWaveScore
	}
	if patch.MaxHoursOld != nil {
		e.criteria.MaxHoursOld = *patch.MaxHoursOld
	}
	if patch.MinGrowthRate != nil {
		e.criteria.MinGrowthRate = *patch.MinGrowthRate
	}
	if patch.Keywords != nil {
		e.criteria.Keywords = append([]string(nil), patch.Keywords...)
	}
	if patch.Categories != nil {
		e.criteria.Categories = append([]string(nil), patch.Categories...)
	}

	logrus.Infof("Alert criteria updated: min_views=%d min_wave=%.2f max_hours=%.1f",
		e.criteria.MinViewCount, e.criteria.MinWaveScore, e.criteria.MaxHoursOld)
	return copyCriteria(e.criteria)
}

// Scan runs one full cycle: fetch candidates, score them, evaluate the alert
// rules and persist whatever fired. A scan already in progress causes the new
// one to be dropped with an error.
func (e *Engine) Scan(ctx context.Context) (models.ScanResult, error) {
	if !e.scanMu.TryLock() {
		e.metricsMu.Lock()
		e.metrics.DroppedScans++
		e.metricsMu.Unlock()
		return models.ScanResult{}, fmt.Errorf("scan already in progress")
	}
	defer e.scanMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	result := models.ScanResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	criteria := e.Criteria()

	logrus.WithField("run_id", result.RunID).Info("Starting alert scan")

	e.evictSeen(time.Now(), criteria.MaxHoursOld)

	items := e.fetchCandidates(ctx, criteria, &result)
	result.CandidatesSeen = len(items)

	logrus.Debugf("Scoring %d candidates", len(items))

	for _, item := range items {
		metrics := e.metricsFor(item)

		alert, fired := e.evaluate(metrics, criteria)
		if !fired {
			continue
		}

		if err := e.store.SaveAlert(ctx, alert); err != nil {
			logrus.Errorf("Failed to persist alert %s: %v", alert.AlertID, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("persist failed for %s", alert.ContentID))
			continue
		}

		e.markSeen(alert.ContentID)
		result.Alerts = append(result.Alerts, alert)
	}
	result.AlertsGenerated = len(result.Alerts)
	result.Duration = time.Since(result.StartedAt)

	if len(result.Alerts) > 0 && e.notifier != nil {
		if err := e.notifier.NotifyAlerts(ctx, result.Alerts); err != nil {
			logrus.Errorf("Failed to deliver alert notifications: %v", err)
			result.Warnings = append(result.Warnings, "notification delivery failed")
		}
	}

	e.archiveScan(result)

	e.metricsMu.Lock()
	e.metrics.TotalScans++
	e.metrics.TotalAlerts += result.AlertsGenerated
	e.metrics.LastScanAt = result.StartedAt
	e.metrics.LastCandidates = result.CandidatesSeen
	e.metrics.LastDuration = result.Duration
	e.metricsMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"run_id":     result.RunID,
		"candidates": result.CandidatesSeen,
		"alerts":     result.AlertsGenerated,
		"duration":   result.Duration.Round(time.Millisecond).String(),
	}).Info("Alert scan complete")

	return result, nil
}

// Metrics returns a copy of the running activity counters.
func (e *Engine) Metrics() Metrics {
	e.metricsMu.Lock()
	defer e.metricsMu.Unlock()
	return e.metrics
}

// RecentAlerts returns persisted alerts from the last windowHours hours.
func (e *Engine) RecentAlerts(ctx context.Context, windowHours float64) ([]models.Alert, error) {
	if windowHours <= 0 {
		windowHours = 24
	}
	since := time.Now().UTC().Add(-time.Duration(windowHours * float64(time.Hour)))
	return e.store.AlertsSince(ctx, since)
}

// fetchCandidates fans out to every enabled source concurrently. A failing
// source costs a warning, never the scan.
func (e *Engine) fetchCandidates(ctx context.Context, criteria models.AlertCriteria, result *models.ScanResult) []models.ContentItem {
	queries := e.nextQueries()
	since := time.Duration(criteria.MaxHoursOld * float64(time.Hour))

	type sourceResult struct {
		name  string
		items []models.ContentItem
		err   error
	}

	results := make(chan sourceResult, len(e.sources))
	var wg sync.WaitGroup

	for _, source := range e.sources {
		if !source.IsEnabled() {
			continue
		}
		wg.Add(1)
		go func(source sources.ContentSource) {
			defer wg.Done()
			items, err := source.FetchCandidates(ctx, queries, since, 25)
			results <- sourceResult{name: source.GetName(), items: items, err: err}
		}(source)
	}

	wg.Wait()
	close(results)

	var items []models.ContentItem
	seen := make(map[string]bool)

	for r := range results {
		if r.err != nil {
			logrus.Errorf("Source %s failed: %v", r.name, r.err)
			if result != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("source %s failed", r.name))
			}
			continue
		}
		for _, item := range r.items {
			if !seen[item.ID] {
				seen[item.ID] = true
				items = append(items, item)
			}
		}
	}

	return items
}

// nextQueries rotates through the configured query list so repeated scans
// cover different trending topics.
func (e *Engine) nextQueries() []string {
	e.queryMu.Lock()
	defer e.queryMu.Unlock()

	n := e.queriesPerScan
	if n > len(e.queries) {
		n = len(e.queries)
	}

	queries := make([]string, 0, n)
	for i := 0; i < n; i++ {
		queries = append(queries, e.queries[(e.queryCursor+i)%len(e.queries)])
	}
	e.queryCursor = (e.queryCursor + n) % len(e.queries)
	return queries
}

func (e *Engine) metricsFor(item models.ContentItem) models.ContentMetrics {
	hours := time.Since(item.PublishedAt).Hours()
	if hours < 0 {
		hours = 0
	}

	texts := item.Comments
	if len(texts) == 0 && item.Title != "" {
		texts = []string{item.Title + " " + item.Description}
	}
	sentimentScore := e.scorer.Score(texts)

	previousViews := wavescore.EstimatePreviousViews(item.ViewCount)

	return models.ContentMetrics{
		ContentID:         item.ID,
		Title:             item.Title,
		Description:       item.Description,
		ChannelTitle:      item.Platform,
		ViewCount:         item.ViewCount,
		PreviousViewCount: previousViews,
		LikeCount:         item.LikeCount,
		CommentCount:      item.CommentCount,
		SentimentScore:    sentimentScore,
		GrowthRate:        wavescore.GrowthRate(item.ViewCount, hours),
		WaveScore:         wavescore.Score(item.ViewCount, previousViews, item.LikeCount, item.CommentCount, sentimentScore),
		PublishedAt:       item.PublishedAt,
		HoursSincePublish: hours,
	}
}

// evaluate applies the hard gates and the ORed alert rules. Severity is the
// max across matched rules and the reason string records every match.
func (e *Engine) evaluate(metrics models.ContentMetrics, criteria models.AlertCriteria) (models.Alert, bool) {
	if e.wasSeen(metrics.ContentID) {
		return models.Alert{}, false
	}
	if metrics.ViewCount < criteria.MinViewCount {
		return models.Alert{}, false
	}
	if metrics.HoursSincePublish > criteria.MaxHoursOld {
		return models.Alert{}, false
	}

	var reasons []string
	severity := models.SeverityLow

	views := metrics.ViewCount
	if views < 1 {
		views = 1
	}
	likeRatio := float64(metrics.LikeCount) / float64(views)
	if likeRatio >= criteria.MinLikeRatio {
		reasons = append(reasons, fmt.Sprintf("High engagement ratio: %.3f", likeRatio))
		severity = severity.Max(models.SeverityMedium)
	}

	if metrics.WaveScore >= criteria.MinWaveScore {
		reasons = append(reasons, fmt.Sprintf("High wave score: %.3f", metrics.WaveScore))
		severity = severity.Max(models.SeverityHigh)
	}

	if metrics.GrowthRate >= criteria.MinGrowthRate {
		reasons = append(reasons, fmt.Sprintf("Rapid growth: %.2fx", metrics.GrowthRate))
		severity = severity.Max(models.SeverityHigh)
	}

	if matched := matchKeywords(metrics.Title, criteria.Keywords); len(matched) > 0 {
		reasons = append(reasons, fmt.Sprintf("Contains keywords: %s", strings.Join(matched, ", ")))
		// A non-critical keyword only adds a reason; severity stays at
		// whatever floor the other rules set.
		if anyCritical(matched) {
			severity = models.SeverityCritical
		}
	}

	if metrics.SentimentScore > 0.8 || metrics.SentimentScore < 0.2 {
		reasons = append(reasons, fmt.Sprintf("Extreme sentiment: %.3f", metrics.SentimentScore))
		severity = severity.Max(models.SeverityMedium)
	}

	if len(reasons) == 0 {
		return models.Alert{}, false
	}

	alert := models.Alert{
		AlertID:        fmt.Sprintf("alert_%s_%d", metrics.ContentID, time.Now().Unix()),
		AlertType:      "viral_content",
		ContentID:      metrics.ContentID,
		Title:          metrics.Title,
		Description:    truncate(metrics.Description, maxDescriptionLen),
		ChannelTitle:   metrics.ChannelTitle,
		ViewCount:      metrics.ViewCount,
		LikeCount:      metrics.LikeCount,
		WaveScore:      metrics.WaveScore,
		GrowthRate:     metrics.GrowthRate,
		SentimentScore: metrics.SentimentScore,
		Reason:         strings.Join(reasons, "; "),
		Severity:       severity,
		CreatedAt:      time.Now().UTC(),
	}
	return alert, true
}

func (e *Engine) archiveScan(result models.ScanResult) {
	if e.archiver == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logrus.Errorf("Failed to marshal scan snapshot: %v", err)
		return
	}

	filename := fmt.Sprintf("scans/%s/run_%s.json", result.StartedAt.Format("2006-01-02"), result.RunID)
	if err := e.archiver.Store(filename, data); err != nil {
		logrus.Errorf("Failed to archive scan snapshot: %v", err)
	}
}

func (e *Engine) wasSeen(contentID string) bool {
	e.seenMu.Lock()
	defer e.seenMu.Unlock()
	_, ok := e.seen[contentID]
	return ok
}

func (e *Engine) markSeen(contentID string) {
	e.seenMu.Lock()
	defer e.seenMu.Unlock()
	e.seen[contentID] = time.Now().UTC()
}

// evictSeen drops dedup entries older than the alert age window. Content too
// old to alert on again can no longer collide, so the set stays bounded.
func (e *Engine) evictSeen(now time.Time, maxHoursOld float64) {
	cutoff := now.Add(-time.Duration(maxHoursOld * float64(time.Hour)))

	e.seenMu.Lock()
	defer e.seenMu.Unlock()
	for id, at := range e.seen {
		if at.Before(cutoff) {
			delete(e.seen, id)
		}
	}
}

func matchKeywords(title string, keywords []string) []string {
	titleLower := strings.ToLower(title)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(titleLower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func anyCritical(keywords []string) bool {
	for _, kw := range keywords {
		if criticalKeywords[strings.ToLower(kw)] {
			return true
		}
	}
	return false
}

// truncate cuts s to at most max bytes without splitting a multibyte rune,
// so the result is always valid UTF-8 for the persistence layer.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func copyCriteria(c models.AlertCriteria) models.AlertCriteria {
	c.Keywords = append([]string(nil), c.Keywords...)
	c.Categories = append([]string(nil), c.Categories...)
	return c
}
