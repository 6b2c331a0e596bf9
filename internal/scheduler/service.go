// Package scheduler drives the recurring scan and analysis jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/jerbear472/WaveSight/internal/alerts"
	"github.com/jerbear472/WaveSight/internal/config"
	"github.com/jerbear472/WaveSight/internal/cultural"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/notifications"
	"github.com/jerbear472/WaveSight/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Quick scans are offset from the top of the hour so they never contend with
// the deep scan for the engine's single-scan lock.
const (
	quickScanSpec = "0 5,20,35,50 * * * *"
	deepScanSpec  = "0 0 * * * *"
	dailyJobsSpec = "0 0 9 * * *"
)

// Deep scans temporarily lower the thresholds so slower-burning content
// still gets a look once an hour.
var deepScanCriteria = models.CriteriaPatch{
	MinViewCount: int64Ptr(25000),
	MinWaveScore: floatPtr(0.5),
	MaxHoursOld:  floatPtr(6),
}

// Service handles scheduling of scan and analysis tasks
type Service struct {
	config    *config.Config
	engine    *alerts.Engine
	projector *cultural.Projector
	store     storage.Store
	notifier  notifications.Notifier
	cron      *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, engine *alerts.Engine, projector *cultural.Projector, store storage.Store, notifier notifications.Notifier) *Service {
	return &Service{
		config:    cfg,
		engine:    engine,
		projector: projector,
		store:     store,
		notifier:  notifier,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start registers the recurring jobs: a quick scan every 15 minutes, a deep
// scan every hour, and the daily summary and cultural analysis at 9 AM UTC.
func (s *Service) Start() error {
	_, err := s.cron.AddFunc(quickScanSpec, func() {
		logrus.Info("Starting scheduled quick scan")
		if _, err := s.engine.Scan(context.Background()); err != nil {
			logrus.Errorf("Quick scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(deepScanSpec, func() {
		s.runDeepScan()
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(dailyJobsSpec, func() {
		s.runDailyJobs()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Scheduler started: quick scans every 15m, deep scans hourly, daily jobs at 09:00 UTC")
	return nil
}

// runDeepScan tightens the criteria for one cycle and always restores the
// snapshot afterwards, even when the scan fails.
func (s *Service) runDeepScan() {
	logrus.Info("Starting scheduled deep scan")

	snapshot := s.engine.Criteria()
	defer s.engine.SetCriteria(snapshot)

	s.engine.UpdateCriteria(deepScanCriteria)
	if _, err := s.engine.Scan(context.Background()); err != nil {
		logrus.Errorf("Deep scan failed: %v", err)
	}
}

func (s *Service) runDailyJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	logrus.Info("Starting daily cultural analysis")
	trends := s.projector.AnalyzeTopics(ctx, s.config.CulturalTopics)
	for _, trend := range trends {
		if err := s.store.UpsertCulturalTrend(ctx, trend); err != nil {
			logrus.Errorf("Failed to persist cultural trend %q: %v", trend.Topic, err)
		}
	}
	logrus.Infof("Daily cultural analysis complete: %d topics", len(trends))

	alertsToday, err := s.engine.RecentAlerts(ctx, 24)
	if err != nil {
		logrus.Errorf("Failed to load alerts for daily summary: %v", err)
		return
	}
	if err := s.notifier.SendDailySummary(ctx, alertsToday); err != nil {
		logrus.Errorf("Failed to send daily summary: %v", err)
	}
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
