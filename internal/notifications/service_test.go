package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/jerbear472/WaveSight/internal/config"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlerts() []models.Alert {
	return []models.Alert{
		{
			AlertID:      "alert_a_1",
			Title:        "Breaking story spreads fast",
			ChannelTitle: "News Now",
			ViewCount:    1200000,
			WaveScore:    0.91,
			GrowthRate:   4.2,
			Reason:       "High wave score: 0.910; Contains keywords: breaking",
			Severity:     models.SeverityCritical,
			CreatedAt:    time.Now().UTC(),
		},
		{
			AlertID:      "alert_b_1",
			Title:        "Steady climber",
			ChannelTitle: "Tech Weekly",
			ViewCount:    300000,
			WaveScore:    0.72,
			Reason:       "High wave score: 0.720",
			Severity:     models.SeverityHigh,
			CreatedAt:    time.Now().UTC(),
		},
	}
}

func TestNotifyAlerts_NoChannelsConfigured(t *testing.T) {
	service := NewService(&config.Config{})

	// With no Teams webhook or email, critical alerts are only logged.
	err := service.NotifyAlerts(context.Background(), sampleAlerts())
	assert.NoError(t, err)
}

func TestBuildCriticalMessage(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildCriticalMessage(sampleAlerts()[:1])

	assert.Equal(t, "MessageCard", message.Type)
	assert.Contains(t, message.Title, "1")
	require.Len(t, message.Sections, 1)
	assert.Equal(t, "Breaking story spreads fast", message.Sections[0].ActivityTitle)

	facts := message.Sections[0].Facts
	require.Len(t, facts, 4)
	assert.Equal(t, "1200000", facts[1].Value)
	assert.Equal(t, "0.910", facts[2].Value)
}

func TestBuildSummaryMessage(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildSummaryMessage(sampleAlerts())

	assert.Equal(t, "WaveSight Daily Summary", message.Title)
	require.NotEmpty(t, message.Sections)

	facts := message.Sections[0].Facts
	assert.Equal(t, "Total Alerts", facts[0].Name)
	assert.Equal(t, "2", facts[0].Value)

	var names []string
	for _, fact := range facts {
		names = append(names, fact.Name)
	}
	assert.Contains(t, names, "CRITICAL")
	assert.Contains(t, names, "HIGH")
	assert.NotContains(t, names, "LOW")
}

func TestBuildSummaryMessage_Empty(t *testing.T) {
	service := NewService(&config.Config{})

	message := service.buildSummaryMessage(nil)

	assert.Contains(t, message.Text, "0 alerts")
	require.Len(t, message.Sections, 1)
}

func TestBuildEmailText(t *testing.T) {
	service := NewService(&config.Config{})

	text := service.buildEmailText(sampleAlerts())

	assert.Contains(t, text, "[CRITICAL] Breaking story spreads fast")
	assert.Contains(t, text, "Wave: 0.910")
	assert.Contains(t, text, "[HIGH] Steady climber")
}

func TestBuildEmailHTML(t *testing.T) {
	service := NewService(&config.Config{})

	html, err := service.buildEmailHTML(sampleAlerts())
	require.NoError(t, err)

	assert.Contains(t, html, "Breaking story spreads fast")
	assert.Contains(t, html, "CRITICAL")
	assert.Contains(t, html, "WaveSight Alerts")
}
