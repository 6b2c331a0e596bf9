package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jerbear472/WaveSight/internal/config"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending notifications via various channels. Every alert is
// logged; only CRITICAL alerts go out through the external channels, and the
// daily summary goes out regardless of severity.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// NotifyAlerts logs every alert and pushes CRITICAL ones to the configured
// external channels. Channel failures are collected, not fatal.
func (s *Service) NotifyAlerts(ctx context.Context, alerts []models.Alert) error {
	var critical []models.Alert

	for _, alert := range alerts {
		logrus.WithFields(logrus.Fields{
			"alert_id":   alert.AlertID,
			"severity":   alert.Severity.String(),
			"content_id": alert.ContentID,
			"wave_score": alert.WaveScore,
		}).Infof("ALERT [%s] %s | %s", alert.Severity, alert.Title, alert.Reason)

		if alert.Severity == models.SeverityCritical {
			critical = append(critical, alert)
		}
	}

	if len(critical) == 0 {
		return nil
	}

	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(ctx, s.buildCriticalMessage(critical)); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent critical alerts to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		subject := fmt.Sprintf("WaveSight CRITICAL: %d viral content alerts", len(critical))
		if err := s.sendEmail(subject, critical); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent critical alerts via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendDailySummary delivers the day's alert digest to all configured channels.
func (s *Service) SendDailySummary(ctx context.Context, alerts []models.Alert) error {
	logrus.Infof("Sending daily summary with %d alerts", len(alerts))

	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(ctx, s.buildSummaryMessage(alerts)); err != nil {
			logrus.Errorf("Failed to send Teams summary: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		}
	}

	if s.config.NotificationEmail != "" {
		subject := fmt.Sprintf("WaveSight Daily Summary - %d alerts", len(alerts))
		if err := s.sendEmail(subject, alerts); err != nil {
			logrus.Errorf("Failed to send email summary: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(ctx context.Context, message *TeamsMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildCriticalMessage(alerts []models.Alert) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("WaveSight Critical Alerts (%d)", len(alerts)),
		Text:    "Content crossing critical virality thresholds",
	}

	for _, alert := range alerts {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: alert.Title,
			ActivityText:  alert.Reason,
			Facts: []TeamsFact{
				{Name: "Channel", Value: alert.ChannelTitle},
				{Name: "Views", Value: fmt.Sprintf("%d", alert.ViewCount)},
				{Name: "Wave Score", Value: fmt.Sprintf("%.3f", alert.WaveScore)},
				{Name: "Growth", Value: fmt.Sprintf("%.2fx", alert.GrowthRate)},
			},
			Markdown: true,
		})
	}

	return message
}

func (s *Service) buildSummaryMessage(alerts []models.Alert) *TeamsMessage {
	bySeverity := make(map[string]int)
	for _, alert := range alerts {
		bySeverity[alert.Severity.String()]++
	}

	facts := []TeamsFact{
		{Name: "Total Alerts", Value: fmt.Sprintf("%d", len(alerts))},
		{Name: "Generated", Value: time.Now().UTC().Format("2006-01-02 15:04:05 UTC")},
	}
	for _, severity := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if count := bySeverity[severity]; count > 0 {
			facts = append(facts, TeamsFact{Name: severity, Value: fmt.Sprintf("%d", count)})
		}
	}

	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   "WaveSight Daily Summary",
		Text:    fmt.Sprintf("%d alerts fired in the last 24 hours", len(alerts)),
		Sections: []TeamsSection{
			{ActivityTitle: "Breakdown", Facts: facts, Markdown: true},
		},
	}

	limit := 5
	if len(alerts) < limit {
		limit = len(alerts)
	}
	if limit > 0 {
		var lines []string
		for i := 0; i < limit; i++ {
			alert := alerts[i]
			lines = append(lines, fmt.Sprintf("**%s** [%s] wave %.3f - %s",
				alert.Title, alert.Severity, alert.WaveScore, alert.ChannelTitle))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Alerts",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(subject string, alerts []models.Alert) error {
	htmlBody, err := s.buildEmailHTML(alerts)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(alerts))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"truncate": func(s string, length int) string {
		if len(s) <= length {
			return s
		}
		return s[:length] + "..."
	},
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>WaveSight Alerts</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #5b21b6; color: white; padding: 20px; border-radius: 5px; }
        .alert { border-left: 4px solid #5b21b6; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .alert-title { font-weight: bold; margin-bottom: 5px; }
        .alert-meta { color: #666; font-size: 0.9em; }
        .CRITICAL { border-left-color: #d13438; }
        .HIGH { border-left-color: #ff8c00; }
        .MEDIUM { border-left-color: #ffd700; }
    </style>
</head>
<body>
    <div class="header">
        <h1>WaveSight Alerts</h1>
        <p>{{len .}} alerts</p>
    </div>

    {{range .}}
    <div class="alert {{.Severity}}">
        <div class="alert-title">{{.Title}}</div>
        <div class="alert-meta">
            {{.ChannelTitle}} | {{.ViewCount}} views | wave {{printf "%.3f" .WaveScore}} | {{.Severity}}
        </div>
        <p>{{.Reason}}</p>
        {{if .Description}}<p>{{truncate .Description 200}}</p>{{end}}
    </div>
    {{end}}

    <hr>
    <p><small>This report was generated automatically by WaveSight.</small></p>
</body>
</html>
`))

func (s *Service) buildEmailHTML(alerts []models.Alert) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, alerts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) buildEmailText(alerts []models.Alert) string {
	var text strings.Builder

	text.WriteString("WaveSight Alerts\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC")))

	for i, alert := range alerts {
		text.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, alert.Severity, alert.Title))
		text.WriteString(fmt.Sprintf("   Channel: %s | Views: %d | Wave: %.3f | Growth: %.2fx\n",
			alert.ChannelTitle, alert.ViewCount, alert.WaveScore, alert.GrowthRate))
		text.WriteString(fmt.Sprintf("   Reason: %s\n\n", alert.Reason))
	}

	text.WriteString("---\nThis report was generated automatically by WaveSight.\n")

	return text.String()
}
