package models

import "time"

// ContentItem is a single piece of content fetched from a platform
// (a YouTube video, a Reddit post) before any scoring has happened.
type ContentItem struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`   // "youtube", "reddit", "synthetic"
	Platform     string    `json:"platform"` // channel, subreddit or platform label
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Author       string    `json:"author"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	Comments     []string  `json:"comments,omitempty"` // sampled comment bodies for sentiment
	TrendScore   float64   `json:"trend_score"`
}

// ContentMetrics holds the per-item numbers the alert rules evaluate.
// It is ephemeral: computed during a scan and discarded after it.
type ContentMetrics struct {
	ContentID         string    `json:"content_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	ChannelTitle      string    `json:"channel_title"`
	ViewCount         int64     `json:"view_count"`
	PreviousViewCount int64     `json:"previous_view_count"`
	LikeCount         int64     `json:"like_count"`
	CommentCount      int64     `json:"comment_count"`
	SentimentScore    float64   `json:"sentiment_score"` // [0,1]
	GrowthRate        float64   `json:"growth_rate"`
	WaveScore         float64   `json:"wave_score"`
	PublishedAt       time.Time `json:"published_at"`
	HoursSincePublish float64   `json:"hours_since_publish"`
}

// Severity is the ordered alert urgency level.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return "LOW"
	}
	return severityNames[s]
}

// Max returns the higher of two severities. Escalation across alert rules
// is a max-merge, never a sum.
func (s Severity) Max(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// MarshalText makes Severity serialize as its name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name, defaulting to LOW for unknown input.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	*s = SeverityLow
	return nil
}

// Alert is an immutable record of one content item tripping the alert rules.
// Created at most once per content item per engine window, persisted
// immediately, never mutated.
type Alert struct {
	AlertID        string    `json:"alert_id"`
	AlertType      string    `json:"alert_type"`
	ContentID      string    `json:"content_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"` // truncated to 500 chars
	ChannelTitle   string    `json:"channel_title"`
	ViewCount      int64     `json:"view_count"`
	LikeCount      int64     `json:"like_count"`
	WaveScore      float64   `json:"wave_score"`
	GrowthRate     float64   `json:"growth_rate"`
	SentimentScore float64   `json:"sentiment_score"`
	Reason         string    `json:"reason"` // matched rules joined with "; "
	Severity       Severity  `json:"severity"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlertCriteria is the mutable, process-wide alert configuration. The view
// count and age fields are hard gates; the rest feed ORed reason checks.
type AlertCriteria struct {
	MinViewCount  int64    `json:"min_view_count"`
	MinLikeRatio  float64  `json:"min_like_ratio"`
	MinWaveScore  float64  `json:"min_wave_score"`
	MaxHoursOld   float64  `json:"max_hours_old"`
	MinGrowthRate float64  `json:"min_growth_rate"`
	Keywords      []string `json:"keywords"`
	Categories    []string `json:"categories"`
}

// DefaultAlertCriteria returns the baseline thresholds.
func DefaultAlertCriteria() AlertCriteria {
	return AlertCriteria{
		MinViewCount:  100000,
		MinLikeRatio:  0.02,
		MinWaveScore:  0.7,
		MaxHoursOld:   24,
		MinGrowthRate: 0.5,
		Keywords:      []string{"breaking", "urgent", "viral", "trending", "alert"},
		Categories:    []string{"AI Tools", "Crypto", "Technology", "Gaming"},
	}
}

// CriteriaPatch overrides any subset of AlertCriteria at runtime. Nil fields
// leave the current value untouched.
type CriteriaPatch struct {
	MinViewCount  *int64   `json:"min_view_count,omitempty"`
	MinLikeRatio  *float64 `json:"min_like_ratio,omitempty"`
	MinWaveScore  *float64 `json:"min_wave_score,omitempty"`
	MaxHoursOld   *float64 `json:"max_hours_old,omitempty"`
	MinGrowthRate *float64 `json:"min_growth_rate,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Coordinate is a cultural compass position. Both axes stay within
// [-0.95, 0.95]: x runs mainstream (-1) to underground (+1), y runs
// traditional (-1) to disruptive (+1).
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EvidencePost is one sampled post in a topic's evidence corpus.
type EvidencePost struct {
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Source       string    `json:"source"` // subreddit or channel name
	Score        int64     `json:"score"`
	CommentCount int64     `json:"comment_count"`
	UpvoteRatio  float64   `json:"upvote_ratio"`
	CreatedAt    time.Time `json:"created_at"`
	Comments     []string  `json:"-"` // sampled comment bodies for sentiment
}

// SourceCount pairs a source label with how many evidence posts it supplied.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// CulturalTrend is one analysis run's placement of a topic on the cultural
// compass, upserted on (topic, analysis_date).
type CulturalTrend struct {
	Topic            string        `json:"topic"`
	Name             string        `json:"name"`
	Coordinates      Coordinate    `json:"coordinates"`
	SentimentScore   float64       `json:"sentiment_score"`
	TotalPosts       int           `json:"total_posts"`
	TotalEngagement  int64         `json:"total_engagement"`
	AvgEngagement    float64       `json:"avg_engagement"`
	SourceSpread     int           `json:"source_spread"`
	DominantSources  []SourceCount `json:"dominant_sources"`
	CulturalVelocity float64       `json:"cultural_velocity"`
	CulturalMomentum string        `json:"cultural_momentum"` // Rising, Stable, Declining
	Category         string        `json:"category"`
	MainstreamScore  float64       `json:"mainstream_score"`
	DisruptionScore  float64       `json:"disruption_score"`
	CulturalImpact   string        `json:"cultural_impact"` // Low/Emerging/Moderate/High Impact
	TemporalTrend    string        `json:"temporal_trend"`  // Accelerating, Steady, Peaking, Declining
	Platform         string        `json:"platform"`        // distinguishes real analysis from synthetic
	AnalysisDate     time.Time     `json:"analysis_date"`
	Confidence       float64       `json:"confidence"`
}

// TopContent identifies the highest-reach item inside an aggregated trend.
type TopContent struct {
	ContentID string `json:"content_id"`
	Title     string `json:"title"`
	Views     int64  `json:"views"`
}

// TrendInsight is the aggregate record for all content items sharing a
// cultural category in one batch run, upserted on (trend_name, analysis_date).
type TrendInsight struct {
	TrendName      string      `json:"trend_name"`
	Category       string      `json:"category"`
	TotalItems     int         `json:"total_items"`
	TotalReach     int64       `json:"total_reach"`
	TotalLikes     int64       `json:"total_likes"`
	TotalComments  int64       `json:"total_comments"`
	EngagementRate float64     `json:"engagement_rate"`
	WaveScore      float64     `json:"wave_score"`
	SentimentScore float64     `json:"sentiment_score"`
	TrendScore     float64     `json:"trend_score"`
	DataSources    []string    `json:"data_sources"`
	TopContent     *TopContent `json:"top_content,omitempty"`
	AnalysisDate   time.Time   `json:"analysis_date"`
}

// ScanResult summarizes one alert scan cycle.
type ScanResult struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	CandidatesSeen  int           `json:"candidates_seen"`
	AlertsGenerated int           `json:"alerts_generated"`
	Alerts          []Alert       `json:"alerts"`
	Warnings        []string      `json:"warnings,omitempty"`
}
