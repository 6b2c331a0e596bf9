// Package cultural places topics on a two-axis cultural compass
// (mainstream/underground x traditional/disruptive) from an evidence corpus
// of posts and comments gathered about the topic.
package cultural

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/sentiment"
	"github.com/jerbear472/WaveSight/internal/trends"
	"github.com/sirupsen/logrus"
)

// Platform labels let callers tell a real analysis from an estimated one.
const (
	PlatformLabel          = "Reddit Cultural Analysis"
	PlatformLabelSynthetic = "Reddit Cultural Analysis (Synthetic)"
)

const (
	coordinateBound = 0.95

	// Engagement thresholds steering the mainstream axis.
	highEngagement = 1000.0
	lowEngagement  = 50.0

	// Per-topic analysis fan-out; keeps upstream rate limits comfortable.
	defaultConcurrency = 4
)

// Source-set membership for the mainstream/underground split.
var (
	mainstreamSources  = []string{"all", "news", "television", "movies", "Music"}
	undergroundSources = []string{"streetwear", "WeAreTheMusicMakers", "experimentalmusic", "cyberpunk"}

	mainstreamTopicTerms  = []string{"viral", "trending", "mainstream", "popular"}
	undergroundTopicTerms = []string{"underground", "niche", "indie", "alternative", "experimental"}

	disruptiveKeywords  = []string{"ai", "crypto", "blockchain", "revolution", "change", "disruption", "innovation", "breakthrough"}
	traditionalKeywords = []string{"classic", "traditional", "vintage", "heritage", "conservative", "established"}

	disruptiveTopicTerms  = []string{"ai", "technology", "crypto", "digital", "virtual", "automation"}
	traditionalTopicTerms = []string{"traditional", "vintage", "classic", "heritage"}
)

// EvidenceSource supplies the post/comment corpus for a topic. An empty
// result with a nil error means "no data", never a failure.
type EvidenceSource interface {
	Name() string
	FetchEvidence(ctx context.Context, topic string, maxItems int) ([]models.EvidencePost, error)
}

// Projector computes CulturalTrend records. When the primary evidence source
// yields nothing, the injected synthetic provider fills in and the resulting
// trend is labeled as estimated.
type Projector struct {
	evidence    EvidenceSource
	synthetic   EvidenceSource
	scorer      *sentiment.Scorer
	categorizer *trends.Categorizer
	maxEvidence int
	concurrency int
}

// NewProjector wires a projector. evidence may be nil when no real
// collaborator is configured; synthetic must always be present.
func NewProjector(evidence, synthetic EvidenceSource, scorer *sentiment.Scorer) *Projector {
	return &Projector{
		evidence:    evidence,
		synthetic:   synthetic,
		scorer:      scorer,
		categorizer: trends.NewCategorizer(),
		maxEvidence: 50,
		concurrency: defaultConcurrency,
	}
}

// AnalyzeTopic produces a structurally complete CulturalTrend for the topic.
// It only fails on invalid input (empty topic); upstream unavailability
// degrades to synthetic evidence instead.
func (p *Projector) AnalyzeTopic(ctx context.Context, topic string) (models.CulturalTrend, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return models.CulturalTrend{}, fmt.Errorf("topic is required")
	}

	posts, platform := p.gatherEvidence(ctx, topic)
	return p.project(topic, posts, platform), nil
}

// AnalyzeTopics analyzes a batch of topics with bounded concurrency. Topics
// that fail validation are skipped; order of results follows input order.
func (p *Projector) AnalyzeTopics(ctx context.Context, topics []string) []models.CulturalTrend {
	results := make([]*models.CulturalTrend, len(topics))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, topic := range topics {
		wg.Add(1)
		go func(i int, topic string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			trend, err := p.AnalyzeTopic(ctx, topic)
			if err != nil {
				logrus.Warnf("Skipping topic %q: %v", topic, err)
				return
			}
			results[i] = &trend
		}(i, topic)
	}
	wg.Wait()

	out := make([]models.CulturalTrend, 0, len(topics))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (p *Projector) gatherEvidence(ctx context.Context, topic string) ([]models.EvidencePost, string) {
	if p.evidence != nil {
		posts, err := p.evidence.FetchEvidence(ctx, topic, p.maxEvidence)
		if err != nil {
			logrus.Errorf("Evidence fetch failed for %q, falling back to synthetic: %v", topic, err)
		} else if len(posts) > 0 {
			return posts, PlatformLabel
		}
	}

	posts, err := p.synthetic.FetchEvidence(ctx, topic, p.maxEvidence)
	if err != nil {
		// The synthetic provider never errors in practice; keep the
		// structurally-complete guarantee anyway.
		logrus.Errorf("Synthetic evidence failed for %q: %v", topic, err)
		posts = nil
	}
	return posts, PlatformLabelSynthetic
}

// project turns an evidence corpus into the full trend record. Every
// sub-calculation tolerates an empty corpus.
func (p *Projector) project(topic string, posts []models.EvidencePost, platform string) models.CulturalTrend {
	sentiments := p.postSentiments(posts)
	avgSentiment := 0.5
	if len(sentiments) > 0 {
		avgSentiment = mean(sentiments)
	}

	distribution := sourceDistribution(posts)
	totalEngagement := int64(0)
	for _, post := range posts {
		totalEngagement += post.Score + post.CommentCount
	}
	avgEngagement := 0.0
	if len(posts) > 0 {
		avgEngagement = float64(totalEngagement) / float64(len(posts))
	}

	coord := coordinates(topic, posts, distribution, avgEngagement, avgSentiment)

	trend := models.CulturalTrend{
		Topic:            topic,
		Name:             trends.NormalizeTrendName(topic),
		Coordinates:      coord,
		SentimentScore:   sentiment.Round3(avgSentiment),
		TotalPosts:       len(posts),
		TotalEngagement:  totalEngagement,
		AvgEngagement:    sentiment.Round3(avgEngagement),
		SourceSpread:     len(distribution),
		DominantSources:  dominantSources(distribution, 3),
		CulturalVelocity: velocity(avgEngagement, sentiments),
		CulturalMomentum: momentum(avgEngagement, len(posts)),
		Category:         p.categorizer.Categorize(topic, corpusText(posts), dominantSourceText(distribution)),
		MainstreamScore:  mainstreamScore(distribution, avgEngagement),
		DisruptionScore:  disruptionScore(topic, posts, avgSentiment),
		CulturalImpact:   impact(len(posts), totalEngagement, len(distribution)),
		TemporalTrend:    temporalPattern(posts, time.Now().UTC()),
		Platform:         platform,
		AnalysisDate:     time.Now().UTC(),
		Confidence:       confidence(len(posts), len(sentiments), len(distribution)),
	}
	return trend
}

func (p *Projector) postSentiments(posts []models.EvidencePost) []float64 {
	var scores []float64
	for _, post := range posts {
		if len(post.Comments) == 0 {
			continue
		}
		scores = append(scores, p.scorer.Score(post.Comments))
	}
	return scores
}

// coordinates computes the compass position. Adjustments are independent and
// additive; the result is clamped to [-0.95, 0.95] on both axes.
func coordinates(topic string, posts []models.EvidencePost, distribution map[string]int, avgEngagement, avgSentiment float64) models.Coordinate {
	topicLower := strings.ToLower(topic)

	// X-axis: mainstream (-1) to underground (+1).
	x := 0.0
	if len(posts) > 0 {
		if avgEngagement > highEngagement {
			x -= 0.3
		} else if avgEngagement < lowEngagement {
			x += 0.4
		}
	}

	mainstreamPosts := countFromSources(distribution, mainstreamSources)
	undergroundPosts := countFromSources(distribution, undergroundSources)
	totalPosts := 0
	for _, n := range distribution {
		totalPosts += n
	}
	if totalPosts > 0 {
		if mainstreamPosts > undergroundPosts {
			x -= float64(mainstreamPosts) / float64(totalPosts) * 0.6
		} else if undergroundPosts > 0 {
			x += float64(undergroundPosts) / float64(totalPosts) * 0.6
		}
	}

	if containsAny(topicLower, mainstreamTopicTerms) {
		x -= 0.2
	} else if containsAny(topicLower, undergroundTopicTerms) {
		x += 0.3
	}

	// Y-axis: traditional (-1) to disruptive (+1).
	y := 0.0
	disruptive, traditional := 0, 0
	for _, post := range posts {
		content := strings.ToLower(post.Title + " " + post.Body)
		for _, kw := range disruptiveKeywords {
			if strings.Contains(content, kw) {
				disruptive++
			}
		}
		for _, kw := range traditionalKeywords {
			if strings.Contains(content, kw) {
				traditional++
			}
		}
	}
	if len(posts) > 0 {
		if disruptive > traditional {
			y += math.Min(float64(disruptive)/float64(len(posts)), 0.8)
		} else if traditional > disruptive {
			y -= math.Min(float64(traditional)/float64(len(posts)), 0.8)
		}
	}

	if avgSentiment > 0.7 {
		y += 0.1
	} else if avgSentiment < 0.3 {
		y -= 0.1
	}

	if containsAny(topicLower, disruptiveTopicTerms) {
		y += 0.4
	} else if containsAny(topicLower, traditionalTopicTerms) {
		y -= 0.4
	}

	return models.Coordinate{
		X: sentiment.Round3(clampCoord(x)),
		Y: sentiment.Round3(clampCoord(y)),
	}
}

// mainstreamScore is the mainstream-source share of the corpus boosted by
// average engagement, capped at 1.0.
func mainstreamScore(distribution map[string]int, avgEngagement float64) float64 {
	totalPosts := 0
	for _, n := range distribution {
		totalPosts += n
	}
	if totalPosts == 0 {
		return 0
	}

	score := float64(countFromSources(distribution, mainstreamSources)) / float64(totalPosts)
	score += math.Min(avgEngagement/2000.0, 0.3)
	return sentiment.Round3(math.Min(score, 1.0))
}

// disruptionScore is the disruptive-keyword density across the corpus plus
// sentiment and topic-vocabulary boosts, capped at 1.0.
func disruptionScore(topic string, posts []models.EvidencePost, avgSentiment float64) float64 {
	mentions := 0
	for _, post := range posts {
		content := strings.ToLower(post.Title + " " + post.Body)
		for _, kw := range disruptiveKeywords {
			if strings.Contains(content, kw) {
				mentions++
			}
		}
	}

	score := 0.0
	if len(posts) > 0 {
		score = float64(mentions) / float64(len(posts))
	}
	if avgSentiment > 0.6 {
		score += 0.2
	}
	if containsAny(strings.ToLower(topic), disruptiveKeywords) {
		score += 0.3
	}
	return sentiment.Round3(math.Min(score, 1.0))
}

// velocity blends normalized average engagement with a sentiment-consistency
// bonus: tightly clustered sentiment samples score higher.
func velocity(avgEngagement float64, sentiments []float64) float64 {
	if avgEngagement == 0 && len(sentiments) == 0 {
		return 0.5
	}

	base := math.Min(avgEngagement/1000.0, 1.0)
	bonus := 0.0
	if len(sentiments) > 0 {
		m := mean(sentiments)
		variance := 0.0
		for _, s := range sentiments {
			variance += (s - m) * (s - m)
		}
		variance /= float64(len(sentiments))
		bonus = math.Max(0, 0.5-variance)
	}
	return sentiment.Round3(math.Min(base+bonus, 1.0))
}

func momentum(avgEngagement float64, totalPosts int) string {
	if totalPosts == 0 {
		return "Stable"
	}
	switch {
	case avgEngagement > 500:
		return "Rising"
	case avgEngagement > 100:
		return "Stable"
	default:
		return "Declining"
	}
}

func impact(totalPosts int, totalEngagement int64, sourceSpread int) string {
	switch {
	case totalPosts >= 50 && totalEngagement >= 10000 && sourceSpread >= 5:
		return "High Impact"
	case totalPosts >= 20 && totalEngagement >= 2000 && sourceSpread >= 3:
		return "Moderate Impact"
	case totalPosts >= 5 && totalEngagement >= 500:
		return "Emerging Impact"
	default:
		return "Low Impact"
	}
}

// temporalPattern buckets the share of posts from the last 7 days.
func temporalPattern(posts []models.EvidencePost, now time.Time) string {
	if len(posts) < 3 {
		return "Steady"
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	recent := 0
	for _, post := range posts {
		if post.CreatedAt.After(cutoff) {
			recent++
		}
	}

	share := float64(recent) / float64(len(posts))
	switch {
	case share > 0.5:
		return "Accelerating"
	case share > 0.3:
		return "Steady"
	case share > 0.1:
		return "Peaking"
	default:
		return "Declining"
	}
}

// confidence averages three sufficiency ratios: post count (enough at 50),
// sentiment samples (enough at 30) and source spread (enough at 8).
func confidence(totalPosts, sentimentCount, sourceSpread int) float64 {
	posts := math.Min(float64(totalPosts)/50.0, 1.0)
	sentiments := math.Min(float64(sentimentCount)/30.0, 1.0)
	spread := math.Min(float64(sourceSpread)/8.0, 1.0)
	return sentiment.Round3((posts + sentiments + spread) / 3)
}

func sourceDistribution(posts []models.EvidencePost) map[string]int {
	distribution := make(map[string]int)
	for _, post := range posts {
		if post.Source != "" {
			distribution[post.Source]++
		}
	}
	return distribution
}

func dominantSources(distribution map[string]int, limit int) []models.SourceCount {
	counts := make([]models.SourceCount, 0, len(distribution))
	for source, n := range distribution {
		counts = append(counts, models.SourceCount{Source: source, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Source < counts[j].Source
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func dominantSourceText(distribution map[string]int) string {
	var names []string
	for source := range distribution {
		names = append(names, source)
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

func corpusText(posts []models.EvidencePost) string {
	var b strings.Builder
	for _, post := range posts {
		b.WriteString(post.Title)
		b.WriteString(" ")
	}
	return b.String()
}

func countFromSources(distribution map[string]int, sources []string) int {
	total := 0
	for _, source := range sources {
		total += distribution[source]
	}
	return total
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func clampCoord(v float64) float64 {
	return math.Max(-coordinateBound, math.Min(coordinateBound, v))
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
