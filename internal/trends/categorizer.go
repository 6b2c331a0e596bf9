// Package trends classifies content items into a fixed cultural taxonomy and
// aggregates category cohorts into trend insight records.
package trends

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/jerbear472/WaveSight/internal/wavescore"
)

const (
	keywordWeight = 2
	channelWeight = 3

	// Categories with a single item are statistically noisy and suppressed.
	minItemsPerInsight = 2
)

// Categorizer scores content against an injectable taxonomy.
type Categorizer struct {
	taxonomy []Category
}

// NewCategorizer uses the default 10-category taxonomy.
func NewCategorizer() *Categorizer {
	return &Categorizer{taxonomy: DefaultTaxonomy()}
}

// NewCategorizerWithTaxonomy allows tests and configuration to supply their
// own category tables. An empty taxonomy falls back to the default.
func NewCategorizerWithTaxonomy(taxonomy []Category) *Categorizer {
	if len(taxonomy) == 0 {
		taxonomy = DefaultTaxonomy()
	}
	return &Categorizer{taxonomy: taxonomy}
}

// Categorize is total: every input maps to exactly one taxonomy category.
// Keyword hits score 2, channel-name hits score 3, against the lower-cased
// concatenation of all text fields; the strictly highest total wins, ties
// resolve in taxonomy order, and an all-zero score falls back to the last
// (default) category.
func (c *Categorizer) Categorize(title, description, channel string, keywords ...string) string {
	content := strings.ToLower(title + " " + description + " " + channel)
	if len(keywords) > 0 {
		content += " " + strings.ToLower(strings.Join(keywords, " "))
	}

	best := c.taxonomy[len(c.taxonomy)-1].Name
	bestScore := 0

	for _, category := range c.taxonomy {
		score := 0
		for _, kw := range category.Keywords {
			if strings.Contains(content, strings.ToLower(kw)) {
				score += keywordWeight
			}
		}
		for _, ch := range category.Channels {
			if strings.Contains(content, strings.ToLower(ch)) {
				score += channelWeight
			}
		}
		if score > bestScore {
			bestScore = score
			best = category.Name
		}
	}

	return best
}

var trendNameCleaner = regexp.MustCompile(`[^\w\s]`)

// NormalizeTrendName turns a raw search term into a clean display name.
func NormalizeTrendName(raw string) string {
	cleaned := trendNameCleaner.ReplaceAllString(raw, "")
	words := strings.Fields(cleaned)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Aggregate groups items by category and produces one TrendInsight per
// category holding at least two items. sentimentByCategory supplies optional
// per-category sentiment values; absent categories default to neutral 0.5.
func (c *Categorizer) Aggregate(items []models.ContentItem, sentimentByCategory map[string]float64) []models.TrendInsight {
	groups := make(map[string][]models.ContentItem)
	order := make([]string, 0)

	for _, item := range items {
		category := c.Categorize(item.Title, item.Description, item.Platform)
		if _, seen := groups[category]; !seen {
			order = append(order, category)
		}
		groups[category] = append(groups[category], item)
	}

	now := time.Now().UTC()
	insights := make([]models.TrendInsight, 0, len(order))

	for _, category := range order {
		group := groups[category]
		if len(group) < minItemsPerInsight {
			continue
		}

		sentiment := 0.5
		hasReddit := false
		if s, ok := sentimentByCategory[category]; ok {
			sentiment = s
			hasReddit = true
		}

		insight := aggregateGroup(category, group, sentiment, now)
		insight.DataSources = dataSources(group, hasReddit)
		insights = append(insights, insight)
	}

	return insights
}

func aggregateGroup(category string, items []models.ContentItem, sentiment float64, analysisDate time.Time) models.TrendInsight {
	var totalViews, totalLikes, totalComments int64
	var scoreSum float64
	var top *models.ContentItem

	for i := range items {
		item := &items[i]
		totalViews += item.ViewCount
		totalLikes += item.LikeCount
		totalComments += item.CommentCount
		scoreSum += item.TrendScore
		if top == nil || item.ViewCount > top.ViewCount {
			top = item
		}
	}

	engagementRate := 0.0
	if totalViews > 0 {
		engagementRate = float64(totalLikes+totalComments) / float64(totalViews) * 100
	}

	insight := models.TrendInsight{
		TrendName:      category,
		Category:       category,
		TotalItems:     len(items),
		TotalReach:     totalViews,
		TotalLikes:     totalLikes,
		TotalComments:  totalComments,
		EngagementRate: round3(engagementRate),
		SentimentScore: sentiment,
		TrendScore:     round3(scoreSum / float64(len(items))),
		WaveScore: wavescore.Score(
			totalViews,
			wavescore.EstimatePreviousViews(totalViews),
			totalLikes,
			totalComments,
			sentiment,
		),
		AnalysisDate: analysisDate,
	}

	if top != nil {
		insight.TopContent = &models.TopContent{
			ContentID: top.ID,
			Title:     top.Title,
			Views:     top.ViewCount,
		}
	}

	return insight
}

func dataSources(items []models.ContentItem, hasReddit bool) []string {
	set := make(map[string]bool)
	var sources []string
	add := func(label string) {
		if !set[label] {
			set[label] = true
			sources = append(sources, label)
		}
	}

	for _, item := range items {
		switch item.Source {
		case "youtube":
			add("YouTube")
		case "reddit":
			add("Reddit")
		case "":
		default:
			add(item.Source)
		}
	}
	if hasReddit {
		add("Reddit")
	}

	return sources
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
