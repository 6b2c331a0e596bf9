package trends

import (
	"testing"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	c := NewCategorizer()

	tests := []struct {
		name        string
		title       string
		description string
		channel     string
		expected    string
	}{
		{
			name:        "AI content maps to tech",
			title:       "AI chatbot breakthrough",
			description: "New machine learning model",
			channel:     "Tech Channel",
			expected:    "Tech Innovation",
		},
		{
			name:        "Gaming content",
			title:       "Top esports plays this week",
			description: "Best twitch streamer moments",
			channel:     "Gaming Central",
			expected:    "Gaming Culture",
		},
		{
			name:        "Streetwear content",
			title:       "Chrome pants are everywhere",
			description: "Street style at fashion week",
			channel:     "Hypebeast TV",
			expected:    "Urban Style & Nightlife",
		},
		{
			name:        "Finance content",
			title:       "Stocks rally as market recovers",
			description: "Investment strategies for the economy",
			channel:     "Finance Daily",
			expected:    "Financial Markets",
		},
		{
			name:        "Unmatched content falls back to default",
			title:       "zzqx qqww",
			description: "eeyy rrtt",
			channel:     "uuii",
			expected:    "Emerging Subcultures",
		},
		{
			name:        "Empty input falls back to default",
			title:       "",
			description: "",
			channel:     "",
			expected:    "Emerging Subcultures",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Categorize(tt.title, tt.description, tt.channel)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCategorize_ChannelOutweighsKeyword(t *testing.T) {
	c := NewCategorizer()

	// "tiktok" appears as both a keyword (weight 2) and a channel (weight 3)
	// for Gen Z; a single gaming keyword cannot beat it.
	got := c.Categorize("game night on tiktok", "", "tiktok")
	assert.Equal(t, "Gen Z Internet Culture", got)
}

func TestCategorize_ExtraKeywordsCount(t *testing.T) {
	c := NewCategorizer()

	got := c.Categorize("weekly roundup", "", "", "meditation", "breathwork", "yoga")
	assert.Equal(t, "Wellness & Mindfulness", got)
}

func TestCategorizeWithCustomTaxonomy(t *testing.T) {
	c := NewCategorizerWithTaxonomy([]Category{
		{Name: "Cats", Keywords: []string{"cat"}},
		{Name: "Other"},
	})

	assert.Equal(t, "Cats", c.Categorize("cat video", "", ""))
	assert.Equal(t, "Other", c.Categorize("dog video", "", ""))
}

func TestNormalizeTrendName(t *testing.T) {
	assert.Equal(t, "Ai Tools", NormalizeTrendName("AI tools!!!"))
	assert.Equal(t, "Chrome Pants", NormalizeTrendName("  chrome   pants  "))
	assert.Equal(t, "", NormalizeTrendName("???"))
}

func TestAggregate(t *testing.T) {
	c := NewCategorizer()

	items := []models.ContentItem{
		{
			ID:           "v1",
			Source:       "youtube",
			Platform:     "Tech Channel",
			Title:        "AI chatbot breakthrough",
			ViewCount:    1000000,
			LikeCount:    40000,
			CommentCount: 10000,
			TrendScore:   0.8,
		},
		{
			ID:           "v2",
			Source:       "youtube",
			Platform:     "AI Weekly",
			Title:        "chatgpt automation guide",
			ViewCount:    500000,
			LikeCount:    20000,
			CommentCount: 5000,
			TrendScore:   0.6,
		},
		{
			// Lone item in its category, suppressed from the output.
			ID:         "v3",
			Source:     "youtube",
			Platform:   "Gaming Central",
			Title:      "esports finals recap",
			ViewCount:  200000,
			TrendScore: 0.4,
		},
	}

	insights := c.Aggregate(items, map[string]float64{"Tech Innovation": 0.72})

	assert.Len(t, insights, 1)
	insight := insights[0]

	assert.Equal(t, "Tech Innovation", insight.TrendName)
	assert.Equal(t, 2, insight.TotalItems)
	assert.Equal(t, int64(1500000), insight.TotalReach)
	assert.Equal(t, int64(60000), insight.TotalLikes)
	assert.Equal(t, int64(15000), insight.TotalComments)
	// (60000+15000)/1500000 * 100 = 5%
	assert.InDelta(t, 5.0, insight.EngagementRate, 0.0001)
	assert.InDelta(t, 0.7, insight.TrendScore, 0.0001)
	assert.Equal(t, 0.72, insight.SentimentScore)
	assert.Contains(t, insight.DataSources, "YouTube")
	assert.Contains(t, insight.DataSources, "Reddit")

	if assert.NotNil(t, insight.TopContent) {
		assert.Equal(t, "v1", insight.TopContent.ContentID)
		assert.Equal(t, int64(1000000), insight.TopContent.Views)
	}
	assert.WithinDuration(t, time.Now().UTC(), insight.AnalysisDate, time.Minute)
}

func TestAggregate_DefaultsToNeutralSentiment(t *testing.T) {
	c := NewCategorizer()

	items := []models.ContentItem{
		{ID: "a", Platform: "Gaming Central", Title: "esports finals", ViewCount: 100},
		{ID: "b", Platform: "Twitch Weekly", Title: "top streamer moments", ViewCount: 200},
	}

	insights := c.Aggregate(items, nil)

	assert.Len(t, insights, 1)
	assert.Equal(t, 0.5, insights[0].SentimentScore)
	assert.NotContains(t, insights[0].DataSources, "Reddit")
}

func TestAggregate_EmptyInput(t *testing.T) {
	c := NewCategorizer()
	assert.Empty(t, c.Aggregate(nil, nil))
}
