package sources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYouTubeSource_Disabled(t *testing.T) {
	source := NewYouTubeSource("")

	assert.False(t, source.IsEnabled())

	items, err := source.FetchCandidates(context.Background(), []string{"anything"}, time.Hour, 10)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestRedditSource_Disabled(t *testing.T) {
	source := NewRedditSource("", "")

	assert.False(t, source.IsEnabled())

	posts, err := source.FetchEvidence(context.Background(), "anything", 10)
	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(12345), parseCount("12345"))
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("not a number"))
}

func TestSyntheticSource_FetchCandidates(t *testing.T) {
	source := NewSyntheticSource()

	items, err := source.FetchCandidates(context.Background(), []string{"ai tools", "crypto"}, 24*time.Hour, 5)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, item := range items {
		assert.Equal(t, "synthetic", item.Source)
		assert.GreaterOrEqual(t, item.ViewCount, int64(50000))
		assert.LessOrEqual(t, item.ViewCount, int64(2000000))
		assert.Greater(t, item.LikeCount, int64(0))
		assert.False(t, item.PublishedAt.After(time.Now().UTC()))
		assert.NotEmpty(t, item.Title)
	}
}

func TestSyntheticSource_FetchEvidence(t *testing.T) {
	source := NewSyntheticSource()

	posts, err := source.FetchEvidence(context.Background(), "streetwear", 20)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.LessOrEqual(t, len(posts), 20)

	for _, post := range posts {
		assert.Contains(t, culturalSubreddits, post.Source)
		assert.NotEmpty(t, post.Comments)
		assert.GreaterOrEqual(t, post.UpvoteRatio, 0.6)
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ai_tools", sanitize("ai tools"))
	assert.Equal(t, "crypto2024", sanitize("crypto-2024!"))
}
