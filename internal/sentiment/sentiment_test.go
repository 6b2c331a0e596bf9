package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer_EmptyBatchIsNeutral(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 0.5, scorer.Score(nil))
	assert.Equal(t, 0.5, scorer.Score([]string{}))
}

func TestScorer_PositiveBatch(t *testing.T) {
	scorer := NewScorer()

	score := scorer.Score([]string{
		"This is amazing, I absolutely love it!",
		"Fantastic work, great job everyone",
		"Wonderful and inspiring content",
	})

	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScorer_NegativeBatch(t *testing.T) {
	scorer := NewScorer()

	score := scorer.Score([]string{
		"This is terrible, I hate it",
		"Awful content, worst video ever",
		"Disgusting and horrible",
	})

	assert.Less(t, score, 0.5)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestScorer_MixedBatchBalancesOut(t *testing.T) {
	scorer := NewScorer()

	score := scorer.Score([]string{
		"This is amazing, I absolutely love it!",
		"This is terrible, I hate it",
	})

	// One positive and one negative cancel to neutral.
	assert.Equal(t, 0.5, score)
}

func TestScorer_NeutralText(t *testing.T) {
	scorer := NewScorer()

	score := scorer.Score([]string{
		"The video is 10 minutes long",
	})

	assert.Equal(t, 0.5, score)
}

func TestScorer_BoundsHold(t *testing.T) {
	scorer := NewScorer()

	inputs := [][]string{
		{""},
		{strings.Repeat("great ", 200)},
		{"!!!", "???", "...."},
		{"love love love", "hate hate hate", "meh"},
	}

	for _, texts := range inputs {
		score := scorer.Score(texts)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.123, Round3(0.12345))
	assert.Equal(t, 0.124, Round3(0.1236))
	assert.Equal(t, -0.073, Round3(-0.0726))
	assert.Equal(t, 1.0, Round3(0.9999))
}
