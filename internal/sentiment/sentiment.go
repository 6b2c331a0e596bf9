package sentiment

import (
	"math"

	"github.com/jonreiter/govader"
	"github.com/sirupsen/logrus"
)

// Compound-score thresholds for the three-way VADER classification.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Scorer turns a batch of free-text comments into a single normalized
// sentiment value in [0,1]. 0.5 is neutral, 1.0 is uniformly positive,
// 0.0 is uniformly negative.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewScorer creates a scorer backed by the VADER lexicon.
func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score classifies each text as positive, negative or neutral and maps the
// balance to [0,1]: ((pos - neg) / total + 1) / 2, rounded to 3 decimals.
// An empty batch returns exactly 0.5.
func (s *Scorer) Score(texts []string) float64 {
	if len(texts) == 0 {
		return 0.5
	}

	var pos, neg int
	for _, text := range texts {
		switch s.classify(text) {
		case 1:
			pos++
		case -1:
			neg++
		}
	}

	score := (float64(pos-neg)/float64(len(texts)) + 1) / 2
	return Round3(clamp01(score))
}

// classify returns 1 for positive, -1 for negative, 0 for neutral. A text
// that makes the lexicon analyzer panic counts as neutral so one malformed
// comment cannot sink the batch.
func (s *Scorer) classify(text string) (label int) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("Sentiment classifier failed on text, treating as neutral: %v", r)
			label = 0
		}
	}()

	compound := s.analyzer.PolarityScores(text).Compound
	switch {
	case compound >= positiveThreshold:
		return 1
	case compound <= negativeThreshold:
		return -1
	default:
		return 0
	}
}

// Round3 rounds to three decimal places, the precision every persisted
// score in the pipeline uses.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
