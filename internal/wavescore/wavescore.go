// Package wavescore implements the WaveScore virality formula: a weighted
// blend of view growth, engagement, absolute volume and sentiment.
package wavescore

import "math"

const (
	growthWeight     = 0.30
	engagementWeight = 0.25
	volumeWeight     = 0.25
	sentimentWeight  = 0.20

	growthCap       = 1.0        // 100% growth earns the full weight; more earns nothing extra
	engagementScale = 1000.0     // (likes+comments)/views is tiny; rescale to [0,1]
	volumeCeiling   = 10000000.0 // views at which volume saturates
)

// Score combines raw engagement metrics and a sentiment value into a single
// virality score, rounded to 3 decimals. Sentiment must already be in [0,1];
// negative counts are coerced to zero.
//
// The growth factor is only capped from above: a collapsing view count
// produces a negative contribution that is carried through to the weighted
// sum, and the final score is not re-clamped. Alert thresholds only ever
// compare with >=, so a negative score simply never fires.
func Score(viewCount, previousViewCount, likes, comments int64, sentimentScore float64) float64 {
	viewCount = nonNegative(viewCount)
	previousViewCount = nonNegative(previousViewCount)
	likes = nonNegative(likes)
	comments = nonNegative(comments)

	growthFactor := 0.0
	if previousViewCount > 0 {
		growthRate := float64(viewCount-previousViewCount) / float64(previousViewCount)
		growthFactor = math.Min(growthRate, growthCap)
	}

	engagementFactor := 0.0
	if viewCount > 0 {
		engagementRate := float64(likes+comments) / float64(viewCount)
		engagementFactor = math.Min(engagementRate*engagementScale, 1.0)
	}

	volumeFactor := math.Min(float64(viewCount)/volumeCeiling, 1.0)

	score := growthFactor*growthWeight +
		engagementFactor*engagementWeight +
		volumeFactor*volumeWeight +
		sentimentScore*sentimentWeight

	return math.Round(score*1000) / 1000
}

// EstimatePreviousViews approximates a baseline view count for items where
// no historical snapshot exists: 80% of current views, but never more than
// 50k below them.
func EstimatePreviousViews(viewCount int64) int64 {
	if viewCount <= 0 {
		return 0
	}
	estimate := int64(float64(viewCount) * 0.8)
	if floor := viewCount - 50000; floor > estimate {
		return floor
	}
	return estimate
}

// GrowthRate estimates how fast an item is accumulating views relative to a
// 1000 views/hour baseline, capped at 10x. Zero elapsed time yields zero.
func GrowthRate(viewCount int64, hoursSincePublish float64) float64 {
	if hoursSincePublish <= 0 || viewCount <= 0 {
		return 0
	}
	viewsPerHour := float64(viewCount) / hoursSincePublish
	return math.Min(viewsPerHour/1000.0, 10)
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
