package sources

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/sirupsen/logrus"
)

// SyntheticSource generates plausible content and evidence when real API
// credentials are absent or an upstream is down. Everything it emits is
// tagged "synthetic" so downstream consumers and persisted records can never
// be mistaken for real observations.
type SyntheticSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var syntheticChannels = []string{
	"Tech Insider Daily",
	"Viral Trends Now",
	"Future Finance",
	"Underground Sounds",
	"Gaming Pulse",
	"Wellness Weekly",
}

var syntheticTitleFormats = []string{
	"%s is taking over the internet",
	"Why everyone is talking about %s",
	"The truth about %s nobody tells you",
	"%s explained in 10 minutes",
	"How %s changed everything this year",
}

var syntheticComments = []string{
	"This is actually incredible, been following this for months",
	"Not sure I buy the hype but interesting take",
	"Finally someone explains this properly",
	"This trend is everywhere right now",
	"Overrated honestly, the older stuff was better",
	"Absolutely love where this is going",
	"Can't believe how fast this blew up",
}

// NewSyntheticSource creates a generator seeded from the clock.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SyntheticSource) GetName() string { return "synthetic" }
func (s *SyntheticSource) Name() string    { return "synthetic" }

func (s *SyntheticSource) IsEnabled() bool { return true }

// FetchCandidates fabricates content items for each query with view counts
// in the 50k to 2M range and engagement proportional to views.
func (s *SyntheticSource) FetchCandidates(_ context.Context, queries []string, since time.Duration, maxPerQuery int) ([]models.ContentItem, error) {
	if maxPerQuery <= 0 {
		maxPerQuery = 10
	}

	var items []models.ContentItem

	for _, query := range queries {
		n := s.intn(maxPerQuery) + 1
		for i := 0; i < n; i++ {
			views := int64(50000 + s.intn(1950000))
			likes := int64(float64(views) * (0.02 + s.float()*0.06))
			comments := int64(float64(views) * (0.001 + s.float()*0.009))
			age := time.Duration(s.float() * float64(since))

			items = append(items, models.ContentItem{
				ID:           fmt.Sprintf("synthetic_%s_%d_%d", sanitize(query), time.Now().Unix(), i),
				Source:       "synthetic",
				Platform:     s.pick(syntheticChannels),
				Title:        fmt.Sprintf(s.pick(syntheticTitleFormats), query),
				Description:  fmt.Sprintf("Generated placeholder coverage of %s.", query),
				Author:       s.pick(syntheticChannels),
				URL:          "",
				PublishedAt:  time.Now().UTC().Add(-age),
				ViewCount:    views,
				LikeCount:    likes,
				CommentCount: comments,
				Comments:     s.sampleComments(3),
			})
		}
	}

	logrus.Debugf("Synthetic source generated %d content items", len(items))
	return items, nil
}

// FetchEvidence fabricates an evidence corpus spread across the cultural
// subreddit set so the compass still has a source distribution to work with.
func (s *SyntheticSource) FetchEvidence(_ context.Context, topic string, maxItems int) ([]models.EvidencePost, error) {
	if maxItems <= 0 {
		maxItems = 20
	}
	n := maxItems/2 + s.intn(maxItems/2+1)

	posts := make([]models.EvidencePost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.EvidencePost{
			Title:        fmt.Sprintf(s.pick(syntheticTitleFormats), topic),
			Body:         fmt.Sprintf("Discussion thread about %s.", topic),
			Source:       s.pick(culturalSubreddits),
			Score:        int64(s.intn(5000)),
			CommentCount: int64(s.intn(400)),
			UpvoteRatio:  0.6 + s.float()*0.39,
			CreatedAt:    time.Now().UTC().Add(-time.Duration(s.intn(14*24)) * time.Hour),
			Comments:     s.sampleComments(3),
		})
	}

	logrus.Debugf("Synthetic source generated %d evidence posts for %q", len(posts), topic)
	return posts, nil
}

func (s *SyntheticSource) sampleComments(max int) []string {
	n := s.intn(max) + 1
	comments := make([]string, 0, n)
	for i := 0; i < n; i++ {
		comments = append(comments, s.pick(syntheticComments))
	}
	return comments
}

func (s *SyntheticSource) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

func (s *SyntheticSource) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *SyntheticSource) pick(options []string) string {
	return options[s.intn(len(options))]
}

func sanitize(q string) string {
	out := make([]rune, 0, len(q))
	for _, r := range q {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	return string(out)
}
