package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/sirupsen/logrus"
)

// Subreddits sampled when building a topic's evidence corpus. The mix of
// broad and niche communities is what lets the compass tell mainstream
// adoption apart from underground circulation.
var culturalSubreddits = []string{
	"all",
	"news",
	"television",
	"movies",
	"Music",
	"streetwear",
	"WeAreTheMusicMakers",
	"experimentalmusic",
	"cyberpunk",
}

// RedditSource gathers evidence posts through the Reddit OAuth API using
// application-only (client credentials) auth.
type RedditSource struct {
	clientID     string
	clientSecret string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	Score       int64   `json:"score"`
	NumComments int64   `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

type redditCommentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Body string `json:"body"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewRedditSource creates a new Reddit evidence source
func NewRedditSource(clientID, clientSecret string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

func (r *RedditSource) Name() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// FetchEvidence searches the cultural subreddit set for the topic and samples
// comments from the highest-scoring posts. Individual subreddit failures are
// logged and skipped; the call only fails when auth is impossible.
func (r *RedditSource) FetchEvidence(ctx context.Context, topic string, maxItems int) ([]models.EvidencePost, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - missing credentials")
		return nil, nil
	}

	if err := r.ensureToken(ctx); err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	perSubreddit := maxItems / len(culturalSubreddits)
	if perSubreddit < 3 {
		perSubreddit = 3
	}

	var raw []redditPost

	for _, subreddit := range culturalSubreddits {
		found, err := r.searchSubreddit(ctx, subreddit, topic, perSubreddit)
		if err != nil {
			logrus.Errorf("Failed to search subreddit %s: %v", subreddit, err)
			continue
		}
		raw = append(raw, found...)
		if len(raw) >= maxItems {
			raw = raw[:maxItems]
			break
		}
	}

	posts := make([]models.EvidencePost, 0, len(raw))

	for i, post := range raw {
		evidence := models.EvidencePost{
			Title:        post.Title,
			Body:         post.Selftext,
			Source:       post.Subreddit,
			Score:        post.Score,
			CommentCount: post.NumComments,
			UpvoteRatio:  post.UpvoteRatio,
			CreatedAt:    time.Unix(int64(post.Created), 0).UTC(),
		}

		// Comment sampling is limited to the first posts to keep API
		// usage bounded per topic.
		if i < 10 && post.NumComments > 0 {
			comments, err := r.sampleComments(ctx, post.Subreddit, post.ID, 5)
			if err != nil {
				logrus.Debugf("Failed to sample comments in r/%s: %v", post.Subreddit, err)
			} else {
				evidence.Comments = comments
			}
		}

		posts = append(posts, evidence)
	}

	return posts, nil
}

func (r *RedditSource) ensureToken(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", "WaveSight/1.0").
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post("https://www.reddit.com/api/v1/access_token")

	if err != nil {
		return err
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}
	if authResp.AccessToken == "" {
		return fmt.Errorf("reddit returned an empty access token")
	}

	r.accessToken = authResp.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn-60) * time.Second)
	return nil
}

func (r *RedditSource) token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accessToken
}

func (r *RedditSource) searchSubreddit(ctx context.Context, subreddit, topic string, limit int) ([]redditPost, error) {
	searchURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/search.json?q=%s&restrict_sr=1&sort=relevance&t=month&limit=%d",
		subreddit, url.QueryEscape(topic), limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.token()).
		SetHeader("User-Agent", "WaveSight/1.0").
		Get(searchURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (r *RedditSource) sampleComments(ctx context.Context, subreddit, postID string, limit int) ([]string, error) {
	if postID == "" {
		return nil, nil
	}
	commentsURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/comments/%s.json?limit=%d&depth=1",
		subreddit, postID, limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.token()).
		SetHeader("User-Agent", "WaveSight/1.0").
		Get(commentsURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit comments API returned status %d", resp.StatusCode())
	}

	// The comments endpoint returns a two-element array: the post listing
	// followed by the comment listing.
	var listings []redditCommentListing
	if err := json.Unmarshal(resp.Body(), &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []string
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" || child.Data.Body == "" {
			continue
		}
		comments = append(comments, child.Data.Body)
		if len(comments) >= limit {
			break
		}
	}
	return comments, nil
}
