package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jerbear472/WaveSight/internal/models"
	"github.com/sirupsen/logrus"
)

// YouTubeSource fetches candidate videos through the YouTube Data API v3.
// Search results carry no statistics, so every batch costs two calls: a
// search for IDs followed by a videos lookup for view/like/comment counts.
type YouTubeSource struct {
	apiKey string
	client *resty.Client
}

type youTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youTubeVideosResponse struct {
	Items []youTubeVideo `json:"items"`
}

type youTubeVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

type youTubeCommentsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// NewYouTubeSource creates a new YouTube source
func NewYouTubeSource(apiKey string) *YouTubeSource {
	return &YouTubeSource{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "WaveSight/1.0"),
	}
}

func (y *YouTubeSource) GetName() string {
	return "youtube"
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.apiKey != ""
}

func (y *YouTubeSource) FetchCandidates(ctx context.Context, queries []string, since time.Duration, maxPerQuery int) ([]models.ContentItem, error) {
	if !y.IsEnabled() {
		logrus.Debug("YouTube source disabled - missing API key")
		return nil, nil
	}

	var allItems []models.ContentItem

	for _, query := range queries {
		items, err := y.searchQuery(ctx, query, since, maxPerQuery)
		if err != nil {
			logrus.Errorf("Failed to search YouTube for query '%s': %v", query, err)
			continue
		}
		allItems = append(allItems, items...)
	}

	return y.deduplicate(allItems), nil
}

func (y *YouTubeSource) searchQuery(ctx context.Context, query string, since time.Duration, maxResults int) ([]models.ContentItem, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	publishedAfter := time.Now().Add(-since).Format(time.RFC3339)
	searchURL := fmt.Sprintf("https://www.googleapis.com/youtube/v3/search?part=id&q=%s&type=video&order=viewCount&publishedAfter=%s&maxResults=%d&key=%s",
		url.QueryEscape(query), publishedAfter, maxResults, y.apiKey)

	resp, err := y.client.R().
		SetContext(ctx).
		Get(searchURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("youtube search API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp youTubeSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse YouTube search response: %w", err)
	}

	var ids []string
	for _, item := range searchResp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return y.lookupVideos(ctx, ids)
}

func (y *YouTubeSource) lookupVideos(ctx context.Context, ids []string) ([]models.ContentItem, error) {
	videosURL := fmt.Sprintf("https://www.googleapis.com/youtube/v3/videos?part=snippet,statistics&id=%s&key=%s",
		strings.Join(ids, ","), y.apiKey)

	resp, err := y.client.R().
		SetContext(ctx).
		Get(videosURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("youtube videos API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var videosResp youTubeVideosResponse
	if err := json.Unmarshal(resp.Body(), &videosResp); err != nil {
		return nil, fmt.Errorf("failed to parse YouTube videos response: %w", err)
	}

	var items []models.ContentItem

	for _, video := range videosResp.Items {
		publishedAt, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt)
		if err != nil {
			logrus.Errorf("Failed to parse YouTube timestamp: %v", err)
			continue
		}

		item := models.ContentItem{
			ID:           fmt.Sprintf("youtube_%s", video.ID),
			Source:       "youtube",
			Platform:     video.Snippet.ChannelTitle,
			Title:        video.Snippet.Title,
			Description:  video.Snippet.Description,
			Author:       video.Snippet.ChannelTitle,
			URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID),
			PublishedAt:  publishedAt,
			ViewCount:    parseCount(video.Statistics.ViewCount),
			LikeCount:    parseCount(video.Statistics.LikeCount),
			CommentCount: parseCount(video.Statistics.CommentCount),
		}
		item.Comments, err = y.sampleComments(ctx, video.ID, 20)
		if err != nil {
			// Comments are optional input for sentiment; the item is
			// still usable without them.
			logrus.Debugf("No comments for video %s: %v", video.ID, err)
		}

		items = append(items, item)
	}

	return items, nil
}

func (y *YouTubeSource) sampleComments(ctx context.Context, videoID string, limit int) ([]string, error) {
	commentsURL := fmt.Sprintf("https://www.googleapis.com/youtube/v3/commentThreads?part=snippet&videoId=%s&order=relevance&maxResults=%d&key=%s",
		videoID, limit, y.apiKey)

	resp, err := y.client.R().
		SetContext(ctx).
		Get(commentsURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		// Comments might be disabled, skip this video
		if resp.StatusCode() == 403 {
			return nil, nil
		}
		return nil, fmt.Errorf("youtube comments API returned status %d", resp.StatusCode())
	}

	var commentsResp youTubeCommentsResponse
	if err := json.Unmarshal(resp.Body(), &commentsResp); err != nil {
		return nil, fmt.Errorf("failed to parse YouTube comments response: %w", err)
	}

	var comments []string
	for _, item := range commentsResp.Items {
		if text := item.Snippet.TopLevelComment.Snippet.TextDisplay; text != "" {
			comments = append(comments, text)
		}
	}
	return comments, nil
}

func (y *YouTubeSource) deduplicate(items []models.ContentItem) []models.ContentItem {
	seen := make(map[string]bool)
	var unique []models.ContentItem

	for _, item := range items {
		if !seen[item.ID] {
			seen[item.ID] = true
			unique = append(unique, item)
		}
	}

	return unique
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
