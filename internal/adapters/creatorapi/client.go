// Package creatorapi implements channel.MetricsClient against the external
// creator-metrics HTTP API. Requests rotate through a pool of API keys on
// quota errors and are paced by a shared rate limiter; once every key is
// exhausted the client reports empty results rather than an error, per the
// MetricsClient contract.
package creatorapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"channelwatch/internal/domain/channel"
	"channelwatch/internal/metrics"
	"channelwatch/pkg/errors"
	"channelwatch/pkg/logger"
)

// Compile-time check
var _ channel.MetricsClient = (*Client)(nil)

// Config contains creator API client configuration
type Config struct {
	BaseURL       string
	APIKeys       []string
	Timeout       time.Duration
	RatePerSecond int
	RateBurst     int
}

// Client is a rate-limited, key-rotating API client
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger

	mu     sync.Mutex
	keys   []string
	keyIdx int
}

// NewClient creates a new creator API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "creator api base url is required")
	}
	if len(cfg.APIKeys) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "at least one creator api key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 10
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		log:     logger.Get().With("component", "creatorapi"),
		keys:    cfg.APIKeys,
	}, nil
}

// FetchChannel returns a channel's details, or nil when the channel does
// not exist or every API key is exhausted
func (c *Client) FetchChannel(ctx context.Context, id string) (*channel.ChannelDetails, error) {
	var body channelResponse
	found, err := c.get(ctx, fmt.Sprintf("/channels/%s", id), nil, &body)
	if err != nil || !found {
		return nil, err
	}

	return &channel.ChannelDetails{
		ID:          body.ID,
		Title:       body.Title,
		Subscribers: body.Stats.Subscribers,
		TotalViews:  body.Stats.TotalViews,
		VideoCount:  body.Stats.VideoCount,
	}, nil
}

// FetchRecentVideos returns a channel's most recent uploads, newest first
func (c *Client) FetchRecentVideos(ctx context.Context, channelID string, limit int) ([]channel.Video, error) {
	var body videoListResponse
	found, err := c.get(ctx, fmt.Sprintf("/channels/%s/videos", channelID), map[string]string{
		"limit": fmt.Sprintf("%d", limit),
	}, &body)
	if err != nil || !found {
		return nil, err
	}
	return mapVideos(body.Items), nil
}

// FetchTrendingVideos returns the current trending feed for a region
func (c *Client) FetchTrendingVideos(ctx context.Context, region string, limit int) ([]channel.Video, error) {
	var body videoListResponse
	found, err := c.get(ctx, "/videos/trending", map[string]string{
		"region": region,
		"limit":  fmt.Sprintf("%d", limit),
	}, &body)
	if err != nil || !found {
		return nil, err
	}
	return mapVideos(body.Items), nil
}

// FetchAggregateLikes returns the total like count across a channel's
// uploads, or zero when unavailable
func (c *Client) FetchAggregateLikes(ctx context.Context, channelID string) (int64, error) {
	var body likesResponse
	found, err := c.get(ctx, fmt.Sprintf("/channels/%s/likes", channelID), nil, &body)
	if err != nil || !found {
		return 0, err
	}
	return body.TotalLikes, nil
}

// get performs one rate-limited GET, rotating API keys on quota errors.
// Returns found=false without an error when the resource is missing or all
// keys are exhausted.
func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	attempts := c.keyCount()
	for i := 0; i < attempts; i++ {
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetQueryParam("key", c.currentKey()).
			SetResult(out).
			Get(path)
		if err != nil {
			metrics.RecordSourceAPICall(path, "error")
			return false, errors.Wrapf(err, "GET %s", path)
		}

		switch {
		case resp.IsSuccess():
			metrics.RecordSourceAPICall(path, "success")
			return true, nil

		case resp.StatusCode() == http.StatusNotFound:
			metrics.RecordSourceAPICall(path, "success")
			return false, nil

		case quotaError(resp.StatusCode()):
			metrics.RecordSourceAPICall(path, "rate_limited")
			metrics.SourceKeyRotations.Inc()
			c.rotateKey()
			c.log.Warnw("API key exhausted, rotating",
				"path", path,
				"status", resp.StatusCode(),
				"attempt", i+1,
			)

		default:
			metrics.RecordSourceAPICall(path, "error")
			return false, errors.Wrapf(errors.ErrFetchFailed, "GET %s: status %d", path, resp.StatusCode())
		}
	}

	// Every key hit its quota; callers treat this as "no data right now"
	c.log.Errorw("All API keys exhausted", "path", path, "keys", attempts)
	return false, nil
}

func quotaError(status int) bool {
	return status == http.StatusForbidden || status == http.StatusTooManyRequests
}

func (c *Client) currentKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[c.keyIdx]
}

func (c *Client) rotateKey() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyIdx = (c.keyIdx + 1) % len(c.keys)
}

func (c *Client) keyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func mapVideos(items []videoResponse) []channel.Video {
	videos := make([]channel.Video, 0, len(items))
	for _, v := range items {
		videos = append(videos, channel.Video{
			ID:           v.ID,
			ChannelID:    v.ChannelID,
			ChannelTitle: v.ChannelTitle,
			Title:        v.Title,
			PublishedAt:  v.PublishedAt,
			Views:        v.Views,
		})
	}
	return videos
}
