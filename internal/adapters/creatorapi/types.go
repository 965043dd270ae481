package creatorapi

import "time"

// Wire types for the creator-metrics API

type channelResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Stats struct {
		Subscribers int64 `json:"subscribers"`
		TotalViews  int64 `json:"total_views"`
		VideoCount  int64 `json:"video_count"`
	} `json:"stats"`
}

type videoResponse struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Title        string    `json:"title"`
	PublishedAt  time.Time `json:"published_at"`
	Views        int64     `json:"views"`
}

type videoListResponse struct {
	Items []videoResponse `json:"items"`
}

type likesResponse struct {
	TotalLikes int64 `json:"total_likes"`
}
