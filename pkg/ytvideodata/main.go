package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Config struct {
	HTTPClient *http.Client
	// OEmbedURL defaults to https://www.youtube.com/oembed.
	OEmbedURL string
	// PageURL defaults to https://youtu.be.
	PageURL string
}

type Client struct {
	httpClient *http.Client
	oembedURL  string
	pageURL    string
}

func New(cfg *Config) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		oembedURL:  "https://www.youtube.com/oembed",
		pageURL:    "https://youtu.be",
	}
	if cfg == nil {
		return c
	}

	if cfg.HTTPClient != nil {
		c.httpClient = cfg.HTTPClient
	}
	if cfg.OEmbedURL != "" {
		c.oembedURL = cfg.OEmbedURL
	}
	if cfg.PageURL != "" {
		c.pageURL = cfg.PageURL
	}

	return c
}

// Get looks a video up through oEmbed and falls back to scraping the watch page
// when the video does not allow embedding.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}

	return videoData, nil
}
