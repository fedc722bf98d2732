// internal/adapter/social/newsapi.go

package social

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ecodash/internal/domain/post"
	"ecodash/internal/service/listening"
)

const (
	defaultNewsAPIURL   = "https://newsapi.org/v2"
	defaultNewsAPIQuery = "environment OR climate OR sustainability"
)

// NewsAPIConfig contains configuration for the NewsAPI client
type NewsAPIConfig struct {
	APIKey  string
	Query   string
	APIURL  string
	Timeout time.Duration
}

// NewsAPIClient fetches environmental headlines from NewsAPI
type NewsAPIClient struct {
	httpClient *http.Client
	config     NewsAPIConfig
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// NewNewsAPIClient creates a new NewsAPI client
func NewNewsAPIClient(config NewsAPIConfig) *NewsAPIClient {
	if config.APIURL == "" {
		config.APIURL = defaultNewsAPIURL
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	if config.Query == "" {
		config.Query = defaultNewsAPIQuery
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &NewsAPIClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// Available reports whether an API key is configured
func (c *NewsAPIClient) Available() bool {
	return c.config.APIKey != ""
}

// FetchNews returns up to limit articles, newest first. Impact decreases
// with rank so the first headline scores highest.
func (c *NewsAPIClient) FetchNews(ctx context.Context, limit int) ([]post.NewsArticle, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: newsapi key not configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.NewsArticle{}, nil
	}

	params := url.Values{}
	params.Set("q", c.config.Query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprintf("%d", min(limit, 100)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.APIURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable("NewsAPI", err)
	}
	defer resp.Body.Close()

	var result newsAPIResponse
	if err := decodeJSON("NewsAPI", resp, &result); err != nil {
		return nil, err
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI returned status %q", result.Status)
	}

	articles := make([]post.NewsArticle, 0, len(result.Articles))
	for i, a := range result.Articles {
		if len(articles) >= limit {
			break
		}
		if a.Title == "" {
			continue
		}
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		impact := max(1, 100-i*5)
		articles = append(articles, listening.NewsFromTitle(
			fmt.Sprintf("news_%d", i), a.Title, a.Source.Name, a.URL, published, impact))
	}
	return articles, nil
}
