// internal/adapter/social/reddit.go

package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ecodash/internal/domain/post"
)

const (
	defaultRedditAuthURL = "https://www.reddit.com/api/v1/access_token"
	defaultRedditAPIURL  = "https://oauth.reddit.com"
)

// RedditConfig contains configuration for the Reddit client
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddits   []string
	AuthURL      string
	APIURL       string
	Timeout      time.Duration
}

// RedditClient fetches hot posts from a fixed list of subreddits using
// application-only OAuth
type RedditClient struct {
	httpClient *http.Client
	config     RedditConfig

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// RedditPost represents a post from Reddit
type RedditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Created     float64 `json:"created_utc"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Flair       string  `json:"link_flair_text"`
}

// RedditResponse represents the structure of the Reddit listing response
type RedditResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string     `json:"kind"`
			Data RedditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewRedditClient creates a new Reddit API client
func NewRedditClient(config RedditConfig) *RedditClient {
	if config.AuthURL == "" {
		config.AuthURL = defaultRedditAuthURL
	}
	if config.APIURL == "" {
		config.APIURL = defaultRedditAPIURL
	}
	config.APIURL = strings.TrimRight(config.APIURL, "/")
	if config.UserAgent == "" {
		config.UserAgent = "ecodash/1.0"
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &RedditClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// Name returns the source name
func (c *RedditClient) Name() string {
	return post.PlatformReddit
}

// Available reports whether credentials and at least one subreddit are configured
func (c *RedditClient) Available() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != "" && len(c.config.Subreddits) > 0
}

// Fetch returns up to limit posts, limit/len(subreddits) per subreddit,
// grouped by subreddit in configured order. A failing subreddit is skipped;
// if every subreddit fails the source is reported unavailable.
func (c *RedditClient) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: reddit credentials not configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.RawRecord{}, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		if !errors.Is(err, post.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", post.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	subreddits := c.config.Subreddits
	perSubreddit := max(1, limit/len(subreddits))

	slots := make([][]post.RawRecord, len(subreddits))
	errs := make([]error, len(subreddits))

	var g errgroup.Group
	g.SetLimit(4)
	for i, name := range subreddits {
		g.Go(func() error {
			slots[i], errs[i] = c.fetchSubreddit(ctx, token, name, perSubreddit)
			return nil
		})
	}
	g.Wait() // per-subreddit errors are kept in errs

	records := make([]post.RawRecord, 0, limit)
	failed := 0
	for i := range subreddits {
		if errs[i] != nil {
			failed++
			continue
		}
		for _, rec := range slots[i] {
			if len(records) >= limit {
				break
			}
			records = append(records, rec)
		}
	}

	if failed == len(subreddits) {
		return nil, fmt.Errorf("%w: all subreddits failed: %v", post.ErrSourceUnavailable, errors.Join(errs...))
	}

	return records, nil
}

// accessToken returns a cached application token, requesting a new one when expired
func (c *RedditClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unreachable("Reddit auth", err)
	}
	defer resp.Body.Close()

	var tok redditToken
	if err := decodeJSON("Reddit auth", resp, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: Reddit auth returned no token", post.ErrSourceUnavailable)
	}

	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if ttl > time.Minute {
		ttl -= time.Minute
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)

	return c.token, nil
}

// fetchSubreddit fetches the hot listing of one subreddit
func (c *RedditClient) fetchSubreddit(ctx context.Context, token, subreddit string, limit int) ([]post.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot?limit=%d&raw_json=1", c.config.APIURL, url.PathEscape(subreddit), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable("Reddit API", err)
	}
	defer resp.Body.Close()

	var listing RedditResponse
	if err := decodeJSON("Reddit API", resp, &listing); err != nil {
		return nil, err
	}

	records := make([]post.RawRecord, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if len(records) >= limit {
			break
		}
		records = append(records, redditRecord(child.Data, subreddit))
	}
	return records, nil
}

func redditRecord(p RedditPost, subreddit string) post.RawRecord {
	var created time.Time
	if p.Created > 0 {
		created = time.Unix(int64(p.Created), 0).UTC()
	}

	return post.RawRecord{
		ID:          p.ID,
		Title:       p.Title,
		Text:        p.SelfText,
		Author:      p.Author,
		SourceGroup: "r/" + subreddit,
		CreatedAt:   created,
		Votes:       p.Score,
		Comments:    p.NumComments,
		URL:         p.URL,
		Flair:       p.Flair,
		Platform:    post.PlatformReddit,
	}
}
