// internal/adapter/social/bluesky.go

package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ecodash/internal/domain/post"
)

const (
	defaultBlueskyHost  = "https://bsky.social"
	defaultBlueskyQuery = "environment"
)

// BlueskyConfig contains configuration for the Bluesky client
type BlueskyConfig struct {
	Handle      string
	AppPassword string
	Query       string
	Host        string
	Timeout     time.Duration
}

// BlueskyClient searches posts through the AT Protocol XRPC API
type BlueskyClient struct {
	httpClient *http.Client
	config     BlueskyConfig
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
}

type blueskySearchResponse struct {
	Posts []blueskyPost `json:"posts"`
}

type blueskyPost struct {
	URI    string `json:"uri"`
	Author struct {
		Handle string `json:"handle"`
	} `json:"author"`
	Record struct {
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	} `json:"record"`
	LikeCount   int    `json:"likeCount"`
	RepostCount int    `json:"repostCount"`
	ReplyCount  int    `json:"replyCount"`
	QuoteCount  int    `json:"quoteCount"`
	IndexedAt   string `json:"indexedAt"`
}

// NewBlueskyClient creates a new Bluesky client
func NewBlueskyClient(config BlueskyConfig) *BlueskyClient {
	if config.Host == "" {
		config.Host = defaultBlueskyHost
	}
	config.Host = strings.TrimRight(config.Host, "/")
	if config.Query == "" {
		config.Query = defaultBlueskyQuery
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &BlueskyClient{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// Name returns the source name
func (c *BlueskyClient) Name() string {
	return post.PlatformBluesky
}

// Available reports whether a handle and app password are configured
func (c *BlueskyClient) Available() bool {
	return c.config.Handle != "" && c.config.AppPassword != ""
}

// Fetch returns up to limit posts matching the configured query
func (c *BlueskyClient) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: bluesky credentials not configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.RawRecord{}, nil
	}

	token, err := c.createSession(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", c.config.Query)
	params.Set("limit", fmt.Sprintf("%d", min(limit, 100)))
	endpoint := c.config.Host + "/xrpc/app.bsky.feed.searchPosts?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unreachable("Bluesky", err)
	}
	defer resp.Body.Close()

	var result blueskySearchResponse
	if err := decodeJSON("Bluesky", resp, &result); err != nil {
		return nil, err
	}

	records := make([]post.RawRecord, 0, len(result.Posts))
	for _, p := range result.Posts {
		if len(records) >= limit {
			break
		}
		records = append(records, blueskyRecord(p))
	}
	return records, nil
}

// createSession exchanges the app password for an access token
func (c *BlueskyClient) createSession(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": c.config.Handle,
		"password":   c.config.AppPassword,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.Host+"/xrpc/com.atproto.server.createSession", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unreachable("Bluesky auth", err)
	}
	defer resp.Body.Close()

	// a bad handle or password is a 400 on this endpoint
	if resp.StatusCode == http.StatusBadRequest {
		return "", fmt.Errorf("%w: Bluesky rejected credentials", post.ErrSourceUnavailable)
	}

	var session blueskySession
	if err := decodeJSON("Bluesky auth", resp, &session); err != nil {
		return "", err
	}
	if session.AccessJwt == "" {
		return "", fmt.Errorf("%w: Bluesky returned no session token", post.ErrSourceUnavailable)
	}
	return session.AccessJwt, nil
}

func blueskyRecord(p blueskyPost) post.RawRecord {
	rec := post.RawRecord{
		ID:          p.URI,
		Text:        p.Record.Text,
		Author:      p.Author.Handle,
		SourceGroup: "@" + p.Author.Handle,
		Votes:       p.LikeCount,
		Comments:    p.ReplyCount,
		Shares:      p.RepostCount + p.QuoteCount,
		URL:         blueskyWebURL(p.URI, p.Author.Handle),
		Platform:    post.PlatformBluesky,
	}
	for _, ts := range []string{p.Record.CreatedAt, p.IndexedAt} {
		if created, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = created
			break
		}
	}
	return rec
}

// blueskyWebURL turns at://did/app.bsky.feed.post/rkey into a bsky.app link
func blueskyWebURL(uri, handle string) string {
	i := strings.LastIndex(uri, "/")
	if i < 0 || handle == "" {
		return ""
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, uri[i+1:])
}
