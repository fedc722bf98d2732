// internal/adapter/social/twitter.go

package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"ecodash/internal/domain/post"
)

const (
	defaultTwitterHost  = "https://api.twitter.com"
	defaultTwitterQuery = "(environment OR climate OR sustainability) -is:retweet"
)

// TwitterConfig contains configuration for the Twitter client
type TwitterConfig struct {
	BearerToken string
	Query       string
	Host        string
	Timeout     time.Duration
}

// TwitterClient searches recent tweets through the v2 API
type TwitterClient struct {
	client *twitter.Client
	query  string
	token  string
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", a.token))
}

// NewTwitterClient creates a new Twitter API client
func NewTwitterClient(config TwitterConfig) *TwitterClient {
	if config.Host == "" {
		config.Host = defaultTwitterHost
	}
	if config.Query == "" {
		config.Query = defaultTwitterQuery
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &TwitterClient{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: config.BearerToken},
			Client:     &http.Client{Timeout: config.Timeout},
			Host:       config.Host,
		},
		query: config.Query,
		token: config.BearerToken,
	}
}

// Name returns the source name
func (c *TwitterClient) Name() string {
	return post.PlatformTwitter
}

// Available reports whether a bearer token is configured
func (c *TwitterClient) Available() bool {
	return c.token != ""
}

// Fetch returns up to limit recent tweets matching the configured query
func (c *TwitterClient) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	if !c.Available() {
		return nil, fmt.Errorf("%w: twitter bearer token not configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.RawRecord{}, nil
	}

	// the search endpoint accepts 10..100 results per page
	maxResults := min(max(limit, 10), 100)

	opts := twitter.TweetRecentSearchOpts{
		Expansions:  []twitter.Expansion{twitter.ExpansionAuthorID},
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldPublicMetrics, twitter.TweetFieldAuthorID},
		UserFields:  []twitter.UserField{twitter.UserFieldUserName},
		MaxResults:  maxResults,
	}

	resp, err := c.client.TweetRecentSearch(ctx, c.query, opts)
	if err != nil {
		return nil, classifyTwitterError(err)
	}
	if resp == nil || resp.Raw == nil {
		return []post.RawRecord{}, nil
	}

	usernames := make(map[string]string)
	if resp.Raw.Includes != nil {
		for _, u := range resp.Raw.Includes.Users {
			if u != nil {
				usernames[u.ID] = u.UserName
			}
		}
	}

	records := make([]post.RawRecord, 0, len(resp.Raw.Tweets))
	for _, tweet := range resp.Raw.Tweets {
		if tweet == nil {
			continue
		}
		if len(records) >= limit {
			break
		}
		records = append(records, tweetRecord(tweet, usernames[tweet.AuthorID]))
	}

	return records, nil
}

func tweetRecord(tweet *twitter.TweetObj, username string) post.RawRecord {
	rec := post.RawRecord{
		ID:       tweet.ID,
		Text:     tweet.Text,
		Author:   username,
		URL:      fmt.Sprintf("https://twitter.com/i/web/status/%s", tweet.ID),
		Platform: post.PlatformTwitter,
	}
	if username != "" {
		rec.SourceGroup = "@" + username
	}
	if created, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
		rec.CreatedAt = created
	}
	if m := tweet.PublicMetrics; m != nil {
		rec.Votes = m.Likes
		rec.Comments = m.Replies
		rec.Shares = m.Retweets
	}
	return rec
}

// classifyTwitterError maps credential, quota and transport failures to an unavailable source
func classifyTwitterError(err error) error {
	var errResp *twitter.ErrorResponse
	if errors.As(err, &errResp) {
		switch errResp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%w: twitter returned status code %d", post.ErrSourceUnavailable, errResp.StatusCode)
		}
		return fmt.Errorf("twitter search failed: %w", err)
	}
	return fmt.Errorf("%w: twitter search failed: %v", post.ErrSourceUnavailable, err)
}
