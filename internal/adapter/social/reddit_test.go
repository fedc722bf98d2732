package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecodash/internal/domain/post"
)

func listingJSON(subreddit string, n int) map[string]interface{} {
	children := make([]map[string]interface{}, n)
	for i := range children {
		children[i] = map[string]interface{}{
			"kind": "t3",
			"data": map[string]interface{}{
				"id":              subreddit + "_" + string(rune('a'+i)),
				"title":           "Solar farm opens in " + subreddit,
				"selftext":        "Great news #solar",
				"author":          "author" + subreddit,
				"score":           100 + i,
				"num_comments":    10,
				"subreddit":       subreddit,
				"created_utc":     1711965600.0,
				"url":             "https://example.com/" + subreddit,
				"link_flair_text": "News",
			},
		}
	}
	return map[string]interface{}{"kind": "Listing", "data": map[string]interface{}{"children": children}}
}

func newRedditServer(t *testing.T, failing map[string]bool) (*httptest.Server, *int32) {
	t.Helper()
	var tokenCalls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/v1/access_token":
			atomic.AddInt32(&tokenCalls, 1)
			user, pass, ok := r.BasicAuth()
			if !ok || user != "id" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok", "expires_in": 3600})
		case strings.HasPrefix(r.URL.Path, "/r/"):
			if r.Header.Get("Authorization") != "bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/r/"), "/hot")
			if failing[name] {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(listingJSON(name, 5))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func newTestRedditClient(url, secret string, subreddits ...string) *RedditClient {
	return NewRedditClient(RedditConfig{
		ClientID:     "id",
		ClientSecret: secret,
		Subreddits:   subreddits,
		AuthURL:      url + "/api/v1/access_token",
		APIURL:       url,
	})
}

func TestRedditClient_Fetch(t *testing.T) {
	server, tokenCalls := newRedditServer(t, nil)
	client := newTestRedditClient(server.URL, "secret", "environment", "climate")

	records, err := client.Fetch(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, "r/environment", records[0].SourceGroup)
	assert.Equal(t, "r/environment", records[2].SourceGroup)
	assert.Equal(t, "r/climate", records[3].SourceGroup)
	assert.Equal(t, post.PlatformReddit, records[0].Platform)
	assert.Equal(t, 100, records[0].Votes)
	assert.Equal(t, 10, records[0].Comments)
	assert.Equal(t, "News", records[0].Flair)
	assert.Equal(t, int64(1711965600), records[0].CreatedAt.Unix())

	_, err = client.Fetch(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls), "token is cached")
}

func TestRedditClient_SkipsFailingSubreddit(t *testing.T) {
	server, _ := newRedditServer(t, map[string]bool{"climate": true})
	client := newTestRedditClient(server.URL, "secret", "environment", "climate")

	records, err := client.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	for _, rec := range records {
		assert.Equal(t, "r/environment", rec.SourceGroup)
	}
}

func TestRedditClient_AllSubredditsFail(t *testing.T) {
	server, _ := newRedditServer(t, map[string]bool{"environment": true})
	client := newTestRedditClient(server.URL, "secret", "environment")

	_, err := client.Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, post.ErrSourceUnavailable)
}

func TestRedditClient_BadCredentials(t *testing.T) {
	server, _ := newRedditServer(t, nil)
	client := newTestRedditClient(server.URL, "wrong", "environment")

	_, err := client.Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, post.ErrSourceUnavailable)
}

func TestRedditClient_Unconfigured(t *testing.T) {
	client := NewRedditClient(RedditConfig{})
	assert.False(t, client.Available())
	assert.Equal(t, "reddit", client.Name())

	_, err := client.Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, post.ErrSourceUnavailable)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status      int
		unavailable bool
		ok          bool
	}{
		{http.StatusOK, false, true},
		{http.StatusUnauthorized, true, false},
		{http.StatusForbidden, true, false},
		{http.StatusTooManyRequests, true, false},
		{http.StatusBadGateway, false, false},
	}

	for _, tt := range tests {
		resp := &http.Response{StatusCode: tt.status, Body: http.NoBody}
		err := checkStatus("test", resp)
		if tt.ok {
			assert.NoError(t, err)
			continue
		}
		require.Error(t, err)
		assert.Equal(t, tt.unavailable, errors.Is(err, post.ErrSourceUnavailable), "status %d", tt.status)
	}
}
