package listening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecodash/internal/domain/post"
)

func fixedNormalizer(at time.Time) *Normalizer {
	return &Normalizer{now: func() time.Time { return at }}
}

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		platform                string
		votes, comments, shares int
		want                    int
	}{
		{post.PlatformReddit, 100, 10, 7, 150},
		{post.PlatformTwitter, 100, 10, 7, 144},
		{post.PlatformBluesky, 100, 10, 7, 144},
		{"Reddit", 1, 1, 0, 6},
		{"mastodon", 100, 10, 7, 117},
		{post.PlatformReddit, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			assert.Equal(t, tt.want, EngagementScore(tt.platform, tt.votes, tt.comments, tt.shares))
		})
	}
}

func TestNormalize(t *testing.T) {
	fetchedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	created := fetchedAt.Add(-2 * time.Hour)
	n := fixedNormalizer(fetchedAt)

	posts, err := n.Normalize([]post.RawRecord{
		{
			ID:          "a1",
			Title:       "Amazing progress on solar",
			Text:        "Our town went 100% renewable #CleanEnergy",
			Author:      "u/sunny",
			SourceGroup: "r/renewableenergy",
			CreatedAt:   created,
			Votes:       120,
			Comments:    8,
			Platform:    "Reddit",
		},
		{
			ID:       "b2",
			Text:     "Alarming plastic levels found in rivers",
			Votes:    -3,
			Comments: 2,
			Shares:   4,
			Platform: post.PlatformTwitter,
		},
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, post.SentimentPositive, first.Sentiment)
	assert.Equal(t, post.TopicRenewableEnergy, first.Topic)
	assert.Equal(t, []string{"#CleanEnergy"}, first.Hashtags)
	assert.Equal(t, 160, first.EngagementScore)
	assert.Equal(t, post.PlatformReddit, first.Platform)
	assert.Equal(t, created, first.Timestamp)

	second := posts[1]
	assert.Equal(t, "unknown", second.Author)
	assert.Equal(t, fetchedAt, second.Timestamp)
	assert.Equal(t, 0, second.Upvotes)
	assert.Equal(t, post.SentimentNegative, second.Sentiment)
	assert.Equal(t, post.TopicPlasticPollution, second.Topic)
	assert.Equal(t, 14, second.EngagementScore)
	assert.NotNil(t, second.Hashtags)
}

func TestNormalize_PreservesOrderAndEmptyInput(t *testing.T) {
	n := NewNormalizer()

	posts, err := n.Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, posts)

	records := []post.RawRecord{
		{ID: "3", Title: "c", Platform: post.PlatformReddit},
		{ID: "1", Title: "a", Platform: post.PlatformReddit},
		{ID: "2", Title: "b", Platform: post.PlatformReddit},
	}
	posts, err = n.Normalize(records)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "3", posts[0].ID)
	assert.Equal(t, "1", posts[1].ID)
	assert.Equal(t, "2", posts[2].ID)
}

func TestNormalize_RejectsInvalidRecords(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize([]post.RawRecord{
		{ID: "ok", Title: "fine", Platform: post.PlatformReddit},
		{ID: "empty", Platform: post.PlatformReddit},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")

	_, err = n.Normalize([]post.RawRecord{{ID: "noplatform", Title: "fine"}})
	require.Error(t, err)
}

func TestNewsFromTitle(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	article := NewsFromTitle("n1", "Breakthrough in Ocean Protection Offers New Hope", "Earth Watch", "https://example.com", at, 42)

	assert.Equal(t, post.SentimentPositive, article.Sentiment)
	assert.Equal(t, post.TopicOceanConservation, article.Topic)
	assert.Equal(t, 42, article.ImpactScore)
	assert.Equal(t, at, article.PublishedAt)
}
