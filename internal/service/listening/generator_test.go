package listening

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecodash/internal/domain/post"
)

func TestGenerator_ExactCountAndValidPosts(t *testing.T) {
	g := NewGenerator(42)

	for _, limit := range []int{1, 10, 37} {
		posts, err := g.Generate(limit)
		require.NoError(t, err)
		require.Len(t, posts, limit)

		for _, p := range posts {
			require.NoError(t, p.Validate())
			assert.Equal(t, post.PlatformReddit, p.Platform)
			assert.True(t, p.Topic.Valid())
			assert.GreaterOrEqual(t, p.Upvotes, 10)
			assert.LessOrEqual(t, p.Upvotes, 5000)
			assert.GreaterOrEqual(t, p.Comments, 5)
			assert.LessOrEqual(t, p.Comments, 200)
		}
	}
}

func TestGenerator_NonPositiveLimit(t *testing.T) {
	g := NewGenerator(1)

	posts, err := g.Generate(0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	assert.Empty(t, g.GenerateRaw(-5))
	assert.Empty(t, g.GenerateNews(0))
}

func TestGenerator_SameSeedSameOutput(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	a := NewGenerator(7)
	a.now = func() time.Time { return at }
	b := NewGenerator(7)
	b.now = func() time.Time { return at }

	assert.Equal(t, a.GenerateRaw(15), b.GenerateRaw(15))
	assert.Equal(t, a.GenerateNews(5), b.GenerateNews(5))
}

func TestGenerator_ImplementsSources(t *testing.T) {
	var src post.Source = NewGenerator(3)
	var news post.NewsSource = NewGenerator(3)

	assert.Equal(t, "sample", src.Name())
	assert.True(t, src.Available())
	assert.True(t, news.Available())

	records, err := src.Fetch(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	articles, err := news.FetchNews(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, articles, 6)
	for _, a := range articles {
		assert.True(t, a.Sentiment.Valid())
		assert.GreaterOrEqual(t, a.ImpactScore, 1)
		assert.LessOrEqual(t, a.ImpactScore, 100)
	}
}

func TestPublisher_NilConnectionIsNoop(t *testing.T) {
	p := NewPublisher(nil, "ecodash.events")
	assert.Equal(t, "ecodash.events.dashboard.built", p.Subject())
	assert.NoError(t, p.PublishDashboardBuilt(DashboardBuilt{DataSource: "reddit"}))

	var nilPublisher *Publisher
	assert.NoError(t, nilPublisher.PublishDashboardBuilt(DashboardBuilt{}))
}

func TestEncodeEvent_FillsIdentity(t *testing.T) {
	data, err := encodeEvent(DashboardBuilt{DataSource: "sample", Success: true, TotalPosts: 10})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotEmpty(t, decoded["event_id"])
	assert.NotEmpty(t, decoded["timestamp"])
	assert.Equal(t, "sample", decoded["data_source"])
	assert.Equal(t, float64(10), decoded["total_posts"])
}
