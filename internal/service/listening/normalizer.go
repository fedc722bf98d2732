// internal/service/listening/normalizer.go

package listening

import (
	"fmt"
	"strings"
	"time"

	"ecodash/internal/domain/post"
)

// EngagementWeights are the per-counter multipliers for one platform
type EngagementWeights struct {
	Votes    int
	Comments int
	Shares   int
}

var (
	engagementTable = map[string]EngagementWeights{
		post.PlatformReddit:  {Votes: 1, Comments: 5, Shares: 0},
		post.PlatformTwitter: {Votes: 1, Comments: 3, Shares: 2},
		post.PlatformBluesky: {Votes: 1, Comments: 3, Shares: 2},
	}
	defaultWeights = EngagementWeights{Votes: 1, Comments: 1, Shares: 1}
)

// WeightsFor returns the fixed engagement weights of a platform
func WeightsFor(platform string) EngagementWeights {
	if w, ok := engagementTable[strings.ToLower(platform)]; ok {
		return w
	}
	return defaultWeights
}

// EngagementScore combines raw counters with the platform weights
func EngagementScore(platform string, votes, comments, shares int) int {
	w := WeightsFor(platform)
	score := votes*w.Votes + comments*w.Comments + shares*w.Shares
	if score < 0 {
		return 0
	}
	return score
}

// Normalizer converts raw provider records into canonical posts
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize enriches every record in input order. A record that cannot be
// turned into a valid post fails the whole batch.
func (n *Normalizer) Normalize(records []post.RawRecord) ([]post.Post, error) {
	posts := make([]post.Post, 0, len(records))
	fetchedAt := n.now()

	for i, rec := range records {
		p := n.normalizeRecord(rec, fetchedAt)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

// normalizeRecord derives classification fields and substitutes defaults
func (n *Normalizer) normalizeRecord(rec post.RawRecord, fetchedAt time.Time) post.Post {
	content := strings.TrimSpace(rec.Title + " " + rec.Text)

	author := rec.Author
	if author == "" {
		author = "unknown"
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = fetchedAt
	}

	platform := strings.ToLower(rec.Platform)

	votes := nonNegative(rec.Votes)
	comments := nonNegative(rec.Comments)
	shares := nonNegative(rec.Shares)

	return post.Post{
		ID:              rec.ID,
		Title:           rec.Title,
		Text:            rec.Text,
		Author:          author,
		SourceGroup:     rec.SourceGroup,
		Timestamp:       createdAt,
		Upvotes:         votes,
		Comments:        comments,
		Shares:          shares,
		URL:             rec.URL,
		Sentiment:       ClassifySentiment(content),
		Topic:           ClassifyTopic(content),
		Hashtags:        ExtractHashtags(content),
		EngagementScore: EngagementScore(platform, votes, comments, shares),
		Platform:        platform,
		Flair:           rec.Flair,
	}
}

// NewsFromTitle classifies a headline into a news article
func NewsFromTitle(id, title, source, url string, publishedAt time.Time, impact int) post.NewsArticle {
	return post.NewsArticle{
		ID:          id,
		Title:       title,
		Source:      source,
		PublishedAt: publishedAt,
		URL:         url,
		Sentiment:   ClassifySentiment(title),
		Topic:       ClassifyTopic(title),
		ImpactScore: impact,
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
