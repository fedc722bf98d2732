// internal/domain/post/model.go

package post

import (
	"fmt"
	"time"
)

// Sentiment is the coarse polarity assigned to a post
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Topic is one label of the fixed environmental taxonomy
type Topic string

const (
	TopicClimateChange      Topic = "Climate Change"
	TopicPlasticPollution   Topic = "Plastic Pollution"
	TopicRenewableEnergy    Topic = "Renewable Energy"
	TopicSustainability     Topic = "Sustainability"
	TopicOceanConservation  Topic = "Ocean Conservation"
	TopicBiodiversity       Topic = "Biodiversity"
	TopicEnvironmentalAware Topic = "Environmental Awareness"
)

// Platform tags used by the bundled sources
const (
	PlatformReddit  = "reddit"
	PlatformTwitter = "twitter"
	PlatformBluesky = "bluesky"
)

// Post is the canonical, fully defaulted record consumed by analytics
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Text            string    `json:"text"`
	Author          string    `json:"author"`
	SourceGroup     string    `json:"source_group"`
	Timestamp       time.Time `json:"timestamp"`
	Upvotes         int       `json:"upvotes"`
	Comments        int       `json:"comments"`
	Shares          int       `json:"shares"`
	URL             string    `json:"url,omitempty"`
	Sentiment       Sentiment `json:"sentiment"`
	Topic           Topic     `json:"topic"`
	Hashtags        []string  `json:"hashtags"`
	EngagementScore int       `json:"engagement_score"`
	Platform        string    `json:"platform"`
	Flair           string    `json:"flair,omitempty"`
}

// RawRecord is what a provider hands to the normalizer.
// Zero counters mean the provider did not report them.
type RawRecord struct {
	ID          string
	Title       string
	Text        string
	Author      string
	SourceGroup string
	CreatedAt   time.Time
	Votes       int
	Comments    int
	Shares      int
	URL         string
	Flair       string
	Platform    string
}

// NewsArticle is an item of the optional parallel news sequence
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
	Sentiment   Sentiment `json:"sentiment"`
	Topic       Topic     `json:"topic"`
	ImpactScore int       `json:"impact_score"`
}

// Validate checks that every field used by analytics is present and in range
func (p Post) Validate() error {
	if p.Title == "" && p.Text == "" {
		return fmt.Errorf("post %q: title and text are both empty", p.ID)
	}
	if p.Upvotes < 0 || p.Comments < 0 || p.Shares < 0 || p.EngagementScore < 0 {
		return fmt.Errorf("post %q: negative counter", p.ID)
	}
	if !p.Sentiment.Valid() {
		return fmt.Errorf("post %q: unknown sentiment %q", p.ID, p.Sentiment)
	}
	if !p.Topic.Valid() {
		return fmt.Errorf("post %q: unknown topic %q", p.ID, p.Topic)
	}
	if p.Platform == "" {
		return fmt.Errorf("post %q: missing platform", p.ID)
	}
	return nil
}

// Valid reports whether s is one of the three known labels
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Valid reports whether t belongs to the taxonomy
func (t Topic) Valid() bool {
	switch t {
	case TopicClimateChange, TopicPlasticPollution, TopicRenewableEnergy,
		TopicSustainability, TopicOceanConservation, TopicBiodiversity,
		TopicEnvironmentalAware:
		return true
	}
	return false
}
