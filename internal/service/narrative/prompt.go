// internal/service/narrative/prompt.go

package narrative

import (
	"fmt"
	"strings"

	domain "ecodash/internal/domain/narrative"
	"ecodash/internal/domain/post"
)

// DefaultDominantTopic is reported when there are no posts
const DefaultDominantTopic = "environment"

// BuildPrompt renders the bounded analysis prompt sent to a backend. It
// carries only counts and the topic set, never post bodies.
func BuildPrompt(posts []post.Post, news []post.NewsArticle) string {
	breakdown := CountSentiments(posts)

	var b strings.Builder
	b.WriteString("Analyze this environmental social media data and provide insights:\n\n")
	fmt.Fprintf(&b, "Social Media Posts: %d posts\n", len(posts))
	fmt.Fprintf(&b, "Dominant Topics: %s\n", strings.Join(topicSet(posts), ", "))
	fmt.Fprintf(&b, "Sentiment Distribution: Positive: %d, Negative: %d, Neutral: %d\n",
		breakdown.Positive, breakdown.Negative, breakdown.Neutral)
	fmt.Fprintf(&b, "News Articles: %d articles\n\n", len(news))
	b.WriteString("Please provide:\n")
	b.WriteString("1. A concise summary of current environmental discourse\n")
	b.WriteString("2. Key trends and patterns\n")
	b.WriteString("3. Actionable recommendations for environmental organizations\n")
	b.WriteString("4. Sentiment breakdown\n")

	return b.String()
}

// CountSentiments returns raw sentiment counts
func CountSentiments(posts []post.Post) domain.SentimentBreakdown {
	var breakdown domain.SentimentBreakdown
	for _, p := range posts {
		switch p.Sentiment {
		case post.SentimentPositive:
			breakdown.Positive++
		case post.SentimentNegative:
			breakdown.Negative++
		case post.SentimentNeutral:
			breakdown.Neutral++
		}
	}
	return breakdown
}

// DominantTopic returns the most frequent topic; ties go to the topic seen first
func DominantTopic(posts []post.Post) string {
	if len(posts) == 0 {
		return DefaultDominantTopic
	}

	counts := make(map[post.Topic]int)
	var best post.Topic
	for _, p := range posts {
		counts[p.Topic]++
	}
	for _, p := range posts {
		if best == "" || counts[p.Topic] > counts[best] {
			best = p.Topic
		}
	}
	return string(best)
}

// FirstLine returns the first non-blank line of a completion
func FirstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func topicSet(posts []post.Post) []string {
	seen := make(map[post.Topic]bool)
	topics := make([]string, 0)
	for _, p := range posts {
		if !seen[p.Topic] {
			seen[p.Topic] = true
			topics = append(topics, string(p.Topic))
		}
	}
	return topics
}

func positiveRate(b domain.SentimentBreakdown) float64 {
	total := b.Positive + b.Negative + b.Neutral
	if total == 0 {
		return 0
	}
	return float64(b.Positive) / float64(total) * 100
}
