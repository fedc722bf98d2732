// internal/service/listening/classifier.go

package listening

import (
	"regexp"
	"strings"

	"ecodash/internal/domain/post"
)

var (
	positiveWords = []string{
		"amazing", "great", "hope", "progress", "inspired", "solution",
		"better", "awesome", "encouraging", "optimistic", "exciting",
	}
	negativeWords = []string{
		"concerned", "alarming", "frustrated", "worried", "problem",
		"crisis", "urgent", "devastating", "slow", "lack",
	}

	hashtagPattern = regexp.MustCompile(`#[\p{L}\p{N}\p{M}_]+`)
)

// topicRule maps a keyword group to a topic label
type topicRule struct {
	keywords []string
	topic    post.Topic
}

// Evaluated in order; the first matching rule wins.
var topicRules = []topicRule{
	{[]string{"climate", "warming", "carbon", "emission", "temperature"}, post.TopicClimateChange},
	{[]string{"plastic", "pollution", "waste", "recycle", "garbage"}, post.TopicPlasticPollution},
	{[]string{"energy", "renewable", "solar", "wind", "clean energy"}, post.TopicRenewableEnergy},
	{[]string{"sustainable", "eco", "green", "environmental"}, post.TopicSustainability},
	{[]string{"ocean", "sea", "marine", "water"}, post.TopicOceanConservation},
	{[]string{"biodiversity", "wildlife", "species", "conservation"}, post.TopicBiodiversity},
}

// ClassifySentiment counts positive and negative signal words in text.
// Ties, including no signal at all, resolve to neutral.
func ClassifySentiment(text string) post.Sentiment {
	lower := strings.ToLower(text)

	positive := countMatches(lower, positiveWords)
	negative := countMatches(lower, negativeWords)

	switch {
	case positive > negative:
		return post.SentimentPositive
	case negative > positive:
		return post.SentimentNegative
	default:
		return post.SentimentNeutral
	}
}

// ClassifyTopic returns the topic of the first rule with a keyword in text
func ClassifyTopic(text string) post.Topic {
	lower := strings.ToLower(text)

	for _, rule := range topicRules {
		if countMatches(lower, rule.keywords) > 0 {
			return rule.topic
		}
	}
	return post.TopicEnvironmentalAware
}

// ExtractHashtags returns every hashtag in order of appearance, duplicates included
func ExtractHashtags(text string) []string {
	tags := hashtagPattern.FindAllString(text, -1)
	if tags == nil {
		return []string{}
	}
	return tags
}

// countMatches counts how many words occur in text as substrings
func countMatches(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}
