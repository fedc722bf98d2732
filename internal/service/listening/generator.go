// internal/service/listening/generator.go

package listening

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"ecodash/internal/domain/post"
)

var (
	sampleTopics = []string{
		"climate change", "global warming", "plastic pollution", "renewable energy",
		"sustainable living", "carbon emissions", "clean energy", "biodiversity",
		"conservation", "green technology", "zero waste", "ocean conservation",
	}

	sampleCommunities = []string{
		"environment", "climate", "sustainability", "renewableenergy", "ZeroWaste",
	}

	sampleFlairs = []string{"", "Discussion", "News", "Question", "Achievement"}

	titleTemplates = map[post.Sentiment][]string{
		post.SentimentPositive: {
			"Amazing progress in %s! Communities are making real change happen",
			"Inspiring innovations in %s that give me hope for the future",
			"Just learned about groundbreaking %s solutions making a difference",
			"Community-led %s initiatives are showing incredible results",
		},
		post.SentimentNegative: {
			"Deeply concerned about the latest %s reports and lack of action",
			"Another devastating study on %s - when will policymakers listen?",
			"Frustrated by the slow progress on %s despite clear evidence",
			"Alarming data about %s that requires urgent attention",
		},
		post.SentimentNeutral: {
			"New research on %s published today - important findings",
			"Discussion: What are your thoughts on recent %s developments?",
			"Community event about %s solutions happening this weekend",
			"Analysis of corporate initiatives for %s - your perspectives?",
		},
	}

	bodyTemplates = map[post.Sentiment][]string{
		post.SentimentPositive: {
			"I've been following %s developments closely and wanted to share some encouraging news. The recent community initiatives and technological breakthroughs are truly inspiring. What other positive developments have you seen in this area?",
			"As someone passionate about %s, I'm excited to see the progress being made. From local community actions to global policy changes, there's a lot to be hopeful about. Let's discuss the most promising solutions!",
			"I just attended a conference on %s and came away feeling optimistic. The innovation and dedication in this field are incredible. Share your own hopeful stories below!",
		},
		post.SentimentNegative: {
			"I'm growing increasingly concerned about %s. The latest reports show we're not moving fast enough, and the consequences could be severe. What concrete actions can we take to accelerate change?",
			"The new data on %s is alarming, to say the least. We need urgent action from governments, corporations, and individuals. How can we mobilize more effectively?",
			"After reading the latest research on %s, I'm frustrated by the lack of meaningful progress. We have the solutions - why aren't we implementing them at scale?",
		},
		post.SentimentNeutral: {
			"I've been researching %s and found some interesting developments. There are multiple approaches being explored, each with pros and cons. What are your thoughts on the current state of this field?",
			"New study published on %s raises some important questions. The methodology seems sound, but I'm curious about the practical implications. Let's discuss!",
			"Community meeting about %s solutions yielded diverse perspectives. I'm compiling the key takeaways and would appreciate additional insights from this community.",
		},
	}

	newsTopics = []string{
		"Climate Change", "Renewable Energy", "Plastic Pollution",
		"Wildlife Conservation", "Sustainable Development", "Clean Air",
		"Ocean Protection", "Green Technology", "Carbon Emissions",
	}

	newsOutlets = []string{
		"Eco News Network", "Green Planet Daily", "Sustainable Times",
		"Environmental Digest", "Climate Today", "Earth Watch",
	}

	newsTemplates = map[post.Sentiment][]string{
		post.SentimentPositive: {
			"Breakthrough in %s Offers New Hope",
			"Community Achieves Remarkable Success in %s Initiative",
			"Innovative Solution Transforms %s Landscape",
		},
		post.SentimentNegative: {
			"Alarming Report Reveals %s Crisis Worsening",
			"Urgent Action Needed as %s Reaches Critical Levels",
			"New Study Shows Disturbing Trends in %s",
		},
		post.SentimentNeutral: {
			"Experts Discuss Latest Developments in %s",
			"New Research Sheds Light on %s Challenges",
			"Global Summit Addresses %s Solutions",
		},
	}

	sentiments = []post.Sentiment{post.SentimentPositive, post.SentimentNegative, post.SentimentNeutral}
)

// Generator produces plausible sample posts and news from fixed template pools.
// It is used when no live provider can be reached.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	normalizer *Normalizer
	now        func() time.Time
}

// NewGenerator creates a generator driven by the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		normalizer: NewNormalizer(),
		now:        time.Now,
	}
}

// Name returns the source name
func (g *Generator) Name() string {
	return "sample"
}

// Available is always true; the generator needs no credentials
func (g *Generator) Available() bool {
	return true
}

// Fetch returns exactly limit raw sample records
func (g *Generator) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	return g.GenerateRaw(limit), nil
}

// Generate returns exactly limit canonical sample posts
func (g *Generator) Generate(limit int) ([]post.Post, error) {
	return g.normalizer.Normalize(g.GenerateRaw(limit))
}

// GenerateRaw samples limit raw records shaped like Reddit submissions
func (g *Generator) GenerateRaw(limit int) []post.RawRecord {
	if limit <= 0 {
		return []post.RawRecord{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	records := make([]post.RawRecord, 0, limit)

	for i := 0; i < limit; i++ {
		topic := pick(g.rng, sampleTopics)
		sentiment := sentiments[g.rng.Intn(len(sentiments))]
		community := pick(g.rng, sampleCommunities)

		records = append(records, post.RawRecord{
			ID:          fmt.Sprintf("sample_%d_%d", i, now.Unix()),
			Title:       fmt.Sprintf(pick(g.rng, titleTemplates[sentiment]), topic),
			Text:        fmt.Sprintf(pick(g.rng, bodyTemplates[sentiment]), topic),
			Author:      fmt.Sprintf("u/eco_enthusiast_%d", 1000+g.rng.Intn(9000)),
			SourceGroup: "r/" + community,
			CreatedAt:   now.Add(-time.Duration(g.rng.Intn(73)) * time.Hour),
			Votes:       10 + g.rng.Intn(4991),
			Comments:    5 + g.rng.Intn(196),
			URL:         fmt.Sprintf("https://reddit.com/r/%s/comments/sample", community),
			Flair:       pick(g.rng, sampleFlairs),
			Platform:    post.PlatformReddit,
		})
	}

	return records
}

// FetchNews returns exactly limit sample news articles
func (g *Generator) FetchNews(ctx context.Context, limit int) ([]post.NewsArticle, error) {
	return g.GenerateNews(limit), nil
}

// GenerateNews samples limit headlines from the news template pool
func (g *Generator) GenerateNews(limit int) []post.NewsArticle {
	if limit <= 0 {
		return []post.NewsArticle{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	articles := make([]post.NewsArticle, 0, limit)

	for i := 0; i < limit; i++ {
		topic := pick(g.rng, newsTopics)
		sentiment := sentiments[g.rng.Intn(len(sentiments))]
		title := fmt.Sprintf(pick(g.rng, newsTemplates[sentiment]), topic)

		articles = append(articles, NewsFromTitle(
			fmt.Sprintf("news_%d", i),
			title,
			pick(g.rng, newsOutlets),
			fmt.Sprintf("https://example.com/news/%d", i),
			now.Add(-time.Duration(g.rng.Intn(49))*time.Hour),
			1+g.rng.Intn(100),
		))
	}

	return articles
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
