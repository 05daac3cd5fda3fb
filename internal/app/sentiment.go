package app

import (
	"strings"

	"flex_reviews/internal/domain"
)

var positiveWords = map[string]struct{}{
	"amazing": {}, "great": {}, "good": {}, "perfect": {}, "smooth": {}, "highly": {},
	"recommended": {}, "comfortable": {}, "quiet": {}, "modern": {}, "loved": {},
	"stunning": {}, "clean": {}, "spotless": {}, "friendly": {}, "wonderful": {},
	"excellent": {}, "nice": {}, "perfectly": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "poor": {}, "slow": {}, "noisy": {}, "dirty": {}, "delayed": {},
	"issue": {}, "problem": {}, "worst": {}, "terrible": {}, "awful": {},
	"disappointed": {}, "rude": {},
}

// AnalyzeSentiment scores text by counting lexicon hits: +1 per positive word,
// -1 per negative word. Scores above 1 are Positive, below -1 Negative.
func AnalyzeSentiment(text string) (float64, domain.Sentiment) {
	if text == "" {
		return 0, domain.SentimentNeutral
	}
	score := 0
	for _, w := range strings.Fields(text) {
		w = strings.ToLower(strings.Trim(w, ".,!?:;"))
		if _, ok := positiveWords[w]; ok {
			score++
		} else if _, ok := negativeWords[w]; ok {
			score--
		}
	}
	label := domain.SentimentNeutral
	switch {
	case score > 1:
		label = domain.SentimentPositive
	case score < -1:
		label = domain.SentimentNegative
	}
	return float64(score), label
}

func parseSentiment(s string) domain.Sentiment {
	switch domain.Sentiment(s) {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
		return domain.Sentiment(s)
	}
	return ""
}
