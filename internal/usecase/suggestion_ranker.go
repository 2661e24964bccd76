package usecase

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nutricalc/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Suggestion limits
const (
	MinSuggestionQueryLength = 2
	DefaultSuggestionLimit   = 10
	MaxSuggestionLimit       = 50
)

// Scoring weights
const (
	exactTokenWeight    = 1.0
	prefixTokenWeight   = 0.7 // "chick" typed while the food says "chicken"
	fuzzyTokenWeight    = 0.5 // one typo away
	substringMatchBonus = 0.5 // whole typed text appears in the name
	fuzzyEditDistance   = 1
)

// stopWords are ignored when tokenizing names and queries
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "with": true, "for": true,
}

// SuggestionRanker orders food suggestions by how well they cover the typed text
type SuggestionRanker struct {
	enableFuzzy bool
}

// NewSuggestionRanker creates a ranker. Fuzzy matching tolerates one typo per token.
func NewSuggestionRanker(enableFuzzy bool) *SuggestionRanker {
	return &SuggestionRanker{enableFuzzy: enableFuzzy}
}

// Rank returns suggestions sorted by score, best first. Ties keep service order.
func (r *SuggestionRanker) Rank(query string, suggestions []domain.FoodSuggestion) []domain.FoodSuggestion {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || len(suggestions) < 2 {
		return suggestions
	}

	type scored struct {
		suggestion domain.FoodSuggestion
		score      float64
	}

	ranked := make([]scored, len(suggestions))
	for i, s := range suggestions {
		ranked[i] = scored{suggestion: s, score: r.Score(query, s.Name)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]domain.FoodSuggestion, len(ranked))
	for i, s := range ranked {
		out[i] = s.suggestion
	}
	return out
}

// Score computes how much of the query is covered by name, roughly 0 to 1.5
func (r *SuggestionRanker) Score(query, name string) float64 {
	queryTokens := tokenize(query)
	nameTokens := tokenize(name)
	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0
	}

	var covered float64
	for _, qt := range queryTokens {
		covered += r.bestTokenWeight(qt, nameTokens)
	}
	score := covered / float64(len(queryTokens))

	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) >= MinSuggestionQueryLength && strings.Contains(strings.ToLower(name), q) {
		score += substringMatchBonus
	}

	return score
}

func (r *SuggestionRanker) bestTokenWeight(token string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		switch {
		case c == token:
			return exactTokenWeight
		case strings.HasPrefix(c, token):
			if prefixTokenWeight > best {
				best = prefixTokenWeight
			}
		case r.enableFuzzy && fuzzyTokenMatch(token, c, fuzzyEditDistance):
			if fuzzyTokenWeight > best {
				best = fuzzyTokenWeight
			}
		}
	}
	return best
}

// tokenize splits a string into normalized lowercase tokens, dropping stop words
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens >= 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rows instead of a full matrix
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// ClampSuggestionLimit applies the default and maximum suggestion counts
func ClampSuggestionLimit(limit int) int {
	if limit <= 0 {
		return DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		return MaxSuggestionLimit
	}
	return limit
}
