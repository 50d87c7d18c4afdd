package service

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

// stopWords are dropped during keyword extraction.
var stopWords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "can": {}, "you": {}, "please": {}, "want": {},
	"would": {}, "like": {}, "need": {}, "help": {}, "looking": {}, "for": {},
	"some": {}, "recipe": {}, "recipes": {}, "with": {}, "using": {}, "make": {},
	"cook": {}, "cooking": {}, "recommend": {}, "show": {}, "tell": {}, "give": {},
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "to": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "fill": {},
}

// healthTerms trigger the literal "healthy" keyword when any of them appears
// anywhere in the query.
var healthTerms = []string{
	"energy", "healthy", "nutritious", "protein",
	"vitamin", "minerals", "boost", "power",
}

// negativeWords mark the token immediately after them as a candidate
// exclusion.
var negativeWords = map[string]struct{}{
	"no": {}, "not": {}, "without": {}, "exclude": {}, "don't": {},
	"doesnt": {}, "doesn't": {}, "except": {}, "excluding": {}, "free": {},
	"-free": {}, "none": {}, "cant": {}, "can't": {}, "cannot": {},
	"avoid": {}, "allergic": {}, "allergy": {}, "intolerant": {}, "intolerance": {},
}

// healthPhrases imply the word right after them should be excluded.
var healthPhrases = []string{
	"can't eat", "cannot eat", "cant eat",
	"can't have", "cannot have", "cant have",
	"allergic to", "intolerant to",
	"avoid eating", "avoid having",
	"sensitive to", "bad with",
}

// allergenBases are the accepted prefixes of "-free" tokens.
var allergenBases = map[string]struct{}{
	"dairy": {}, "gluten": {}, "nut": {}, "egg": {}, "soy": {}, "lactose": {},
}

// allergenMapping expands a collected exclusion into the full allergen group.
var allergenMapping = map[string][]string{
	"milk":   {"milk", "dairy", "lactose", "cream", "cheese", "butter", "yogurt", "whey"},
	"egg":    {"egg", "eggs"},
	"nuts":   {"nuts", "peanuts", "almonds", "cashews", "walnuts"},
	"soy":    {"soy", "soybeans", "tofu", "soya"},
	"gluten": {"gluten", "wheat", "rye", "barley"},
}

// QueryAnalyzer turns raw query text into search keywords and excluded
// ingredients using the rule-based extraction path.
type QueryAnalyzer struct {
	classifier *FoodRelevanceClassifier
	logger     *zap.Logger
}

// NewQueryAnalyzer creates an analyzer backed by the given classifier.
func NewQueryAnalyzer(classifier *FoodRelevanceClassifier, logger *zap.Logger) *QueryAnalyzer {
	return &QueryAnalyzer{
		classifier: classifier,
		logger:     logger,
	}
}

// Analyze extracts keywords and exclusions from the raw query. The result is
// produced once and never mutated afterwards.
func (a *QueryAnalyzer) Analyze(ctx context.Context, query string) models.AnalyzedQuery {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	words := tokenize(trimmed)

	var keywords []string
	for _, word := range words {
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if a.classifier.IsFoodRelated(ctx, word) {
			keywords = append(keywords, word)
			a.logger.Debug("found food-related word", zap.String("word", word))
		}
	}

	for _, term := range healthTerms {
		if strings.Contains(trimmed, term) {
			keywords = append(keywords, "healthy")
			break
		}
	}

	searchQuery := trimmed
	if len(keywords) > 0 {
		searchQuery = strings.Join(keywords, " ")
	}

	excluded := a.extractExcluded(ctx, trimmed, words)

	a.logger.Info("analyzed query",
		zap.String("query", trimmed),
		zap.Strings("keywords", keywords),
		zap.String("search_query", searchQuery),
		zap.Strings("excluded", excluded))

	return models.AnalyzedQuery{
		Keywords:    keywords,
		SearchQuery: searchQuery,
		Excluded:    excluded,
	}
}

// extractExcluded collects exclusion candidates from health phrases, "-free"
// suffixes and negative words, then expands them through the allergen map.
func (a *QueryAnalyzer) extractExcluded(ctx context.Context, query string, words []string) []string {
	collected := make(map[string]struct{})

	for _, phrase := range healthPhrases {
		idx := strings.Index(query, phrase)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(query[idx+len(phrase):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		next := trimPunct(fields[0])
		if next != "" && a.classifier.IsFoodRelated(ctx, next) {
			collected[next] = struct{}{}
		}
	}

	for _, word := range words {
		if base, ok := strings.CutSuffix(word, "-free"); ok {
			if _, known := allergenBases[base]; known {
				collected[base] = struct{}{}
			}
		}
	}

	for i, word := range words {
		if _, negative := negativeWords[word]; !negative || i+1 >= len(words) {
			continue
		}
		next := words[i+1]
		if a.classifier.IsFoodRelated(ctx, next) {
			collected[next] = struct{}{}
		}
	}

	return ExpandAllergens(collected)
}

// ExpandAllergens expands each collected token through the allergen mapping.
// Tokens matching no group are kept as-is. The result is sorted for
// deterministic output.
func ExpandAllergens(collected map[string]struct{}) []string {
	expanded := make(map[string]struct{})
	for item := range collected {
		matched := false
		for allergen, variations := range allergenMapping {
			if item == allergen || contains(variations, item) {
				expanded[allergen] = struct{}{}
				for _, v := range variations {
					expanded[v] = struct{}{}
				}
				matched = true
				break
			}
		}
		if !matched {
			expanded[item] = struct{}{}
		}
	}

	out := make([]string, 0, len(expanded))
	for item := range expanded {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// tokenize lowercases, strips punctuation (keeping hyphens that join two
// word characters) and splits on whitespace.
func tokenize(text string) []string {
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '-' && i > 0 && i+1 < len(runes) &&
			isWordRune(runes[i-1]) && isWordRune(runes[i+1]):
			b.WriteRune(r)
		case r == '\'':
			// Keep apostrophes so contractions like "don't" survive as
			// negative words.
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !isWordRune(r)
	})
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
