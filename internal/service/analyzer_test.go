package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAnalyzer() *QueryAnalyzer {
	return NewQueryAnalyzer(testClassifier(), testLogger())
}

func TestQueryAnalyzer_Keywords(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()

	t.Run("extracts food tokens and drops stop words", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "what can I make with chicken and rice")

		assert.Equal(t, []string{"chicken", "rice"}, result.Keywords)
		assert.Equal(t, "chicken rice", result.SearchQuery)
		for _, stop := range []string{"what", "can", "i", "make", "with", "and"} {
			assert.NotContains(t, result.Keywords, stop)
		}
	})

	t.Run("keyword order follows first occurrence", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "rice with chicken, then more rice")
		assert.Equal(t, []string{"rice", "chicken", "rice"}, result.Keywords[:3])
	})

	t.Run("health terms append the healthy keyword", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "chicken dinner to boost my energy")
		assert.Contains(t, result.Keywords, "healthy")
		assert.Equal(t, "healthy", result.Keywords[len(result.Keywords)-1])
	})

	t.Run("falls back to the trimmed original when nothing survives", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "  please recommend something   ")
		assert.Empty(t, result.Keywords)
		assert.Equal(t, "please recommend something", result.SearchQuery)
	})

	t.Run("strips punctuation but keeps internal hyphens", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "gluten-free pasta, please!")
		assert.Contains(t, result.Keywords, "pasta")
	})

	t.Run("short-word filter counts characters, not bytes", func(t *testing.T) {
		embedder := newFakeEmbedder()
		embedder.pin("üzüm", []float32{1, 0})
		embedder.pin("çö", []float32{1, 0})
		classifier := NewFoodRelevanceClassifier(embedder, testLogger())
		multibyte := NewQueryAnalyzer(classifier, testLogger())

		result := multibyte.Analyze(ctx, "üzüm çö salad")
		assert.Contains(t, result.Keywords, "üzüm")
		// two characters, four bytes: still below the length threshold
		assert.NotContains(t, result.Keywords, "çö")
	})
}

func TestQueryAnalyzer_Exclusions(t *testing.T) {
	ctx := context.Background()
	analyzer := newTestAnalyzer()

	t.Run("dairy-free expands the dairy allergen group", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "I need a dairy-free dessert")
		for _, want := range []string{"dairy", "milk", "cheese", "butter", "cream", "yogurt"} {
			assert.Contains(t, result.Excluded, want)
		}
	})

	t.Run("allergic-to phrase expands the nuts group", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "I'm allergic to peanuts, show me a pasta recipe")
		for _, want := range []string{"nuts", "peanuts", "almonds", "cashews", "walnuts"} {
			assert.Contains(t, result.Excluded, want)
		}
		assert.Contains(t, result.SearchQuery, "pasta")
	})

	t.Run("negative word followed by a food token", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "pasta without cheese tonight")
		assert.Contains(t, result.Excluded, "cheese")
		// cheese is a dairy variation, so the whole group comes along
		assert.Contains(t, result.Excluded, "milk")
	})

	t.Run("negative word followed by a non-food token adds nothing", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "no idea, maybe some pasta")
		assert.Empty(t, result.Excluded)
	})

	t.Run("unknown exclusions are kept as-is", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "salad without tomato")
		assert.Contains(t, result.Excluded, "tomato")
	})

	t.Run("exclusion set is deduplicated", func(t *testing.T) {
		result := analyzer.Analyze(ctx, "no milk, without cheese, dairy-free please")
		seen := make(map[string]int)
		for _, item := range result.Excluded {
			seen[item]++
		}
		for item, count := range seen {
			assert.Equal(t, 1, count, "duplicate exclusion: %s", item)
		}
	})
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"gluten-free pasta!", []string{"gluten-free", "pasta"}},
		{"don't use milk", []string{"don't", "use", "milk"}},
		{"rice, beans & corn", []string{"rice", "beans", "corn"}},
		{"trailing- hyphen -leading", []string{"trailing", "hyphen", "leading"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tokenize(tc.in), "input: %q", tc.in)
	}
}
