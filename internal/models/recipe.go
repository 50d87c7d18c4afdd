package models

// Recipe represents a single recipe as returned by the catalog.
// Instances are immutable once fetched and safe to share across goroutines.
type Recipe struct {
	Name           string   `json:"name"`
	Ingredients    []string `json:"ingredients"`
	Steps          []string `json:"steps"`
	ReadyInMinutes int      `json:"readyInMinutes"`
	Servings       int      `json:"servings"`
	SourceURL      string   `json:"sourceUrl"`
}

// AnalyzedQuery is the structured form of a raw user query. It is produced
// once per query and never mutated afterwards.
type AnalyzedQuery struct {
	// Keywords in first-occurrence order.
	Keywords []string
	// SearchQuery is the space-joined keyword list, or the trimmed original
	// query when no keywords survived extraction.
	SearchQuery string
	// Excluded is the deduplicated, allergen-expanded exclusion set.
	Excluded []string
	// Optional fields populated only by the LLM-assisted path.
	DietaryPreferences []string
	CuisineType        string
	MealType           string
}

// QueryUnderstanding mirrors the strict JSON contract the LLM is prompted
// to produce. All five keys must be present for the response to be accepted.
type QueryUnderstanding struct {
	Keywords            []string `json:"keywords"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
	DietaryPreferences  []string `json:"dietary_preferences"`
	CuisineType         string   `json:"cuisine_type"`
	MealType            string   `json:"meal_type"`
}
