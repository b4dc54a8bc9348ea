package models

// IngredientUse is one ingredient mention inside a step. Quantity and unit
// are optional; Unit is "units" for countable ingredients without a
// specific unit (e.g. 4 eggs).
type IngredientUse struct {
	IngredientName string   `json:"ingredientName"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Unit           *string  `json:"unit,omitempty"`
}

// ToolUse is one tool mention inside a step, with acceptable alternatives.
type ToolUse struct {
	ToolName         string   `json:"toolName"`
	AlternativeTools []string `json:"alternativeTools"`
}

// Step is one preparation step of an extracted recipe.
type Step struct {
	Description string          `json:"description"`
	Ingredients []IngredientUse `json:"ingredients"`
	Tools       []ToolUse       `json:"tools"`
	PrepSeconds *int            `json:"prepSeconds,omitempty"`
}

// InitialRecipe is a recipe as extracted from free text. Names are
// free-text strings, not yet tied to database identity.
type InitialRecipe struct {
	Dish  string `json:"dish"`
	Steps []Step `json:"steps"`
}

// ExtractionResult is the language model's raw structured output for one
// extraction call. Confidence is a holistic self-assessment in [0, 1].
type ExtractionResult struct {
	Result     []InitialRecipe `json:"result"`
	Confidence float64         `json:"confidence"`
}
