package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

const likelihoodPrompt = `
You are an AI that evaluates whether a given piece of metadata from a social media post indicates that the post contains **instructions for preparing a dish (i.e., a recipe)**.

Your task is to carefully analyze the text and assign a rating on a **5-point certainty scale**:

- **1** = Absolutely not a recipe (completely unrelated to food or cooking)
- **2** = Very unlikely to be a recipe (mentions food but not instructional)
- **3** = Possibly a recipe (ambiguous, might include food prep but unclear)
- **4** = Likely a recipe (strong signs of step-by-step preparation, but not guaranteed)
- **5** = Absolutely a recipe (explicitly instructions for preparing a dish)

When making your decision, consider:

- Mentions of **ingredients** (e.g., "flour, sugar, butter")
- Mentions of **cooking methods** (e.g., "bake, fry, boil, chop, stir")
- Presence of **step-by-step structure** (e.g., "first, then, next, finally")
- Explicit references to **recipes** or cooking instructions
- Whether the text is just descriptive/entertainment vs. instructional

When in doubt between two scores, select the higher one.

### Input Example

{
  "title": "How to make creamy garlic pasta in 20 minutes",
  "description": "Simple recipe with step-by-step instructions.",
  "tags": "#recipe #pasta #cooking"
}

### Output Example

5

Output must be a single number, no additional text or markdown formatting.
`

// generator is the plain-text surface the scorer needs from a language
// model.
type generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Scorer rates how likely a piece of metadata describes a recipe.
type Scorer struct {
	model generator
}

// NewScorer creates a likelihood scorer.
func NewScorer(model generator) *Scorer {
	return &Scorer{model: model}
}

// Score rates metadata on the 1-5 certainty scale. A response that is not
// a single integer in range is an error; the caller decides whether that
// aborts anything (in the pipeline it never aborts the batch).
func (s *Scorer) Score(ctx context.Context, metadata string) (int, error) {
	text, err := s.model.GenerateWithSystem(ctx, likelihoodPrompt, metadata)
	if err != nil {
		return 0, fmt.Errorf("score likelihood: %w", err)
	}

	return ParseScore(text)
}

// ParseScore extracts the single 1-5 integer from a model response.
func ParseScore(text string) (int, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)

	score, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", text, err)
	}
	if score < 1 || score > 5 {
		return 0, fmt.Errorf("score %d out of 1-5 range", score)
	}
	return score, nil
}

// FilterByScore drops every item with a nil score or a score below the
// threshold.
func FilterByScore(items []models.ScoredItem, threshold int) []models.ScoredItem {
	kept := make([]models.ScoredItem, 0, len(items))
	for _, item := range items {
		if item.Score != nil && *item.Score >= threshold {
			kept = append(kept, item)
		}
	}
	return kept
}
