// Package recipe turns unstructured text into structured recipe records
// and provides the pure aggregation folds used when building final
// records.
package recipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

const extractionPrompt = `
You are an expert culinary information extraction model.
You receive informal or noisy text (e.g., posts or video transcriptions from social media). These texts may contain unrelated commentary, anecdotes, or filler language.

Your task is to identify and extract only the structured recipe information contained in the text.

Follow these rules:
- Ignore non-recipe content (introductions, jokes, ads, etc.).
- Always output the recipe in English, even if the input text is in another language. Translate ingredient names and steps to English, but stick to the original language for typical terms.
- Strictly report only what's in the text without making up any additional information.

Respond with a JSON object of this exact shape:

{
  "result": [
    {
      "dish": "name of the dish",
      "steps": [
        {
          "description": "what to do in this step",
          "ingredients": [
            { "ingredientName": "string", "quantity": number or null, "unit": "string or null" }
          ],
          "tools": [
            { "toolName": "string", "alternativeTools": ["string"] }
          ],
          "prepSeconds": number or null
        }
      ]
    }
  ],
  "confidence": number between 0 and 1 expressing how certain you are about the end result
}

Set "unit" to "units" if the ingredient has a quantity but not a specific unit (e.g. 4 eggs).
`

// jsonGenerator is the structured-output surface the extractor needs from
// a language model.
type jsonGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error
}

// Extractor pulls candidate recipes out of free text via a
// schema-constrained model call.
type Extractor struct {
	model jsonGenerator
	log   *slog.Logger
}

// NewExtractor creates a recipe extractor.
func NewExtractor(model jsonGenerator, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{model: model, log: log}
}

// Extract converts text into a list of candidate recipes with a holistic
// confidence score. A malformed model response is a fatal error for this
// extraction call; there is no retry.
func (e *Extractor) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	e.log.Info("extracting recipe from text", "text_len", len(text))

	var result models.ExtractionResult
	if err := e.model.GenerateJSON(ctx, extractionPrompt, text, &result); err != nil {
		return nil, fmt.Errorf("extract recipe: %w", err)
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("extract recipe: confidence %v out of range", result.Confidence)
	}
	for i, r := range result.Result {
		if r.Dish == "" {
			return nil, fmt.Errorf("extract recipe: recipe %d has no dish name", i)
		}
	}

	e.log.Info("extraction complete", "recipes", len(result.Result), "confidence", result.Confidence)
	return &result, nil
}
