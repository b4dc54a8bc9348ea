package models

import (
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecipeIngredient is an aggregated ingredient reference on a final record.
// Quantity/Unit are present only when every contributing step carried a
// numeric quantity and the units agreed.
type RecipeIngredient struct {
	Ref      EntityRef `json:"ref"`
	Quantity *float64  `json:"quantity,omitempty"`
	Unit     *string   `json:"unit,omitempty"`
}

// RecipeTool is a resolved tool reference with resolved alternatives.
type RecipeTool struct {
	Tool         string   `json:"tool"`
	Alternatives []string `json:"alternatives"`
}

// RecordStepIngredient is a per-step ingredient reference with the
// original quantity information preserved.
type RecordStepIngredient struct {
	Ref      EntityRef `json:"ref"`
	Quantity *float64  `json:"quantity,omitempty"`
	Unit     *string   `json:"unit,omitempty"`
}

// RecordStep is a final, entity-linked preparation step.
type RecordStep struct {
	Description string                 `json:"description"`
	Ingredients []RecordStepIngredient `json:"ingredients"`
	Tools       []RecipeTool           `json:"tools"`
	PrepSeconds *int                   `json:"prepSeconds,omitempty"`
}

// FinalRecipeRecord is the persisted unit: the extracted recipe with every
// free-text name replaced by a canonical entity identifier. Created once
// per extracted recipe and immutable thereafter in this pipeline.
type FinalRecipeRecord struct {
	ID               surrealmodels.RecordID `json:"id,omitempty"`
	DishID           string                 `json:"dishId"`
	DishName         string                 `json:"dishName"`
	VideoID          string                 `json:"videoId,omitempty"`
	Ingredients      []RecipeIngredient     `json:"ingredients"`
	Tools            []RecipeTool           `json:"tools"`
	Steps            []RecordStep           `json:"steps"`
	TotalPrepSeconds int                    `json:"totalPrepSeconds"`
	Confidence       float64                `json:"confidence"`
}
