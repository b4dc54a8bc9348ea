// Package models defines data structures shared across the ingestion pipeline.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// EntityKind discriminates what a recipe reference points at. A recipe can
// reference another dish as a component, so ingredient references are a
// tagged union of ingredient-or-dish.
type EntityKind string

const (
	KindIngredient EntityKind = "ingredient"
	KindDish       EntityKind = "dish"
)

// CanonicalEntity is a database-resident ingredient, tool or dish. Created
// on demand by the entity resolver, never deleted by the pipeline.
type CanonicalEntity struct {
	ID            surrealmodels.RecordID `json:"id"`
	Name          string                 `json:"name"`
	NameEmbedding []float32              `json:"name_embedding,omitempty"`
	Created       time.Time              `json:"created,omitempty"`
}

// EntityRef is a tagged reference to a canonical entity.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}
