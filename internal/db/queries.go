// Package db provides SurrealDB query functions for entity and recipe
// operations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Collection identifies an entity collection with its own vector index.
type Collection string

const (
	CollectionIngredient Collection = "ingredient"
	CollectionTool       Collection = "tool"
	CollectionDish       Collection = "dish"
)

// validate guards against query interpolation: collection names end up in
// SurrealQL strings, so only the known set is accepted.
func (c Collection) validate() error {
	switch c {
	case CollectionIngredient, CollectionTool, CollectionDish:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, string(c))
}

// VectorCandidate is one ANN search hit, narrowed at the adapter boundary
// to exactly the fields the resolver consumes.
type VectorCandidate struct {
	ID         surrealmodels.RecordID `json:"id"`
	Name       string                 `json:"name"`
	Similarity float64                `json:"similarity"`
}

// VectorSearch runs an approximate nearest-neighbor search against a
// collection's name-embedding index, returning up to limit candidates by
// descending cosine similarity over a bounded candidate pool.
func (c *Client) VectorSearch(ctx context.Context, col Collection, embedding []float32, limit, pool int) ([]VectorCandidate, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	sql := fmt.Sprintf(`
		SELECT id, name, vector::similarity::cosine(name_embedding, $emb) AS similarity
		FROM %s
		WHERE name_embedding <|%d,%d|> $emb
		ORDER BY similarity DESC
	`, col, limit, pool)

	results, err := surrealdb.Query[[]VectorCandidate](ctx, c.db, sql, map[string]any{
		"emb": embedding,
	})
	c.recordTiming(opVectorSearch, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("vector search %s: %w", col, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []VectorCandidate{}, nil
	}

	// Validate hits before they leave the adapter
	hits := (*results)[0].Result
	for i, hit := range hits {
		if hit.Name == "" {
			return nil, fmt.Errorf("vector search %s: hit %d has empty name", col, i)
		}
	}
	return hits, nil
}

// GetEntity retrieves a canonical entity by ID. A missing record is
// ErrNotFound.
func (c *Client) GetEntity(ctx context.Context, col Collection, id string) (*models.CanonicalEntity, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	sql := fmt.Sprintf(`SELECT * FROM type::record("%s", $id)`, col)
	results, err := surrealdb.Query[[]models.CanonicalEntity](ctx, c.db, sql, map[string]any{"id": id})
	c.recordTiming(opDBQuery, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", col, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get %s %q: %w", col, id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// CreateEntity creates a new canonical entity with its name embedding.
func (c *Client) CreateEntity(ctx context.Context, col Collection, name string, embedding []float32) (*models.CanonicalEntity, error) {
	if err := col.validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	sql := fmt.Sprintf(`
		CREATE %s SET
			name = $name,
			name_embedding = $embedding
		RETURN AFTER
	`, col)

	results, err := surrealdb.Query[[]models.CanonicalEntity](ctx, c.db, sql, map[string]any{
		"name":      name,
		"embedding": embedding,
	})
	c.recordTiming(opDBQuery, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", col, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create %s: no result returned", col)
	}
	return &(*results)[0].Result[0], nil
}

// CreateRecipe persists a final recipe record and returns its identifier.
func (c *Client) CreateRecipe(ctx context.Context, record models.FinalRecipeRecord) (string, error) {
	start := time.Now()

	results, err := surrealdb.Query[[]models.FinalRecipeRecord](ctx, c.db, `
		CREATE recipe CONTENT $data RETURN AFTER
	`, map[string]any{"data": map[string]any{
		"dishId":           record.DishID,
		"dishName":         record.DishName,
		"videoId":          record.VideoID,
		"ingredients":      record.Ingredients,
		"tools":            record.Tools,
		"steps":            record.Steps,
		"totalPrepSeconds": record.TotalPrepSeconds,
		"confidence":       record.Confidence,
	}})
	c.recordTiming(opDBQuery, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("create recipe: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", fmt.Errorf("create recipe: no result returned")
	}
	return models.RecordIDString((*results)[0].Result[0].ID)
}

// GetRecipe retrieves a persisted recipe record by ID. A missing record
// is ErrNotFound.
func (c *Client) GetRecipe(ctx context.Context, id string) (*models.FinalRecipeRecord, error) {
	start := time.Now()

	results, err := surrealdb.Query[[]models.FinalRecipeRecord](ctx, c.db, `
		SELECT * FROM type::record("recipe", $id)
	`, map[string]any{"id": id})
	c.recordTiming(opDBQuery, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get recipe %q: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}
