// Package resolve maps free-text ingredient, tool and dish names to
// canonical database entities using embedding similarity search plus a
// language-model same/different decision, creating entities on demand.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/db"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

const (
	// Top candidates requested from the ANN index per query.
	searchLimit = 5
	// Bounded candidate pool scanned by the index.
	candidatePool = 200
)

// ErrIndexDiverged indicates a vector-search hit whose identifier does not
// resolve in the primary store. The vector index and the primary store
// have diverged; this stops the pipeline run.
var ErrIndexDiverged = errors.New("vector index and primary store diverged")

// Code classifies the outcome of a semantic lookup.
type Code string

const (
	CodeSuccess           Code = "SUCCESS"
	CodeNotFound          Code = "NOT_FOUND"
	CodeDecisionNotPassed Code = "DECISION_NOT_PASSED"
)

// Store is the document-store surface the resolver needs. GetEntity
// reports a missing record with db.ErrNotFound.
type Store interface {
	VectorSearch(ctx context.Context, col db.Collection, embedding []float32, limit, pool int) ([]db.VectorCandidate, error)
	GetEntity(ctx context.Context, col db.Collection, id string) (*models.CanonicalEntity, error)
	CreateEntity(ctx context.Context, col db.Collection, name string, embedding []float32) (*models.CanonicalEntity, error)
}

// Embedder computes semantic embeddings for entity names.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator is the structured-output surface used for the same/different
// decision.
type Generator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error
}

// Resolver finds-or-creates canonical entities for free-text names.
type Resolver struct {
	store       Store
	embedder    Embedder
	model       Generator
	callTimeout time.Duration
	log         *slog.Logger
}

// New creates a resolver.
func New(store Store, embedder Embedder, model Generator, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, embedder: embedder, model: model, log: log}
}

// WithCallTimeout bounds each embedding and decision call. Zero leaves
// calls limited only by the caller's context.
func (r *Resolver) WithCallTimeout(d time.Duration) *Resolver {
	r.callTimeout = d
	return r
}

func (r *Resolver) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.callTimeout)
}

const ingredientDecisionPrompt = `
You are an expert cook. You'll receive a pair of ingredient names: one is the ingredient you need, the other is the closest match found in an existing list. Your job is to output a boolean value indicating whether the provided name and the closest match are the **same exact ingredient**.

Guidelines:
- Ignore capitalization and minor punctuation differences.
- Consider singular and plural names as the **same ingredient** (e.g. "tomato" and "tomatoes" are the same).
- Consider names in different languages to be the **same ingredient** (e.g. "tomato" and "pomodoro" are the same).
- Consider "tomato" and "tomato sauce" as **different ingredients**.
- Consider "flour" and "flour (00)" as **different ingredients**.

Examples:
- Ingredient name: "sugar"
  Closest match: "sugar"
  Result: { "match": true }

- Ingredient name: "tomato"
  Closest match: "tomato sauce"
  Result: { "match": false }

- Ingredient name: "pomodoro"
  Closest match: "tomato"
  Result: { "match": true }

- Ingredient name: "tomatoes"
  Closest match: "tomato"
  Result: { "match": true }

- Ingredient name: "flour"
  Closest match: "flour (00)"
  Result: { "match": false }

Respond with a JSON object: { "match": boolean }
`

const toolDecisionPrompt = `
You are an expert cook. You'll receive a pair of tool names: one is the tool you need to prepare a recipe, the other is the closest match found in an existing list. Your job is to output a boolean value indicating whether the provided name and the closest match are the **same exact tool**.

Apply the same judgment as for ingredients: ignore capitalization, treat singular/plural and cross-language names as the same tool, and treat qualified variants as different tools.

Respond with a JSON object: { "match": boolean }
`

const dishDecisionPrompt = `
You are an expert cook. You'll receive a pair of dish names: one is the dish you are cataloguing, the other is the closest match found in an existing list. Your job is to output a boolean value indicating whether the provided name and the closest match are the **same exact dish**.

Ignore capitalization, treat singular/plural and cross-language names as the same dish, and treat qualified variants (e.g. regional or ingredient-specific versions) as different dishes.

Respond with a JSON object: { "match": boolean }
`

func decisionPrompt(col db.Collection) (system, label string) {
	switch col {
	case db.CollectionTool:
		return toolDecisionPrompt, "Tool name"
	case db.CollectionDish:
		return dishDecisionPrompt, "Dish name"
	default:
		return ingredientDecisionPrompt, "Ingredient name"
	}
}

// findSemantically runs the ANN search and, when a candidate exists, the
// strict yes/no model decision against the single closest candidate.
func (r *Resolver) findSemantically(ctx context.Context, col db.Collection, query string, embedding []float32) (Code, *db.VectorCandidate, error) {
	candidates, err := r.store.VectorSearch(ctx, col, embedding, searchLimit, candidatePool)
	if err != nil {
		return "", nil, fmt.Errorf("semantic search: %w", err)
	}
	if len(candidates) == 0 {
		return CodeNotFound, nil, nil
	}

	top := candidates[0]
	system, label := decisionPrompt(col)
	userPrompt := fmt.Sprintf("%s: %q\nClosest match: %q", label, query, top.Name)

	var decision struct {
		Match bool `json:"match"`
	}
	dctx, cancel := r.callCtx(ctx)
	err = r.model.GenerateJSON(dctx, system, userPrompt, &decision)
	cancel()
	if err != nil {
		return "", nil, fmt.Errorf("same/different decision: %w", err)
	}

	if !decision.Match {
		return CodeDecisionNotPassed, nil, nil
	}
	return CodeSuccess, &top, nil
}

// FindOrCreate resolves a name to exactly one canonical entity, creating
// one when no existing entity matches closely enough. A non-nil embedding
// is reused instead of recomputed, to avoid duplicate external calls.
//
// NOT_FOUND and DECISION_NOT_PASSED outcomes are treated identically:
// both trigger entity creation. Embedding and decision failures propagate
// as hard errors.
func (r *Resolver) FindOrCreate(ctx context.Context, col db.Collection, name string, embedding []float32) (*models.CanonicalEntity, error) {
	r.log.Debug("resolving entity", "collection", string(col), "name", name)

	if embedding == nil {
		ectx, cancel := r.callCtx(ctx)
		var err error
		embedding, err = r.embedder.Embed(ectx, name)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", name, err)
		}
	}

	code, candidate, err := r.findSemantically(ctx, col, name, embedding)
	if err != nil {
		return nil, err
	}

	if code == CodeSuccess {
		id, err := models.RecordIDString(candidate.ID)
		if err != nil {
			return nil, fmt.Errorf("candidate id for %q: %w", name, err)
		}
		entity, err := r.store.GetEntity(ctx, col, id)
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s id %q returned by search has no record", ErrIndexDiverged, col, id)
		}
		if err != nil {
			return nil, fmt.Errorf("fetch matched %s: %w", col, err)
		}
		r.log.Info("reference found", "collection", string(col), "name", name, "match", entity.Name, "similarity", candidate.Similarity)
		return entity, nil
	}

	r.log.Info("no reference found, creating entity", "collection", string(col), "name", name, "code", string(code))
	entity, err := r.store.CreateEntity(ctx, col, name, embedding)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", col, name, err)
	}
	return entity, nil
}
