package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gtumedei/relish-recipe-dt/internal/db"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
	"github.com/gtumedei/relish-recipe-dt/internal/recipe"
)

type poolEntry struct {
	entity *models.CanonicalEntity
	err    error
}

// resolvePool resolves a pre-deduplicated name list concurrently, one
// goroutine per name. The returned map is keyed by the lowercased name.
// The first resolution failure fails the whole pool.
func (r *Resolver) resolvePool(ctx context.Context, col db.Collection, names []string) (map[string]*models.CanonicalEntity, error) {
	results := make([]poolEntry, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			entity, err := r.FindOrCreate(ctx, col, name, nil)
			results[i] = poolEntry{entity: entity, err: err}
		}(i, name)
	}
	wg.Wait()

	pool := make(map[string]*models.CanonicalEntity, len(names))
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", col, names[i], res.err)
		}
		pool[nameKey(names[i])] = res.entity
	}
	return pool, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func entityID(e *models.CanonicalEntity) (string, error) {
	return models.RecordIDString(e.ID)
}

// PopulateRecipes converts a batch of extracted recipes into persistable
// records: every dish, ingredient and tool name is resolved to exactly one
// canonical entity, quantities are aggregated per recipe, and tool
// alternatives are merged across steps.
//
// An ingredient name that matches a dish name extracted in the same batch
// resolves to that dish entity instead of an ingredient entity, so
// component recipes (a sauce, a dough) link to their own records.
func (r *Resolver) PopulateRecipes(ctx context.Context, recipes []models.InitialRecipe, videoID string, confidence float64) ([]models.FinalRecipeRecord, error) {
	dishNames := uniqueDishNames(recipes)
	dishes, err := r.resolvePool(ctx, db.CollectionDish, dishNames)
	if err != nil {
		return nil, err
	}

	ingredientNames := make([]string, 0)
	for _, name := range recipe.UniqueIngredientNames(recipes) {
		if _, isDish := dishes[nameKey(name)]; !isDish {
			ingredientNames = append(ingredientNames, name)
		}
	}
	ingredients, err := r.resolvePool(ctx, db.CollectionIngredient, ingredientNames)
	if err != nil {
		return nil, err
	}

	tools, err := r.resolvePool(ctx, db.CollectionTool, recipe.UniqueToolNames(recipes))
	if err != nil {
		return nil, err
	}

	refFor := func(name string) (models.EntityRef, error) {
		key := nameKey(name)
		if dish, ok := dishes[key]; ok {
			id, err := entityID(dish)
			if err != nil {
				return models.EntityRef{}, err
			}
			return models.EntityRef{Kind: models.KindDish, ID: id}, nil
		}
		ing, ok := ingredients[key]
		if !ok {
			return models.EntityRef{}, fmt.Errorf("unresolved ingredient %q", name)
		}
		id, err := entityID(ing)
		if err != nil {
			return models.EntityRef{}, err
		}
		return models.EntityRef{Kind: models.KindIngredient, ID: id}, nil
	}

	toolIDFor := func(name string) (string, error) {
		tool, ok := tools[nameKey(name)]
		if !ok {
			return "", fmt.Errorf("unresolved tool %q", name)
		}
		return entityID(tool)
	}

	resolveTools := func(uses []models.ToolUse) ([]models.RecipeTool, error) {
		out := make([]models.RecipeTool, 0, len(uses))
		for _, use := range uses {
			id, err := toolIDFor(use.ToolName)
			if err != nil {
				return nil, err
			}
			alts := make([]string, 0, len(use.AlternativeTools))
			for _, alt := range use.AlternativeTools {
				altID, err := toolIDFor(alt)
				if err != nil {
					return nil, err
				}
				alts = append(alts, altID)
			}
			out = append(out, models.RecipeTool{Tool: id, Alternatives: alts})
		}
		return out, nil
	}

	records := make([]models.FinalRecipeRecord, 0, len(recipes))
	for _, rec := range recipes {
		dish := dishes[nameKey(rec.Dish)]
		dishID, err := entityID(dish)
		if err != nil {
			return nil, err
		}

		aggregated, err := aggregateIngredients(rec, refFor)
		if err != nil {
			return nil, err
		}

		recipeTools, err := resolveTools(recipe.MergeToolAlternatives(rec.Steps))
		if err != nil {
			return nil, err
		}

		steps := make([]models.RecordStep, 0, len(rec.Steps))
		for _, step := range rec.Steps {
			stepIngredients := make([]models.RecordStepIngredient, 0, len(step.Ingredients))
			for _, use := range step.Ingredients {
				ref, err := refFor(use.IngredientName)
				if err != nil {
					return nil, err
				}
				stepIngredients = append(stepIngredients, models.RecordStepIngredient{
					Ref:      ref,
					Quantity: use.Quantity,
					Unit:     use.Unit,
				})
			}
			stepTools, err := resolveTools(step.Tools)
			if err != nil {
				return nil, err
			}
			steps = append(steps, models.RecordStep{
				Description: step.Description,
				Ingredients: stepIngredients,
				Tools:       stepTools,
				PrepSeconds: step.PrepSeconds,
			})
		}

		records = append(records, models.FinalRecipeRecord{
			DishID:           dishID,
			DishName:         dish.Name,
			VideoID:          videoID,
			Ingredients:      aggregated,
			Tools:            recipeTools,
			Steps:            steps,
			TotalPrepSeconds: recipe.TotalPrepSeconds(rec.Steps),
			Confidence:       confidence,
		})
	}
	return records, nil
}

// aggregateIngredients folds every use of each ingredient within one
// recipe into a single entry, in order of first appearance. Quantity and
// unit are set only when the fold produced a total.
func aggregateIngredients(rec models.InitialRecipe, refFor func(string) (models.EntityRef, error)) ([]models.RecipeIngredient, error) {
	order := make([]string, 0)
	uses := make(map[string][]models.IngredientUse)
	for _, step := range rec.Steps {
		for _, use := range step.Ingredients {
			key := nameKey(use.IngredientName)
			if _, seen := uses[key]; !seen {
				order = append(order, key)
			}
			uses[key] = append(uses[key], use)
		}
	}

	out := make([]models.RecipeIngredient, 0, len(order))
	for _, key := range order {
		ref, err := refFor(key)
		if err != nil {
			return nil, err
		}
		entry := models.RecipeIngredient{Ref: ref}
		if amount := recipe.AggregateQuantity(uses[key]); amount.OK {
			q, u := amount.Quantity, amount.Unit
			entry.Quantity = &q
			entry.Unit = &u
		}
		out = append(out, entry)
	}
	return out, nil
}

func uniqueDishNames(recipes []models.InitialRecipe) []string {
	seen := make(map[string]struct{}, len(recipes))
	names := make([]string, 0, len(recipes))
	for _, rec := range recipes {
		key := nameKey(rec.Dish)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, rec.Dish)
	}
	return names
}
