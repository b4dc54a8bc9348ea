package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtumedei/relish-recipe-dt/internal/db"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

func qty(n float64) *float64 { return &n }
func unit(s string) *string  { return &s }
func sec(n int) *int         { return &n }

func batchRecipes() []models.InitialRecipe {
	return []models.InitialRecipe{
		{
			Dish: "tomato sauce",
			Steps: []models.Step{
				{
					Description: "simmer the tomatoes",
					Ingredients: []models.IngredientUse{
						{IngredientName: "tomatoes", Quantity: qty(500), Unit: unit("g")},
						{IngredientName: "salt", Quantity: qty(1), Unit: unit("tsp")},
					},
					Tools: []models.ToolUse{
						{ToolName: "saucepan", AlternativeTools: []string{"pot"}},
					},
					PrepSeconds: sec(600),
				},
			},
		},
		{
			Dish: "pasta al pomodoro",
			Steps: []models.Step{
				{
					Description: "boil the pasta",
					Ingredients: []models.IngredientUse{
						{IngredientName: "spaghetti", Quantity: qty(200), Unit: unit("g")},
						{IngredientName: "salt", Quantity: qty(2), Unit: unit("tsp")},
					},
					Tools: []models.ToolUse{
						{ToolName: "pot", AlternativeTools: nil},
					},
					PrepSeconds: sec(480),
				},
				{
					Description: "toss with the sauce",
					Ingredients: []models.IngredientUse{
						{IngredientName: "tomato sauce", Quantity: qty(150), Unit: unit("g")},
						{IngredientName: "salt", Quantity: qty(1), Unit: unit("tsp")},
					},
					Tools: []models.ToolUse{
						{ToolName: "pot", AlternativeTools: []string{"pan"}},
					},
				},
			},
		},
	}
}

func TestPopulateRecipes(t *testing.T) {
	store := newFakeStore()
	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: rejectAll}, nil)

	records, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 2 dishes + 3 ingredients (tomatoes, salt, spaghetti) + 3 tools
	// (saucepan, pot, pan); "tomato sauce" resolves as a dish, not an
	// ingredient.
	assert.Equal(t, 8, store.creates, "each unique name creates exactly one entity")

	sauce, pasta := records[0], records[1]
	assert.Equal(t, "tomato sauce", sauce.DishName)
	assert.Equal(t, "pasta al pomodoro", pasta.DishName)
	assert.Equal(t, "vid123", sauce.VideoID)
	assert.Equal(t, 0.85, sauce.Confidence)
	assert.Equal(t, 600, sauce.TotalPrepSeconds)
	assert.Equal(t, 480, pasta.TotalPrepSeconds)
}

func TestPopulateRecipes_SubDishReference(t *testing.T) {
	store := newFakeStore()
	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: rejectAll}, nil)

	records, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.NoError(t, err)

	pasta := records[1]
	var sauceRef *models.EntityRef
	for i := range pasta.Ingredients {
		if pasta.Ingredients[i].Ref.Kind == models.KindDish {
			sauceRef = &pasta.Ingredients[i].Ref
		}
	}
	require.NotNil(t, sauceRef, "the tomato sauce ingredient should reference a dish")
	assert.Equal(t, records[0].DishID, sauceRef.ID, "the reference should point at the sauce recipe's dish")
}

func TestPopulateRecipes_QuantityAggregationPerRecipe(t *testing.T) {
	store := newFakeStore()
	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: rejectAll}, nil)

	records, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.NoError(t, err)

	pasta := records[1]
	var salt *models.RecipeIngredient
	for i := range pasta.Ingredients {
		if pasta.Ingredients[i].Ref.Kind == models.KindIngredient && pasta.Ingredients[i].Quantity != nil && *pasta.Ingredients[i].Unit == "tsp" {
			salt = &pasta.Ingredients[i]
		}
	}
	require.NotNil(t, salt, "salt should carry an aggregated quantity")
	// 2 tsp in step one plus 1 tsp in step two, scoped to this recipe only
	assert.Equal(t, 3.0, *salt.Quantity)
}

func TestPopulateRecipes_ToolAlternativesMerged(t *testing.T) {
	store := newFakeStore()
	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: rejectAll}, nil)

	records, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.NoError(t, err)

	pasta := records[1]
	require.Len(t, pasta.Tools, 1)
	assert.Len(t, pasta.Tools[0].Alternatives, 1, "pan should be carried as an alternative of pot")
	assert.NotEmpty(t, pasta.Tools[0].Tool)

	for _, step := range pasta.Steps {
		for _, tool := range step.Tools {
			assert.NotNil(t, tool.Alternatives, "alternatives should never be nil")
		}
	}
}

func TestPopulateRecipes_IdempotentWithinBatch(t *testing.T) {
	store := newFakeStore()
	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: rejectAll}, nil)

	records, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.NoError(t, err)

	// salt appears in three steps across both recipes, but every
	// reference must carry the same entity id
	var saltIDs []string
	for _, record := range records {
		for _, step := range record.Steps {
			for _, ing := range step.Ingredients {
				if ing.Unit != nil && *ing.Unit == "tsp" {
					saltIDs = append(saltIDs, ing.Ref.ID)
				}
			}
		}
	}
	require.Len(t, saltIDs, 3)
	assert.Equal(t, saltIDs[0], saltIDs[1])
	assert.Equal(t, saltIDs[1], saltIDs[2])
}

func TestPopulateRecipes_ResolutionFailureFailsBatch(t *testing.T) {
	store := newFakeStore()
	store.forcedCandidates = []db.VectorCandidate{
		{Name: "ghost", Similarity: 0.99},
	}

	r := New(store, &fakeEmbedder{}, &fakeDecider{decide: acceptAll}, nil)
	_, err := r.PopulateRecipes(context.Background(), batchRecipes(), "vid123", 0.85)
	require.Error(t, err)
}
