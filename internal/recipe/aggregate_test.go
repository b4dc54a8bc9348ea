package recipe

import (
	"reflect"
	"testing"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

func qty(n float64) *float64 { return &n }
func unit(s string) *string  { return &s }

func TestAggregateQuantity(t *testing.T) {
	tests := []struct {
		name string
		uses []models.IngredientUse
		want Amount
	}{
		{
			name: "consistent units sum",
			uses: []models.IngredientUse{
				{IngredientName: "flour", Quantity: qty(2), Unit: unit("cups")},
				{IngredientName: "flour", Quantity: qty(1), Unit: unit("cups")},
			},
			want: Amount{Quantity: 3, Unit: "cups", OK: true},
		},
		{
			name: "singular and plural unit agree",
			uses: []models.IngredientUse{
				{IngredientName: "flour", Quantity: qty(2), Unit: unit("cups")},
				{IngredientName: "flour", Quantity: qty(1), Unit: unit("cup")},
			},
			want: Amount{Quantity: 3, Unit: "cups", OK: true},
		},
		{
			name: "missing quantity omits aggregate",
			uses: []models.IngredientUse{
				{IngredientName: "flour", Quantity: qty(2), Unit: unit("cups")},
				{IngredientName: "flour", Quantity: nil, Unit: unit("cups")},
			},
			want: Amount{},
		},
		{
			name: "missing unit omits aggregate",
			uses: []models.IngredientUse{
				{IngredientName: "flour", Quantity: qty(2), Unit: unit("cups")},
				{IngredientName: "flour", Quantity: qty(1), Unit: nil},
			},
			want: Amount{},
		},
		{
			name: "disagreeing units omit aggregate",
			uses: []models.IngredientUse{
				{IngredientName: "milk", Quantity: qty(200), Unit: unit("ml")},
				{IngredientName: "milk", Quantity: qty(1), Unit: unit("cup")},
			},
			want: Amount{},
		},
		{
			name: "single use",
			uses: []models.IngredientUse{
				{IngredientName: "eggs", Quantity: qty(4), Unit: unit("units")},
			},
			want: Amount{Quantity: 4, Unit: "units", OK: true},
		},
		{
			name: "no uses",
			uses: nil,
			want: Amount{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateQuantity(tt.uses)
			if got != tt.want {
				t.Errorf("AggregateQuantity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeToolAlternatives(t *testing.T) {
	steps := []models.Step{
		{
			Description: "knead the dough",
			Tools: []models.ToolUse{
				{ToolName: "stand mixer", AlternativeTools: []string{"hands"}},
			},
		},
		{
			Description: "knead again",
			Tools: []models.ToolUse{
				{ToolName: "stand mixer", AlternativeTools: []string{"food processor", "hands"}},
				{ToolName: "bowl", AlternativeTools: nil},
			},
		},
	}

	merged := MergeToolAlternatives(steps)
	if len(merged) != 2 {
		t.Fatalf("got %d tools, want 2: %+v", len(merged), merged)
	}

	if merged[0].ToolName != "stand mixer" {
		t.Errorf("first tool = %q, want %q", merged[0].ToolName, "stand mixer")
	}
	wantAlts := []string{"hands", "food processor"}
	if !reflect.DeepEqual(merged[0].AlternativeTools, wantAlts) {
		t.Errorf("stand mixer alternatives = %v, want %v", merged[0].AlternativeTools, wantAlts)
	}

	if merged[1].ToolName != "bowl" {
		t.Errorf("second tool = %q, want %q", merged[1].ToolName, "bowl")
	}
	if merged[1].AlternativeTools == nil {
		t.Error("alternatives should never be nil")
	}
}

func TestTotalPrepSeconds(t *testing.T) {
	sec := func(n int) *int { return &n }
	steps := []models.Step{
		{Description: "a", PrepSeconds: sec(60)},
		{Description: "b", PrepSeconds: nil},
		{Description: "c", PrepSeconds: sec(30)},
	}
	if got := TotalPrepSeconds(steps); got != 90 {
		t.Errorf("TotalPrepSeconds() = %d, want 90", got)
	}
	if got := TotalPrepSeconds(nil); got != 0 {
		t.Errorf("TotalPrepSeconds(nil) = %d, want 0", got)
	}
}

func TestUniqueIngredientNames(t *testing.T) {
	recipes := []models.InitialRecipe{
		{
			Dish: "pasta",
			Steps: []models.Step{
				{Ingredients: []models.IngredientUse{
					{IngredientName: "flour"},
					{IngredientName: "eggs"},
				}},
				{Ingredients: []models.IngredientUse{
					{IngredientName: "Flour"},
					{IngredientName: "salt"},
				}},
			},
		},
		{
			Dish: "sauce",
			Steps: []models.Step{
				{Ingredients: []models.IngredientUse{
					{IngredientName: "tomatoes"},
					{IngredientName: "salt"},
				}},
			},
		},
	}

	names := UniqueIngredientNames(recipes)
	want := []string{"flour", "eggs", "salt", "tomatoes"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestUniqueToolNames_IncludesAlternatives(t *testing.T) {
	recipes := []models.InitialRecipe{
		{
			Dish: "pasta",
			Steps: []models.Step{
				{Tools: []models.ToolUse{
					{ToolName: "rolling pin", AlternativeTools: []string{"pasta machine"}},
				}},
				{Tools: []models.ToolUse{
					{ToolName: "pasta machine", AlternativeTools: []string{"knife"}},
				}},
			},
		},
	}

	names := UniqueToolNames(recipes)
	want := []string{"rolling pin", "pasta machine", "knife"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
