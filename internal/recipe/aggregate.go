package recipe

import (
	"strings"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

// Amount is the result of aggregating an ingredient's quantities across
// steps. OK is false when the total cannot be computed: some step lacked a
// numeric quantity or unit, or units disagreed.
type Amount struct {
	Quantity float64
	Unit     string
	OK       bool
}

// AggregateQuantity folds the quantities of one ingredient's uses across
// steps. Pure: the partial/aggregate decision is independent of I/O.
// Units are compared after singular/plural normalization ("cup" and
// "cups" agree); the first-seen spelling is kept for output.
func AggregateQuantity(uses []models.IngredientUse) Amount {
	if len(uses) == 0 {
		return Amount{}
	}
	acc := Amount{OK: true}
	for _, use := range uses {
		if use.Quantity == nil || use.Unit == nil || *use.Unit == "" {
			return Amount{}
		}
		if acc.Unit == "" {
			acc.Unit = *use.Unit
		} else if normalizeUnit(acc.Unit) != normalizeUnit(*use.Unit) {
			return Amount{}
		}
		acc.Quantity += *use.Quantity
	}
	return acc
}

func normalizeUnit(unit string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(unit)), "s")
}

// MergeToolAlternatives folds the tools of all steps into one list that
// keeps the tool/alternatives structure: first mention wins the position,
// later mentions contribute their alternatives (deduplicated, order of
// first appearance preserved).
func MergeToolAlternatives(steps []models.Step) []models.ToolUse {
	var merged []models.ToolUse
	index := make(map[string]int)

	for _, step := range steps {
		for _, tool := range step.Tools {
			i, seen := index[tool.ToolName]
			if !seen {
				index[tool.ToolName] = len(merged)
				merged = append(merged, models.ToolUse{
					ToolName:         tool.ToolName,
					AlternativeTools: dedupe(nil, tool.AlternativeTools),
				})
				continue
			}
			merged[i].AlternativeTools = dedupe(merged[i].AlternativeTools, tool.AlternativeTools)
		}
	}
	return merged
}

// dedupe appends the values not already present in base, preserving order.
func dedupe(base []string, values []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	out := base
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// TotalPrepSeconds sums the prep time of all steps; steps without a prep
// time contribute zero.
func TotalPrepSeconds(steps []models.Step) int {
	total := 0
	for _, step := range steps {
		if step.PrepSeconds != nil {
			total += *step.PrepSeconds
		}
	}
	return total
}

// UniqueIngredientNames collects the distinct ingredient names across all
// steps of all recipes, in order of first appearance. Names differing
// only by case or surrounding whitespace count as one; the first spelling
// wins.
func UniqueIngredientNames(recipes []models.InitialRecipe) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range recipes {
		for _, s := range r.Steps {
			for _, i := range s.Ingredients {
				key := strings.ToLower(strings.TrimSpace(i.IngredientName))
				if !seen[key] {
					seen[key] = true
					names = append(names, i.IngredientName)
				}
			}
		}
	}
	return names
}

// UniqueToolNames collects the distinct tool names across all steps of all
// recipes as a flat pool: primary tool names and alternative names
// together, in order of first appearance.
func UniqueToolNames(recipes []models.InitialRecipe) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}
	for _, r := range recipes {
		for _, s := range r.Steps {
			for _, t := range s.Tools {
				add(t.ToolName)
				for _, alt := range t.AlternativeTools {
					add(alt)
				}
			}
		}
	}
	return names
}
