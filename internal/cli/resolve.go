package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtumedei/relish-recipe-dt/internal/db"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <collection> <name>",
	Short: "Resolve a free-text name to a canonical entity",
	Long: `Finds the canonical entity for an ingredient, tool or dish name using
embedding similarity plus a model same/different decision, creating a new
entity when nothing matches closely enough.

Examples:
  relish resolve ingredient "pomodori"
  relish resolve tool "whisk"
  relish resolve dish "carbonara"`,
	Args: cobra.ExactArgs(2),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	col := db.Collection(args[0])
	name := args[1]

	resolver, err := getResolver()
	if err != nil {
		return err
	}

	entity, err := resolver.FindOrCreate(ctx, col, name, nil)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	id, err := models.RecordIDString(entity.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s:%s  %s\n", col, id, entity.Name)
	return nil
}
