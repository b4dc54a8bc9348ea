package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var wipeForce bool

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all recipes and canonical entities",
	Long:  `Deletes every recipe, ingredient, tool and dish record. The schema and indexes are kept.`,
	RunE:  runWipe,
}

func init() {
	wipeCmd.Flags().BoolVarP(&wipeForce, "force", "f", false, "skip confirmation")
}

func runWipe(cmd *cobra.Command, args []string) error {
	if !wipeForce {
		fmt.Print("This deletes all data. Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := dbClient.WipeData(context.Background()); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}
	fmt.Println("All data deleted.")
	return nil
}
