package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video <url-or-id>",
	Short: "Extract and save recipes from a single video",
	Long: `Runs one video through the extraction pipeline, skipping discovery and
likelihood scoring. Accepts either a full watch URL or a bare video ID.

Examples:
  relish video dQw4w9WgXcQ
  relish video "https://youtube.com/watch?v=dQw4w9WgXcQ"`,
	Args: cobra.ExactArgs(1),
	RunE: runVideo,
}

func runVideo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	pipeline, err := getPipeline(ctx)
	if err != nil {
		return err
	}

	ids, err := pipeline.ProcessVideo(ctx, args[0])
	if err != nil {
		return fmt.Errorf("process video: %w", err)
	}
	if len(ids) == 0 {
		fmt.Println("No recipes extracted.")
		return nil
	}

	fmt.Printf("Saved %d recipes:\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  recipe:%s\n", id)
	}
	logMetrics()
	return nil
}
