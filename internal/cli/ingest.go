package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gtumedei/relish-recipe-dt/internal/source"
)

var (
	ingestQuery          string
	ingestMaxResults     int64
	ingestThreshold      int
	ingestOrder          string
	ingestAfter          string
	ingestBefore         string
	ingestLanguage       string
	ingestLocation       string
	ingestLocationRadius string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Discover food videos and extract recipes from the promising ones",
	Long: `Searches the platform for food content, scores each result's recipe
likelihood on a 1-5 scale, discards everything below the threshold, and
runs the surviving videos through the full extraction pipeline.

Examples:
  relish ingest
  relish ingest --query "pasta recipe" --max-results 25
  relish ingest --order date --published-after 2026-08-01T00:00:00Z
  relish ingest --location "45.46,9.18" --location-radius 100km`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestQuery, "query", "q", "", "search query (default from config)")
	ingestCmd.Flags().Int64VarP(&ingestMaxResults, "max-results", "n", 0, "max search results, 50 max (default from config)")
	ingestCmd.Flags().IntVarP(&ingestThreshold, "threshold", "t", 0, "recipe likelihood threshold 1-5 (default from config)")
	ingestCmd.Flags().StringVar(&ingestOrder, "order", "", "result order: date, rating, relevance, title or viewCount")
	ingestCmd.Flags().StringVar(&ingestAfter, "published-after", "", "only videos published after (RFC 3339)")
	ingestCmd.Flags().StringVar(&ingestBefore, "published-before", "", "only videos published before (RFC 3339)")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "", "relevance language (ISO 639-1)")
	ingestCmd.Flags().StringVar(&ingestLocation, "location", "", "published at the given coordinates, e.g. \"45.46,9.18\"")
	ingestCmd.Flags().StringVar(&ingestLocationRadius, "location-radius", "", "location radius, e.g. 100km (1000km max)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if ingestQuery != "" {
		cfg.SearchQuery = ingestQuery
	}
	if ingestMaxResults > 0 {
		cfg.MaxResults = ingestMaxResults
	}
	if ingestThreshold > 0 {
		cfg.LikelihoodThreshold = ingestThreshold
	}

	params := source.SearchParams{
		Query:             cfg.SearchQuery,
		MaxResults:        cfg.MaxResults,
		Order:             ingestOrder,
		RelevanceLanguage: ingestLanguage,
		Location:          ingestLocation,
		LocationRadius:    ingestLocationRadius,
	}
	if ingestAfter != "" {
		t, err := time.Parse(time.RFC3339, ingestAfter)
		if err != nil {
			return fmt.Errorf("invalid --published-after: %w", err)
		}
		params.PublishedAfter = t
	}
	if ingestBefore != "" {
		t, err := time.Parse(time.RFC3339, ingestBefore)
		if err != nil {
			return fmt.Errorf("invalid --published-before: %w", err)
		}
		params.PublishedBefore = t
	}

	pipeline, err := getPipeline(ctx)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, params)
	if result != nil {
		fmt.Printf("Run %s: %d found, %d selected, %d processed, %d failed, %d recipes saved\n",
			result.RunID, result.Found, result.Selected, result.Processed, result.Failed, len(result.RecipeIDs))
		for _, id := range result.RecipeIDs {
			fmt.Printf("  recipe:%s\n", id)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	logMetrics()
	return nil
}

// logMetrics emits a timing and token usage summary for the run.
func logMetrics() {
	if collector == nil || logger == nil {
		return
	}
	snap := collector.Snapshot()
	if s := snap.LLMGenerate; s != nil {
		attrs := []any{"calls", s.Count, "avgTimeMs", s.AvgTimeMs}
		if s.TotalInputTokens != nil {
			attrs = append(attrs, "inputTokens", *s.TotalInputTokens)
		}
		if s.TotalOutputTokens != nil {
			attrs = append(attrs, "outputTokens", *s.TotalOutputTokens)
		}
		logger.Info("model usage", attrs...)
	}
	if s := snap.Embedding; s != nil {
		logger.Info("embedding usage", "calls", s.Count, "avgTimeMs", s.AvgTimeMs)
	}
	if s := snap.Download; s != nil {
		logger.Info("download stats", "count", s.Count, "avgTimeMs", s.AvgTimeMs)
	}
}
