// Package cli provides the command-line interface for relish.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/db"
	"github.com/gtumedei/relish-recipe-dt/internal/llm"
	"github.com/gtumedei/relish-recipe-dt/internal/media"
	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
	"github.com/gtumedei/relish-recipe-dt/internal/recipe"
	"github.com/gtumedei/relish-recipe-dt/internal/resolve"
	"github.com/gtumedei/relish-recipe-dt/internal/source"
	"log/slog"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and db client
	cfg       config.Config
	logger    *slog.Logger
	logClose  func() error
	dbClient  *db.Client
	collector *metrics.Collector

	// Lazy-initialized model components
	embedder    *llm.Embedder
	model       *llm.Model
	visionModel *llm.Model
	transcriber *llm.Transcriber
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "relish",
	Short: "Food video ingestion and recipe extraction",
	Long: `Relish discovers food content videos, scores how likely each one is to
contain a full recipe, and runs the promising ones through a multimodal
extraction pipeline: captions, audio transcription and frame descriptions
are fused into a narrative, a structured recipe is extracted from it, and
every ingredient, tool and dish is resolved to a canonical database entity.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, logClose = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		collector = metrics.NewCollector()

		ctx := context.Background()
		dbCfg := db.Config{
			URL:            cfg.SurrealDBURL,
			Namespace:      cfg.SurrealDBNamespace,
			Database:       cfg.SurrealDBDatabase,
			Username:       cfg.SurrealDBUser,
			Password:       cfg.SurrealDBPass,
			AuthLevel:      cfg.SurrealDBAuthLevel,
			EmbedDimension: cfg.EmbedDimension,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		dbClient.SetMetrics(collector)

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logClose != nil {
			_ = logClose()
		}
	},
}

// initModels creates the model components on first use. Commands that
// never touch a model API skip the API-key requirement entirely.
func initModels() error {
	if model != nil {
		return nil
	}
	var err error
	if embedder, err = llm.NewEmbedder(cfg); err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	if model, err = llm.NewModel(cfg); err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	if visionModel, err = llm.NewVisionModel(cfg); err != nil {
		return fmt.Errorf("init vision model: %w", err)
	}
	if transcriber, err = llm.NewTranscriber(cfg); err != nil {
		return fmt.Errorf("init transcriber: %w", err)
	}
	embedder.SetMetrics(collector)
	model.SetMetrics(collector)
	visionModel.SetMetrics(collector)
	transcriber.SetMetrics(collector)
	return nil
}

// getResolver builds the entity resolver with lazy model initialization.
func getResolver() (*resolve.Resolver, error) {
	if err := initModels(); err != nil {
		return nil, err
	}
	return resolve.New(dbClient, embedder, model, logger).WithCallTimeout(cfg.ModelCallTimeout), nil
}

// getPipeline wires the full ingestion pipeline.
func getPipeline(ctx context.Context) (*source.Pipeline, error) {
	if err := initModels(); err != nil {
		return nil, err
	}

	search, err := source.NewYouTube(ctx, cfg.YouTubeAPIKey, logger)
	if err != nil {
		return nil, err
	}

	tools := media.NewToolchain(logger, collector)
	scorer := recipe.NewScorer(model)
	extractor := recipe.NewExtractor(model, logger)
	resolver := resolve.New(dbClient, embedder, model, logger).WithCallTimeout(cfg.ModelCallTimeout)
	processor := source.NewProcessor(cfg, tools, visionModel, model, transcriber, extractor, logger)

	return source.NewPipeline(cfg, search, scorer, processor, resolver, dbClient, logger), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(wipeCmd)
}
