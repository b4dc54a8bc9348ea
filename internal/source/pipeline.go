package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/llm"
	"github.com/gtumedei/relish-recipe-dt/internal/media"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
	"github.com/gtumedei/relish-recipe-dt/internal/recipe"
)

type searcher interface {
	Search(ctx context.Context, params SearchParams) (*models.SearchPage, error)
}

type likelihoodScorer interface {
	Score(ctx context.Context, metadata string) (int, error)
}

type videoProcessor interface {
	Process(ctx context.Context, videoURLOrID string) (*models.ExtractionResult, error)
}

type entityResolver interface {
	PopulateRecipes(ctx context.Context, recipes []models.InitialRecipe, videoID string, confidence float64) ([]models.FinalRecipeRecord, error)
}

type recipeStore interface {
	CreateRecipe(ctx context.Context, record models.FinalRecipeRecord) (string, error)
}

// Pipeline orchestrates a full ingestion run: discover, score, filter,
// then process the selected videos one at a time.
type Pipeline struct {
	cfg       config.Config
	search    searcher
	scorer    likelihoodScorer
	processor videoProcessor
	resolver  entityResolver
	store     recipeStore
	log       *slog.Logger
}

// NewPipeline wires the batch orchestrator.
func NewPipeline(cfg config.Config, search searcher, scorer likelihoodScorer, processor videoProcessor, resolver entityResolver, store recipeStore, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		search:    search,
		scorer:    scorer,
		processor: processor,
		resolver:  resolver,
		store:     store,
		log:       log,
	}
}

// RunResult summarizes one ingestion run.
type RunResult struct {
	RunID     string   `json:"runId"`
	Found     int      `json:"found"`
	Total     int64    `json:"total"`
	Selected  int      `json:"selected"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	RecipeIDs []string `json:"recipeIds"`
}

// Run executes the full pipeline for one search. A single video's failure
// is logged and skipped; fatal model API errors abort the whole run.
func (p *Pipeline) Run(ctx context.Context, params SearchParams) (*RunResult, error) {
	runID := uuid.NewString()
	log := p.log.With("runId", runID)

	runDir := filepath.Join(p.cfg.WorkDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	page, err := p.search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	log.Info("food data fetched", "returned", len(page.Items), "total", page.TotalResults)
	if err := writeJSON(runDir, artifactSearchResults, page); err != nil {
		return nil, err
	}

	log.Info("evaluating recipe likelihood for each video")
	scored, err := p.scoreAll(ctx, page.Items)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(runDir, artifactScoredResults, scored); err != nil {
		return nil, err
	}

	log.Info("discarding low-likelihood videos", "threshold", p.cfg.LikelihoodThreshold)
	selected := recipe.FilterByScore(scored, p.cfg.LikelihoodThreshold)

	result := &RunResult{
		RunID:     runID,
		Found:     len(page.Items),
		Total:     page.TotalResults,
		Selected:  len(selected),
		RecipeIDs: make([]string, 0),
	}

	log.Info("downloading selected videos for further processing", "selected", len(selected))
	for _, item := range selected {
		ids, err := p.ProcessVideo(ctx, item.Metadata.VideoID)
		if err != nil {
			if errors.Is(err, llm.ErrFatalAPI) || ctx.Err() != nil {
				return result, err
			}
			result.Failed++
			var cmdErr *media.CommandError
			if errors.As(err, &cmdErr) {
				log.Error("video pipeline failed",
					"videoId", item.Metadata.VideoID,
					"error", err,
					"stdout", cmdErr.Stdout,
					"stderr", cmdErr.Stderr)
			} else {
				log.Error("video pipeline failed", "videoId", item.Metadata.VideoID, "error", err)
			}
			continue
		}
		result.Processed++
		result.RecipeIDs = append(result.RecipeIDs, ids...)
	}
	return result, nil
}

// ProcessVideo runs one video end to end and persists its recipes,
// returning the created record IDs.
func (p *Pipeline) ProcessVideo(ctx context.Context, videoURLOrID string) ([]string, error) {
	_, videoID := VideoURL(videoURLOrID)

	extraction, err := p.processor.Process(ctx, videoURLOrID)
	if err != nil {
		return nil, err
	}
	if len(extraction.Result) == 0 {
		p.log.Warn("no recipes extracted", "videoId", videoID)
		return nil, nil
	}

	records, err := p.resolver.PopulateRecipes(ctx, extraction.Result, videoID, extraction.Confidence)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		id, err := p.store.CreateRecipe(ctx, record)
		if err != nil {
			return ids, fmt.Errorf("persist recipe %q: %w", record.DishName, err)
		}
		p.log.Info("recipe persisted", "videoId", videoID, "recipeId", id, "dish", record.DishName)
		ids = append(ids, id)
	}
	return ids, nil
}

// scoreCtx bounds one scoring call. Zero timeout leaves the caller's
// context in charge.
func (p *Pipeline) scoreCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.ModelCallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.cfg.ModelCallTimeout)
}

// scoreAll scores every search result concurrently. A failed score leaves
// the item with a nil score and logs the failure; only fatal API errors
// propagate.
func (p *Pipeline) scoreAll(ctx context.Context, items []models.SearchResultItem) ([]models.ScoredItem, error) {
	scored := make([]models.ScoredItem, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.SearchResultItem) {
			defer wg.Done()
			scored[i] = models.ScoredItem{Metadata: item}
			metadata, err := json.MarshalIndent(item, "", "  ")
			if err != nil {
				errs[i] = err
				return
			}
			sctx, cancel := p.scoreCtx(ctx)
			score, err := p.scorer.Score(sctx, string(metadata))
			cancel()
			if err != nil {
				errs[i] = err
				return
			}
			scored[i].Score = &score
		}(i, item)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			p.log.Info("recipe likelihood", "videoId", items[i].VideoID, "score", *scored[i].Score)
			continue
		}
		if errors.Is(err, llm.ErrFatalAPI) {
			return nil, err
		}
		p.log.Error("failed to compute recipe likelihood", "videoId", items[i].VideoID, "error", err)
	}
	return scored, nil
}
