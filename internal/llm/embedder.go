package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Embedder wraps langchaingo embeddings with dimension validation. The
// pipeline depends on a fixed dimensionality because the vector indexes
// are sized at schema time.
type Embedder struct {
	model     embeddings.Embedder
	dimension int
	modelName string
	limiter   *rate.Limiter
	metrics   *metrics.Collector
}

// NewEmbedder creates an embedder based on configuration.
func NewEmbedder(cfg config.Config) (*Embedder, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithEmbeddingModel(cfg.EmbedModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	model, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}

	dimension := cfg.EmbedDimension
	if dimension <= 0 {
		dimension = 1536
	}

	return &Embedder{
		model:     model,
		dimension: dimension,
		modelName: cfg.EmbedModel,
		limiter:   newLimiter(cfg.ModelRateLimit),
	}, nil
}

// SetMetrics attaches a collector recording embedding timings.
func (e *Embedder) SetMetrics(c *metrics.Collector) {
	e.metrics = c
}

// Embed generates an embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := waitLimiter(ctx, e.limiter); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	textLen := len(text)
	slog.Debug("embedding text", "model", e.modelName, "text_len", textLen)

	start := time.Now()
	vectors, err := e.model.EmbedDocuments(ctx, []string{text})
	duration := time.Since(start)
	if e.metrics != nil {
		e.metrics.RecordTiming(metrics.OpEmbedding, duration)
	}

	if err != nil {
		slog.Warn("embedding failed", "model", e.modelName, "text_len", textLen, "duration_ms", duration.Milliseconds(), "error", err)
		return nil, wrapFatalError(fmt.Errorf("embed: %w", err))
	}

	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := vectors[0]
	if len(embedding) != e.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d", len(embedding), e.dimension)
	}

	return embedding, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}

// Dimension returns the expected embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}
