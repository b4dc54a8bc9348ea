package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Transcriber invokes a speech-to-text model over an audio track,
// producing timestamped segments.
type Transcriber struct {
	client    *openai.Client
	modelName string
	limiter   *rate.Limiter
	metrics   *metrics.Collector
}

// NewTranscriber creates a Whisper transcriber from configuration.
func NewTranscriber(cfg config.Config) (*Transcriber, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	return &Transcriber{
		client:    openai.NewClient(cfg.OpenAIAPIKey),
		modelName: cfg.TranscriptionModel,
		limiter:   newLimiter(cfg.ModelRateLimit),
	}, nil
}

// SetMetrics attaches a collector recording transcription timings.
func (t *Transcriber) SetMetrics(c *metrics.Collector) {
	t.metrics = c
}

// Transcribe converts an audio file into full text plus timestamped
// segments with whole-second boundaries.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, []models.TimestampedSegment, error) {
	if err := waitLimiter(ctx, t.limiter); err != nil {
		return "", nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.modelName,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if t.metrics != nil {
		t.metrics.RecordTiming(metrics.OpTranscription, time.Since(start))
	}
	if err != nil {
		return "", nil, wrapFatalError(fmt.Errorf("transcribe: %w", err))
	}

	segments := make([]models.TimestampedSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, models.TimestampedSegment{
			Text:        s.Text,
			StartSecond: int(math.Round(float64(s.Start))),
			EndSecond:   int(math.Round(float64(s.End))),
		})
	}
	return resp.Text, segments, nil
}
