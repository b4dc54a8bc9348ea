// Package llm provides language model, vision, embedding and
// speech-to-text services using langchaingo and the OpenAI API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	limiter   *rate.Limiter
	metrics   *metrics.Collector
}

// NewModel creates the text-generation model from configuration.
func NewModel(cfg config.Config) (*Model, error) {
	return newModel(cfg, cfg.LLMModel)
}

// NewVisionModel creates the vision-capable model from configuration.
func NewVisionModel(cfg config.Config) (*Model, error) {
	return newModel(cfg, cfg.VisionModel)
}

func newModel(cfg config.Config, modelName string) (*Model, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	model, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}

	return &Model{
		llm:       model,
		modelName: modelName,
		limiter:   newLimiter(cfg.ModelRateLimit),
		metrics:   nil,
	}, nil
}

// SetMetrics attaches a collector recording call timings and token usage.
func (m *Model) SetMetrics(c *metrics.Collector) {
	m.metrics = c
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	return m.generate(ctx, messages)
}

// GenerateJSON generates a schema-constrained structured object: the model
// is forced into JSON output mode and the response is unmarshalled into
// out. A response that fails unmarshalling is returned as an error with no
// retry.
func (m *Model) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	text, err := m.generate(ctx, messages, llms.WithJSONMode())
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripFences(text)), out); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

// generate runs a content generation call with rate limiting, timing and
// token accounting.
func (m *Model) generate(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	if err := waitLimiter(ctx, m.limiter); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", wrapFatalError(fmt.Errorf("generate: %w", err))
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	choice := response.Choices[0]

	if m.metrics != nil {
		m.metrics.RecordLLMUsage(metrics.OpLLMGenerate, time.Since(start),
			genInfoInt(choice.GenerationInfo, "PromptTokens"),
			genInfoInt(choice.GenerationInfo, "CompletionTokens"),
		)
	}

	return choice.Content, nil
}

func genInfoInt(info map[string]any, key string) int64 {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// StripFences removes a wrapping Markdown code fence from model output.
// Models occasionally fence JSON even when asked not to.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. ```json)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
