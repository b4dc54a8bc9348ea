package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gtumedei/relish-recipe-dt/internal/captions"
	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/llm"
	"github.com/gtumedei/relish-recipe-dt/internal/media"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

const cookingAppendix = `
Cooking video specialization:
When generating the description, make sure to include all relevant cooking-related information that appears in the video. This includes:
- Cooking techniques and methods
- Ingredients and their quantities
- Timings, durations, and temperatures
- Tools, utensils, and equipment used
- Key visual cues related to food preparation, presentation, or changes in the dish
`

type mediaTools interface {
	DownloadVideo(ctx context.Context, url, outDir string) (string, error)
	DownloadCaptions(ctx context.Context, url, outDir string) (string, error)
	Duration(ctx context.Context, videoPath string) (float64, error)
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	ExtractFrames(ctx context.Context, videoPath, outDir string, fps, maxEdge int) error
}

type frameDescriber interface {
	DescribeFrames(ctx context.Context, frames []llm.Frame) ([]models.TimestampedSegment, error)
}

type narrator interface {
	FuseNarrative(ctx context.Context, input llm.FuseInput) (string, error)
}

type audioTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, []models.TimestampedSegment, error)
}

type recipeExtractor interface {
	Extract(ctx context.Context, text string) (*models.ExtractionResult, error)
}

// Processor runs the per-video stages: download, media extraction, frame
// description, transcription, narrative fusion and recipe extraction.
// Stages run strictly in order; each stage's output feeds the next.
type Processor struct {
	cfg         config.Config
	tools       mediaTools
	vision      frameDescriber
	fuser       narrator
	transcriber audioTranscriber
	extractor   recipeExtractor
	log         *slog.Logger
}

// NewProcessor wires the per-video worker.
func NewProcessor(cfg config.Config, tools mediaTools, vision frameDescriber, fuser narrator, transcriber audioTranscriber, extractor recipeExtractor, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		cfg:         cfg,
		tools:       tools,
		vision:      vision,
		fuser:       fuser,
		transcriber: transcriber,
		extractor:   extractor,
		log:         log,
	}
}

// Process takes one video from URL (or bare ID) to extracted recipes,
// writing intermediate artifacts into <workdir>/<videoID>/ along the way.
func (p *Processor) Process(ctx context.Context, videoURLOrID string) (*models.ExtractionResult, error) {
	videoURL, videoID := VideoURL(videoURLOrID)
	log := p.log.With("videoId", videoID)

	videoDir := filepath.Join(p.cfg.WorkDir, videoID)
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create video dir: %w", err)
	}

	log.Info("downloading video")
	videoPath, err := p.download(ctx, videoURL, videoDir)
	if err != nil {
		return nil, err
	}
	// Captions are optional input. Any fetch failure downgrades to the
	// no-captions path instead of failing the video.
	captionsPath, err := p.downloadCaptions(ctx, videoURL, videoDir)
	if err != nil {
		var cmdErr *media.CommandError
		switch {
		case errors.Is(err, media.ErrNoCaptions):
			log.Warn("captions not available")
		case errors.As(err, &cmdErr):
			log.Warn("caption download failed", "error", err, "stdout", cmdErr.Stdout, "stderr", cmdErr.Stderr)
		default:
			log.Warn("caption download failed", "error", err)
		}
		captionsPath = ""
	}

	log.Info("getting video metadata")
	duration, err := p.duration(ctx, videoPath)
	if err != nil {
		log.Warn("failed to read video duration", "error", err)
		duration = 0
	}

	log.Info("extracting frames", "approxFrames", int(duration)*p.cfg.FrameRate)
	framesDir := filepath.Join(videoDir, "frames")
	if err := p.extractFrames(ctx, videoPath, framesDir); err != nil {
		return nil, err
	}
	frames, err := loadFrames(framesDir)
	if err != nil {
		return nil, err
	}

	log.Info("describing frames", "frames", len(frames))
	framesDescription, err := p.describeFrames(ctx, frames)
	if err != nil {
		return nil, err
	}
	framesJSON, err := segmentsJSON(framesDescription)
	if err != nil {
		return nil, err
	}
	if err := writeText(videoDir, artifactFramesDescription, framesJSON); err != nil {
		return nil, err
	}

	captionsJSON := ""
	if captionsPath != "" {
		raw, err := os.ReadFile(captionsPath)
		if err != nil {
			return nil, fmt.Errorf("read captions: %w", err)
		}
		captionsJSON, err = segmentsJSON(captions.Parse(string(raw)))
		if err != nil {
			return nil, err
		}
		if err := writeText(videoDir, artifactCaptions, captionsJSON); err != nil {
			return nil, err
		}
	}

	log.Info("extracting audio track")
	audioPath := filepath.Join(videoDir, "audio.mp3")
	if err := p.extractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}

	log.Info("transcribing audio track")
	_, transcription, err := p.transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	transcriptionJSON, err := segmentsJSON(transcription)
	if err != nil {
		return nil, err
	}
	if err := writeText(videoDir, artifactTranscription, transcriptionJSON); err != nil {
		return nil, err
	}

	log.Info("putting it all together")
	description, err := p.fuse(ctx, llm.FuseInput{
		Captions:          captionsJSON,
		Transcription:     transcriptionJSON,
		FramesDescription: framesJSON,
		Appendix:          cookingAppendix,
	})
	if err != nil {
		return nil, err
	}
	if err := writeText(videoDir, artifactDescription, description); err != nil {
		return nil, err
	}

	log.Info("extracting formatted recipe")
	result, err := p.extract(ctx, description)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(videoDir, artifactRecipe, result); err != nil {
		return nil, err
	}
	log.Info("recipes extracted", "recipes", len(result.Result), "confidence", result.Confidence)
	return result, nil
}

func (p *Processor) download(ctx context.Context, url, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()
	return p.tools.DownloadVideo(ctx, url, dir)
}

func (p *Processor) downloadCaptions(ctx context.Context, url, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()
	return p.tools.DownloadCaptions(ctx, url, dir)
}

func (p *Processor) duration(ctx context.Context, videoPath string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProcessTimeout)
	defer cancel()
	return p.tools.Duration(ctx, videoPath)
}

func (p *Processor) extractFrames(ctx context.Context, videoPath, outDir string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProcessTimeout)
	defer cancel()
	return p.tools.ExtractFrames(ctx, videoPath, outDir, p.cfg.FrameRate, p.cfg.MaxFrameEdge)
}

func (p *Processor) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProcessTimeout)
	defer cancel()
	return p.tools.ExtractAudio(ctx, videoPath, audioPath)
}

func (p *Processor) describeFrames(ctx context.Context, frames []llm.Frame) ([]models.TimestampedSegment, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ModelCallTimeout)
	defer cancel()
	return p.vision.DescribeFrames(ctx, frames)
}

func (p *Processor) transcribe(ctx context.Context, audioPath string) (string, []models.TimestampedSegment, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ModelCallTimeout)
	defer cancel()
	return p.transcriber.Transcribe(ctx, audioPath)
}

func (p *Processor) fuse(ctx context.Context, input llm.FuseInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ModelCallTimeout)
	defer cancel()
	return p.fuser.FuseNarrative(ctx, input)
}

func (p *Processor) extract(ctx context.Context, description string) (*models.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ModelCallTimeout)
	defer cancel()
	return p.extractor.Extract(ctx, description)
}

// loadFrames reads the extracted frame images in order, labeled by file
// name so the vision prompt can reference their one-second cadence.
func loadFrames(framesDir string) ([]llm.Frame, error) {
	names, err := media.ListFrames(framesDir)
	if err != nil {
		return nil, err
	}
	frames := make([]llm.Frame, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(framesDir, name))
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		frames = append(frames, llm.Frame{Label: name, Image: data})
	}
	return frames, nil
}

func segmentsJSON(segments []models.TimestampedSegment) (string, error) {
	if segments == nil {
		segments = []models.TimestampedSegment{}
	}
	data, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal segments: %w", err)
	}
	return string(data), nil
}
