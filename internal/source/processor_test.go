package source

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtumedei/relish-recipe-dt/internal/config"
	"github.com/gtumedei/relish-recipe-dt/internal/llm"
	"github.com/gtumedei/relish-recipe-dt/internal/media"
	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

type fakeTools struct {
	captionsVTT string // empty means no caption track
	captionsErr error  // overrides the default no-captions error
	downloadErr error
}

func (f *fakeTools) DownloadVideo(ctx context.Context, url, outDir string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	path := filepath.Join(outDir, "video.mp4")
	return path, os.WriteFile(path, []byte("video"), 0o644)
}

func (f *fakeTools) DownloadCaptions(ctx context.Context, url, outDir string) (string, error) {
	if f.captionsErr != nil {
		return "", f.captionsErr
	}
	if f.captionsVTT == "" {
		return "", media.ErrNoCaptions
	}
	path := filepath.Join(outDir, "video.en.vtt")
	return path, os.WriteFile(path, []byte(f.captionsVTT), 0o644)
}

func (f *fakeTools) Duration(ctx context.Context, videoPath string) (float64, error) {
	return 3, nil
}

func (f *fakeTools) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	return os.WriteFile(audioPath, []byte("audio"), 0o644)
}

func (f *fakeTools) ExtractFrames(ctx context.Context, videoPath, outDir string, fps, maxEdge int) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, name := range []string{"frame-0001.jpeg", "frame-0002.jpeg"} {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte("jpeg"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeVision struct{}

func (fakeVision) DescribeFrames(ctx context.Context, frames []llm.Frame) ([]models.TimestampedSegment, error) {
	return []models.TimestampedSegment{{Text: "a pan on a stove", StartSecond: 0, EndSecond: 2}}, nil
}

type fakeNarrator struct {
	lastInput llm.FuseInput
}

func (f *fakeNarrator) FuseNarrative(ctx context.Context, input llm.FuseInput) (string, error) {
	f.lastInput = input
	return "a narrated cooking video", nil
}

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, []models.TimestampedSegment, error) {
	return "hello", []models.TimestampedSegment{{Text: "hello", StartSecond: 0, EndSecond: 1}}, nil
}

type fakeExtractor struct {
	result *models.ExtractionResult
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*models.ExtractionResult, error) {
	return f.result, f.err
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.WorkDir = t.TempDir()
	return cfg
}

func simpleExtraction() *models.ExtractionResult {
	return &models.ExtractionResult{
		Result: []models.InitialRecipe{
			{Dish: "omelette", Steps: []models.Step{{Description: "beat the eggs"}}},
		},
		Confidence: 0.8,
	}
}

func TestProcessor_Process_WritesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	tools := &fakeTools{captionsVTT: "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nbeat the eggs\n"}
	narrator := &fakeNarrator{}

	p := NewProcessor(cfg, tools, fakeVision{}, narrator, fakeTranscriber{}, &fakeExtractor{result: simpleExtraction()}, nil)
	result, err := p.Process(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, result.Result, 1)

	videoDir := filepath.Join(cfg.WorkDir, "abc123")
	for _, name := range []string{artifactFramesDescription, artifactCaptions, artifactTranscription, artifactDescription, artifactRecipe} {
		_, err := os.Stat(filepath.Join(videoDir, name))
		assert.NoError(t, err, "artifact %s should exist", name)
	}

	assert.Contains(t, narrator.lastInput.Captions, "beat the eggs")
	assert.Contains(t, narrator.lastInput.Appendix, "Cooking video specialization")
}

func TestProcessor_Process_NoCaptions(t *testing.T) {
	cfg := testConfig(t)
	sink := config.NewMemoryHandler()
	narrator := &fakeNarrator{}

	p := NewProcessor(cfg, &fakeTools{}, fakeVision{}, narrator, fakeTranscriber{}, &fakeExtractor{result: simpleExtraction()}, slog.New(sink))
	_, err := p.Process(context.Background(), "abc123")
	require.NoError(t, err, "pipeline must still succeed without captions")

	assert.True(t, sink.HasMessage(slog.LevelWarn, "captions not available"), "missing captions warning")
	assert.Empty(t, narrator.lastInput.Captions)
	assert.NotEmpty(t, narrator.lastInput.Transcription)
	assert.NotEmpty(t, narrator.lastInput.FramesDescription)

	_, err = os.Stat(filepath.Join(cfg.WorkDir, "abc123", artifactCaptions))
	assert.True(t, os.IsNotExist(err), "no captions artifact should be written")
}

func TestProcessor_Process_CaptionDownloadFailure(t *testing.T) {
	cfg := testConfig(t)
	sink := config.NewMemoryHandler()
	narrator := &fakeNarrator{}
	cmdErr := &media.CommandError{Cmd: "yt-dlp", ExitCode: 1, Stderr: "subtitle endpoint 500"}

	p := NewProcessor(cfg, &fakeTools{captionsErr: cmdErr}, fakeVision{}, narrator, fakeTranscriber{}, &fakeExtractor{result: simpleExtraction()}, slog.New(sink))
	_, err := p.Process(context.Background(), "abc123")
	require.NoError(t, err, "caption fetch failures must not fail the video")

	assert.True(t, sink.HasMessage(slog.LevelWarn, "caption download failed"), "caption failure warning")
	assert.Empty(t, narrator.lastInput.Captions)
	assert.NotEmpty(t, narrator.lastInput.Transcription)

	_, err = os.Stat(filepath.Join(cfg.WorkDir, "abc123", artifactCaptions))
	assert.True(t, os.IsNotExist(err), "no captions artifact should be written")
}

func TestProcessor_Process_DownloadFailure(t *testing.T) {
	cfg := testConfig(t)
	cmdErr := &media.CommandError{Cmd: "yt-dlp", ExitCode: 1, Stderr: "video unavailable"}
	tools := &fakeTools{downloadErr: cmdErr}

	p := NewProcessor(cfg, tools, fakeVision{}, &fakeNarrator{}, fakeTranscriber{}, &fakeExtractor{result: simpleExtraction()}, nil)
	_, err := p.Process(context.Background(), "abc123")
	require.Error(t, err)

	var got *media.CommandError
	require.ErrorAs(t, err, &got, "command diagnostics must survive wrapping")
	assert.Equal(t, "video unavailable", got.Stderr)
}

func TestProcessor_Process_ExtractionFailure(t *testing.T) {
	cfg := testConfig(t)
	p := NewProcessor(cfg, &fakeTools{}, fakeVision{}, &fakeNarrator{}, fakeTranscriber{}, &fakeExtractor{err: errors.New("malformed response")}, nil)

	_, err := p.Process(context.Background(), "abc123")
	require.Error(t, err)
}

func TestVideoURL(t *testing.T) {
	tests := []struct {
		in      string
		wantURL string
		wantID  string
	}{
		{"abc123", "https://youtube.com/watch?v=abc123", "abc123"},
		{"https://youtube.com/watch?v=abc123", "https://youtube.com/watch?v=abc123", "abc123"},
		{"https://www.youtube.com/watch?v=xyz&t=10", "https://www.youtube.com/watch?v=xyz&t=10", "xyz"},
	}
	for _, tt := range tests {
		gotURL, gotID := VideoURL(tt.in)
		if gotURL != tt.wantURL || gotID != tt.wantID {
			t.Errorf("VideoURL(%q) = (%q, %q), want (%q, %q)", tt.in, gotURL, gotID, tt.wantURL, tt.wantID)
		}
	}
}
