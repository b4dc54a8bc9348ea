package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
)

// Toolchain invokes the external media tools with injected logging and
// optional metrics.
type Toolchain struct {
	run     runner
	log     *slog.Logger
	metrics *metrics.Collector
}

// NewToolchain creates a toolchain using the real process runner.
func NewToolchain(log *slog.Logger, collector *metrics.Collector) *Toolchain {
	if log == nil {
		log = slog.Default()
	}
	return &Toolchain{run: execRunner{}, log: log, metrics: collector}
}

// WithRunner substitutes the process runner (for tests).
func (t *Toolchain) WithRunner(r runner) *Toolchain {
	t.run = r
	return t
}

func (t *Toolchain) record(op string, start time.Time) {
	if t.metrics != nil {
		t.metrics.RecordTiming(op, time.Since(start))
	}
}

// ffprobeOutput matches the JSON emitted by ffprobe -of json.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the video duration in seconds.
func (t *Toolchain) Duration(ctx context.Context, videoPath string) (float64, error) {
	start := time.Now()
	stdout, _, err := t.run.Run(ctx, "ffprobe",
		"-show_entries", "format=duration",
		"-of", "json",
		"-v", "error",
		videoPath,
	)
	t.record(metrics.OpCommand, start)
	if err != nil {
		return 0, fmt.Errorf("probe duration: %w", err)
	}

	var probed ffprobeOutput
	if err := json.Unmarshal([]byte(stdout), &probed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var duration float64
	if _, err := fmt.Sscanf(probed.Format.Duration, "%f", &duration); err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
	}
	return duration, nil
}

// ExtractAudio extracts the audio track from a video into audioPath.
func (t *Toolchain) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	start := time.Now()
	_, _, err := t.run.Run(ctx, "ffmpeg",
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		audioPath,
	)
	t.record(metrics.OpCommand, start)
	if err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// FrameFilter builds the ffmpeg video filter extracting fps frames per
// second, downscaled so the longer edge is at most maxEdge while
// preserving aspect ratio. Images smaller than the cap are left alone.
func FrameFilter(fps, maxEdge int) string {
	return fmt.Sprintf("fps=%d,scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease", fps, maxEdge, maxEdge)
}

// ExtractFrames extracts periodic frame images from a video into outDir
// as frame-%04d.jpeg files.
func (t *Toolchain) ExtractFrames(ctx context.Context, videoPath, outDir string, fps, maxEdge int) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}

	start := time.Now()
	_, _, err := t.run.Run(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", FrameFilter(fps, maxEdge),
		filepath.Join(outDir, "frame-%04d.jpeg"),
	)
	t.record(metrics.OpCommand, start)
	if err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	return nil
}

// ListFrames returns the extracted frame file names in chronological
// order. Frame numbering is zero-padded so lexical order is time order.
func ListFrames(framesDir string) ([]string, error) {
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}

	var frames []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "frame-") {
			frames = append(frames, e.Name())
		}
	}
	sort.Strings(frames)
	return frames, nil
}
