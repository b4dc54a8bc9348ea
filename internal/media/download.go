package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gtumedei/relish-recipe-dt/internal/metrics"
)

// ErrNoCaptions indicates the video has no caption track. This is a
// recoverable condition, not a failure.
var ErrNoCaptions = errors.New("no captions available")

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".mov":  true,
	".avi":  true,
}

// DownloadVideo downloads a video into outDir and returns the path of the
// downloaded file. The downloader picks the container format, so the file
// is discovered by extension scan after the download completes.
func (t *Toolchain) DownloadVideo(ctx context.Context, url, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}

	start := time.Now()
	// 480p is plenty for frame description and keeps downloads small
	_, _, err := t.run.Run(ctx, "yt-dlp",
		"-f", "bestvideo[height<=480]+bestaudio/best[height<=480]",
		url,
		"-o", filepath.Join(outDir, "video.%(ext)s"),
	)
	t.record(metrics.OpDownload, start)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	path, err := findByExtension(outDir, videoExtensions)
	if err != nil {
		return "", fmt.Errorf("locate downloaded video: %w", err)
	}
	return path, nil
}

// DownloadCaptions fetches the caption track for a video, preferring
// manual subtitles and falling back to auto-generated ones. Returns
// ErrNoCaptions when the video has no track in the requested languages.
func (t *Toolchain) DownloadCaptions(ctx context.Context, url, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create captions dir: %w", err)
	}

	start := time.Now()
	_, _, err := t.run.Run(ctx, "yt-dlp",
		"--write-auto-sub",
		"--write-sub",
		"--sub-lang", "en,original",
		"--skip-download",
		"-P", outDir,
		url,
	)
	t.record(metrics.OpDownload, start)
	if err != nil {
		return "", fmt.Errorf("download captions: %w", err)
	}

	path, err := findByExtension(outDir, map[string]bool{".vtt": true})
	if err != nil {
		return "", ErrNoCaptions
	}
	return path, nil
}

// findByExtension returns the first file in dir whose extension is in the
// given set.
func findByExtension(dir string, extensions map[string]bool) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}
