package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact filenames written next to each processed video.
const (
	artifactSearchResults     = "youtube-results.json"
	artifactScoredResults     = "youtube-scored-results.json"
	artifactFramesDescription = "frames-description.json"
	artifactTranscription     = "transcription.json"
	artifactCaptions          = "captions.json"
	artifactDescription       = "description.txt"
	artifactRecipe            = "recipe.json"
)

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeText(dir, name, text string) error {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
