package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

const videoDescriptionPrompt = `
You are an expert media analyst and descriptive writer.
Your task is to produce a **detailed, coherent, and human-readable description** of a video based on three sources of timestamped JSON data:

- **Captions** (text displayed in the video)
- **Audio transcription** (spoken words and sound context)
- **Visual descriptions** (scenes, actions, camera movements, visual elements)

Each source is a JSON array with entries like:

[
  { "startSecond": number, "endSecond": number, "text": "string" }
]

The timestamps are in seconds. Different arrays may have slightly mismatched timing, but they refer to the same video.

Your objective is to:

1. Combine information from all three sources to create a **single, flowing narrative** of the video.
2. Maintain the **temporal sequence** so the narrative follows the video's timeline.
3. Merge overlapping or redundant information smoothly, integrating spoken dialogue, captions, sounds, and visual content.
4. Write in a **descriptive, narrative style** suitable for understanding the video without watching it.
5. Report **dialogue, actions, locations, transitions, and tone** in detail.
6. If information is missing in a segment, describe what can be inferred (if anything), but always note the absence.

Output format:

- Plain text (no JSON, no timestamps).
- Produce a single cohesive description of the video from beginning to end.
- Aim for clarity, vividness, readability, and detail.
`

// FuseInput carries the three textual sources of a video, each already
// serialized as JSON segment arrays. Captions may be empty when the video
// has no caption track. Appendix, when set, adds domain-specific
// instructions to the system prompt.
type FuseInput struct {
	Captions          string
	Transcription     string
	FramesDescription string
	Appendix          string
}

// FuseNarrative merges captions, transcription and frame description into
// one coherent narrative description of the video.
func (m *Model) FuseNarrative(ctx context.Context, input FuseInput) (string, error) {
	systemPrompt := videoDescriptionPrompt
	appendix := input.Appendix
	if input.Captions == "" {
		if appendix != "" {
			appendix += "\n"
		}
		appendix += "Captions are not available for this video; rely on the transcription and visual descriptions only."
	}
	if appendix != "" {
		systemPrompt += "\n\nAdditional instructions below.\n\n" + appendix
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman,
			"CAPTIONS",
			input.Captions,
			"TRANSCRIPTION",
			input.Transcription,
			"DESCRIPTION",
			input.FramesDescription,
		),
	}

	text, err := m.generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("fuse narrative: %w", err)
	}
	return text, nil
}
