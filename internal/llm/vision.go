package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
	"github.com/tmc/langchaingo/llms"
)

const frameDescriptionPrompt = `
You are an expert video analysis model.
You will receive a list of still image frames extracted from a video, one frame per second, in chronological order.
Your task is to generate a structured JSON description of what happens in the video exactly as it appears, frame by frame, without reordering, guessing, or adding inferred context.

I will provide you with a sequence of image frames, each labeled with a timestamp in seconds (e.g., "frame-0001.jpeg", "frame-0002.jpeg", "frame-0003.jpeg", etc.).
Your goal is to describe the events in the video in a **structured, timestamped JSON array**.

Please follow these rules carefully:

1. Each JSON object represents a segment of time (can be a single second or a short range).
2. Each object must have:
   - ` + "`text`" + ` - a natural-language description of what happens in that time span.
   - ` + "`startSecond`" + ` - the starting timestamp (integer).
   - ` + "`endSecond`" + ` - the ending timestamp (integer).
3. Group consecutive frames together when the same action or scene continues.
4. Use concise, factual language - describe visible people, objects, motion, or scene changes.
5. Output **only valid JSON** - no extra commentary, no Markdown, no explanations. For example:

   [
     {
       "text": "A man sits at a desk typing on a laptop.",
       "startSecond": 0,
       "endSecond": 2
     },
     {
       "text": "He looks up and waves at someone entering the room.",
       "startSecond": 3,
       "endSecond": 5
     }
   ]

6. Process frames strictly in the order given and preserve that order. Never reorder, merge, or anticipate future events.
7. Only describe visible content that can be confirmed from the frames. Do not infer motivations, emotions, causes, or unseen actions. Describe only what can be visually confirmed in the frames.
`

// Frame is one labeled still image handed to the vision model.
type Frame struct {
	Label string
	Image []byte
}

// DescribeFrames asks the vision model for a timestamped account of an
// ordered sequence of frame images. The response must be a JSON array of
// segments with monotonic, non-overlapping timestamps; anything else is a
// fatal extraction error for the current item.
func (m *Model) DescribeFrames(ctx context.Context, frames []Frame) ([]models.TimestampedSegment, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to describe")
	}

	parts := make([]llms.ContentPart, 0, len(frames)*2)
	for _, frame := range frames {
		parts = append(parts,
			llms.TextPart(frame.Label),
			llms.BinaryPart("image/jpeg", frame.Image),
		)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, frameDescriptionPrompt),
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}

	text, err := m.generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("describe frames: %w", err)
	}

	var segments []models.TimestampedSegment
	if err := json.Unmarshal([]byte(StripFences(text)), &segments); err != nil {
		return nil, fmt.Errorf("parse frame description: %w", err)
	}
	if err := ValidateSegments(segments); err != nil {
		return nil, fmt.Errorf("frame description: %w", err)
	}
	return segments, nil
}

// ValidateSegments checks that segments are chronological and
// non-overlapping.
func ValidateSegments(segments []models.TimestampedSegment) error {
	prevEnd := -1
	for i, s := range segments {
		if s.EndSecond < s.StartSecond {
			return fmt.Errorf("segment %d ends before it starts (%d > %d)", i, s.StartSecond, s.EndSecond)
		}
		if s.StartSecond < prevEnd {
			return fmt.Errorf("segment %d overlaps previous segment (start %d < previous end %d)", i, s.StartSecond, prevEnd)
		}
		prevEnd = s.EndSecond
	}
	return nil
}
