// Package captions parses WebVTT subtitle tracks into deduplicated,
// timestamped text segments.
//
// Rolling captions repeat trailing text from the previous block, so the
// normalizer keeps exactly one copy of every word across the stream: a
// block whose text is already contained in the previous block's text is
// dropped entirely; otherwise the longest prefix of the new block that is
// a suffix of the previous block is stripped before emitting.
package captions

import (
	"regexp"
	"strings"

	"github.com/gtumedei/relish-recipe-dt/internal/models"
)

var (
	cueTimingRe = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3}) --> (\d{2}:\d{2}:\d{2}\.\d{3})`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	spaceRe     = regexp.MustCompile(`\s+`)
	blockSepRe  = regexp.MustCompile(`\r?\n\r?\n`)
	lineSepRe   = regexp.MustCompile(`\r?\n`)
)

// Parse converts a WebVTT document into normalized timestamped segments.
// Timestamps are rounded to whole seconds. Blocks without a cue timing
// line or without text are skipped.
func Parse(vtt string) []models.TimestampedSegment {
	var segments []models.TimestampedSegment
	prevBlock := ""

	for _, block := range blockSepRe.Split(vtt, -1) {
		lines := lineSepRe.Split(block, -1)

		// A cue may carry an identifier line before the timing line.
		timingIdx := -1
		var timing []string
		for i, line := range lines {
			if m := cueTimingRe.FindStringSubmatch(line); m != nil {
				timingIdx = i
				timing = m
				break
			}
		}
		if timingIdx < 0 {
			continue
		}

		text := strings.Join(lines[timingIdx+1:], " ")
		text = tagRe.ReplaceAllString(text, "")
		text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
		if text == "" {
			continue
		}

		// Rolling captions repeat the previous block's trailing text
		if strings.Contains(prevBlock, text) {
			continue
		}
		emitted := stripOverlap(prevBlock, text)
		prevBlock = text

		start, okStart := ParseTimestamp(timing[1])
		end, okEnd := ParseTimestamp(timing[2])
		if !okStart || !okEnd {
			continue
		}

		segments = append(segments, models.TimestampedSegment{
			Text:        emitted,
			StartSecond: start,
			EndSecond:   end,
		})
	}

	return segments
}

// stripOverlap removes the longest prefix of text that is a suffix of
// prev, leaving only the non-overlapping remainder.
func stripOverlap(prev, text string) string {
	for j := len(text) - 1; j > 0; j-- {
		s := text[:j]
		if strings.HasSuffix(prev, s) {
			return strings.TrimSpace(strings.TrimPrefix(text, s))
		}
	}
	return text
}
