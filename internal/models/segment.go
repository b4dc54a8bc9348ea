package models

// TimestampedSegment is the common shape produced by the caption normalizer,
// the transcription service and the frame describer. Segments are ordered
// chronologically and never overlap after normalization.
type TimestampedSegment struct {
	Text        string `json:"text"`
	StartSecond int    `json:"startSecond"`
	EndSecond   int    `json:"endSecond"`
}
