package captions

import (
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want int
		ok   bool
	}{
		{"minute and seconds", "00:01:05.000", 65, true},
		{"half second rounds to even", "01:00:00.500", 3600, true},
		{"zero", "00:00:00.000", 0, true},
		{"seconds only", "05.250", 5, true},
		{"minutes seconds", "02:30.000", 150, true},
		{"garbage", "aa:bb:cc", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.ts)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.ts, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %d, want %d", tt.ts, got, tt.want)
			}
		})
	}
}

func TestParse_RollingCaptionOverlap(t *testing.T) {
	vtt := `WEBVTT

00:00:00.000 --> 00:00:02.000
hello world

00:00:02.000 --> 00:00:04.000
world how are you
`

	segments := Parse(vtt)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segments), segments)
	}
	if segments[0].Text != "hello world" {
		t.Errorf("first segment = %q, want %q", segments[0].Text, "hello world")
	}
	if segments[1].Text != "how are you" {
		t.Errorf("second segment = %q, want %q", segments[1].Text, "how are you")
	}
	if segments[1].StartSecond != 2 || segments[1].EndSecond != 4 {
		t.Errorf("second segment timing = [%d,%d], want [2,4]", segments[1].StartSecond, segments[1].EndSecond)
	}
}

func TestParse_FullDuplicateDropped(t *testing.T) {
	vtt := `WEBVTT

00:00:00.000 --> 00:00:02.000
chop the onions finely

00:00:02.000 --> 00:00:04.000
the onions

00:00:04.000 --> 00:00:06.000
add them to the pan
`

	segments := Parse(vtt)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segments), segments)
	}
	if segments[1].Text != "add them to the pan" {
		t.Errorf("second segment = %q", segments[1].Text)
	}
}

func TestParse_StripsTagsAndCueIdentifiers(t *testing.T) {
	vtt := `WEBVTT
Kind: captions
Language: en

1
00:00:01.000 --> 00:00:03.000
<c.color1>add</c> the <b>flour</b>

2
00:00:03.000 --> 00:00:05.000
and   mix
well
`

	segments := Parse(vtt)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2: %+v", len(segments), segments)
	}
	if segments[0].Text != "add the flour" {
		t.Errorf("first segment = %q, want %q", segments[0].Text, "add the flour")
	}
	if segments[1].Text != "and mix well" {
		t.Errorf("second segment = %q, want %q", segments[1].Text, "and mix well")
	}
}

func TestParse_EmptyAndHeaderOnly(t *testing.T) {
	if got := Parse(""); len(got) != 0 {
		t.Errorf("Parse(\"\") = %+v, want empty", got)
	}
	if got := Parse("WEBVTT\n\nNOTE nothing here\n"); len(got) != 0 {
		t.Errorf("header-only document produced segments: %+v", got)
	}
}

func TestStripOverlap(t *testing.T) {
	tests := []struct {
		name string
		prev string
		text string
		want string
	}{
		{"no overlap", "hello world", "good morning", "good morning"},
		{"single word overlap", "hello world", "world how are you", "how are you"},
		{"multi word overlap", "stir the sauce gently", "the sauce gently simmers", "simmers"},
		{"empty prev", "", "first block", "first block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripOverlap(tt.prev, tt.text); got != tt.want {
				t.Errorf("stripOverlap(%q, %q) = %q, want %q", tt.prev, tt.text, got, tt.want)
			}
		})
	}
}
