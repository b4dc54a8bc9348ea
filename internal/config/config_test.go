package config

import (
	"log/slog"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.SurrealDBURL != "ws://localhost:8000/rpc" {
		t.Errorf("SurrealDBURL = %q", cfg.SurrealDBURL)
	}
	if cfg.EmbedDimension != 1536 {
		t.Errorf("EmbedDimension = %d, want 1536", cfg.EmbedDimension)
	}
	if cfg.LikelihoodThreshold != 3 {
		t.Errorf("LikelihoodThreshold = %d, want 3", cfg.LikelihoodThreshold)
	}
	if cfg.SearchQuery != "food" {
		t.Errorf("SearchQuery = %q, want food", cfg.SearchQuery)
	}
	if cfg.MaxResults != 3 {
		t.Errorf("MaxResults = %d, want 3", cfg.MaxResults)
	}
	if cfg.MaxFrameEdge != 1080 {
		t.Errorf("MaxFrameEdge = %d, want 1080", cfg.MaxFrameEdge)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RELISH_SEARCH_QUERY", "dessert")
	t.Setenv("RELISH_LIKELIHOOD_THRESHOLD", "4")
	t.Setenv("RELISH_MODEL_TIMEOUT", "30s")

	cfg := Load()
	if cfg.SearchQuery != "dessert" {
		t.Errorf("SearchQuery = %q, want dessert", cfg.SearchQuery)
	}
	if cfg.LikelihoodThreshold != 4 {
		t.Errorf("LikelihoodThreshold = %d, want 4", cfg.LikelihoodThreshold)
	}
	if cfg.ModelCallTimeout.Seconds() != 30 {
		t.Errorf("ModelCallTimeout = %v, want 30s", cfg.ModelCallTimeout)
	}
}

func TestApplyOverlay(t *testing.T) {
	cfg := Load()
	overlay := []byte(`
search_query: "street food"
max_results: 10
frame_rate: 2
`)

	if err := cfg.ApplyOverlay(overlay); err != nil {
		t.Fatalf("ApplyOverlay() error = %v", err)
	}

	if cfg.SearchQuery != "street food" {
		t.Errorf("SearchQuery = %q", cfg.SearchQuery)
	}
	if cfg.MaxResults != 10 {
		t.Errorf("MaxResults = %d", cfg.MaxResults)
	}
	if cfg.FrameRate != 2 {
		t.Errorf("FrameRate = %d", cfg.FrameRate)
	}
	// untouched fields keep their values
	if cfg.LikelihoodThreshold != 3 {
		t.Errorf("LikelihoodThreshold = %d, want 3", cfg.LikelihoodThreshold)
	}
}

func TestApplyOverlay_Malformed(t *testing.T) {
	cfg := Load()
	if err := cfg.ApplyOverlay([]byte("search_query: [unbalanced")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMemoryHandler_CapturesOrderedEntries(t *testing.T) {
	sink := NewMemoryHandler()
	log := slog.New(sink)

	log.Info("first", "a", 1)
	log.Warn("second")
	log.Error("third")

	entries := sink.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Message != "first" || entries[1].Message != "second" || entries[2].Message != "third" {
		t.Errorf("order lost: %+v", entries)
	}
	if entries[0].Attrs["a"] != int64(1) {
		t.Errorf("attr a = %v (%T)", entries[0].Attrs["a"], entries[0].Attrs["a"])
	}
}

func TestMemoryHandler_WithRoutesToParent(t *testing.T) {
	sink := NewMemoryHandler()
	log := slog.New(sink).With("videoId", "abc")

	log.Warn("captions not available")

	if !sink.HasMessage(slog.LevelWarn, "captions") {
		t.Fatal("warning not captured through With")
	}
	entries := sink.Entries()
	if entries[0].Attrs["videoId"] != "abc" {
		t.Errorf("bound attr lost: %+v", entries[0].Attrs)
	}
}
