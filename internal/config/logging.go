package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates a dual-output logger: text to stderr, JSON to file.
// Returns the logger and a cleanup function to close the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to stderr-only if file fails
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return slog.New(stderrHandler), func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(slogmulti.Fanout(stderrHandler, fileHandler))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}

// LogEntry is one captured structured log record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// MemoryHandler is a slog.Handler that records entries in order. It backs
// test-inspectable log sinks: create one per run, read it, discard it.
type MemoryHandler struct {
	mu      sync.Mutex
	entries []LogEntry
	attrs   []slog.Attr
}

// NewMemoryHandler creates an empty in-memory log sink.
func NewMemoryHandler() *MemoryHandler {
	return &MemoryHandler{}
}

func (h *MemoryHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *MemoryHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.entries = append(h.entries, LogEntry{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *MemoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &sharedMemoryHandler{parent: h, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *MemoryHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; attribute keys keep their own names.
	return h
}

// Entries returns a copy of all captured entries in order.
func (h *MemoryHandler) Entries() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// HasMessage reports whether any entry at the given level contains the
// substring in its message.
func (h *MemoryHandler) HasMessage(level slog.Level, substr string) bool {
	for _, e := range h.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// sharedMemoryHandler routes records back to a parent MemoryHandler with
// extra bound attributes.
type sharedMemoryHandler struct {
	parent *MemoryHandler
	attrs  []slog.Attr
}

func (h *sharedMemoryHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *sharedMemoryHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.parent.mu.Lock()
	h.parent.entries = append(h.parent.entries, LogEntry{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.parent.mu.Unlock()
	return nil
}

func (h *sharedMemoryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedMemoryHandler{parent: h.parent, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *sharedMemoryHandler) WithGroup(name string) slog.Handler { return h }
