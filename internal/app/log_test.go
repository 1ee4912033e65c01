package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDcatHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "cataloguing started",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tcataloguing started\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "state changed",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tstate changed\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelWarn,
			message: "access denied",
			attrs:   []slog.Attr{slog.String("path", "/media/backup/private"), slog.Int("objects", 42)},
			want:    "2024-06-15T14:30:45Z\tWARN\top-789\taccess denied\tpath=/media/backup/private\tobjects=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &dcatHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestDcatHandler_Console(t *testing.T) {
	var file, console bytes.Buffer
	h := &dcatHandler{w: &file, console: &console, consoleLevel: slog.LevelWarn, opID: "op-1"}
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if err := h.Handle(context.Background(), slog.NewRecord(ts, level, "msg", 0)); err != nil {
			t.Fatalf("Handle(%v) error = %v", level, err)
		}
	}

	if n := strings.Count(file.String(), "\n"); n != 4 {
		t.Errorf("file got %d lines, want 4", n)
	}
	got := console.String()
	if strings.Count(got, "\n") != 2 || !strings.Contains(got, "\tWARN\t") || !strings.Contains(got, "\tERROR\t") {
		t.Errorf("console got %q, want only WARN and ERROR", got)
	}
}

func TestDcatHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &dcatHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "snapshot")}).(*dcatHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "push", 0)
	r.AddAttrs(slog.Int64("version", 7))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=snapshot") {
		t.Errorf("expected pre-set attr component=snapshot, got: %q", got)
	}
	if !strings.Contains(got, "version=7") {
		t.Errorf("expected record attr version=7, got: %q", got)
	}
}

func TestDcatHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &dcatHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*dcatHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "test-op")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Info("hello", "k", "v")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "\ttest-op\thello\tk=v\n") {
		t.Errorf("log file = %q", data)
	}
}
