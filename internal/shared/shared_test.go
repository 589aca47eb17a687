package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogging(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "sync")
		logger.Info("fetched")

		if !strings.Contains(buf.String(), "component=sync") {
			t.Errorf("expected component field in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cinex.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Warn("poster missing")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "poster missing") {
			t.Errorf("expected message in log file, got %q", data)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			in   string
			want log.Level
		}{
			{"debug", log.DebugLevel},
			{" WARN ", log.WarnLevel},
			{"error", log.ErrorLevel},
			{"", log.InfoLevel},
			{"verbose", log.InfoLevel},
		}

		for _, tt := range tc {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		id := GenerateID()
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("expected a valid uuid, got %q: %v", id, err)
		}
		if id == GenerateID() {
			t.Error("expected unique ids")
		}
	})

	t.Run("Truncate", func(t *testing.T) {
		tc := []struct {
			in   string
			n    int
			want string
		}{
			{"Sholay", 10, "Sholay"},
			{"Dilwale Dulhania Le Jayenge", 10, "Dilwale..."},
			{"Lagaan", 2, "La"},
		}

		for _, tt := range tc {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		}
	})

	t.Run("ExpandHome", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}

		if got := ExpandHome("~/cinex.db"); got != filepath.Join(home, "cinex.db") {
			t.Errorf("expected path under home, got %s", got)
		}
		if got := ExpandHome("./cinex.db"); got != "./cinex.db" {
			t.Errorf("relative path should be unchanged, got %s", got)
		}
	})

	t.Run("browserCommand", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()

		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("https://example.com/poster.jpg"); err == nil {
			t.Error("expected unsupported platform error")
		}

		getRuntime = func() string { return "linux" }
		cmd, err := browserCommand("https://example.com/poster.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(cmd.Path, "xdg-open") && cmd.Args[0] != "xdg-open" {
			t.Errorf("expected xdg-open, got %v", cmd.Args)
		}
	})
}
