package nagle_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/MasterOfBinary/gonagle/nagle"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    nagle.LogLevel
		expected string
	}{
		{nagle.LogLevelDebug, "debug"},
		{nagle.LogLevelInfo, "info"},
		{nagle.LogLevelWarn, "warn"},
		{nagle.LogLevelError, "error"},
		{nagle.LogLevel(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNoOpLogger(t *testing.T) {
	var logger nagle.Logger = nagle.NoOpLogger{}

	// These should not panic
	logger.Log(nagle.LogLevelInfo, "test")
	logger.Debug("debug %d", 1)
	logger.Error("error %f", 3.14)
}

func TestWriterLogger(t *testing.T) {
	tests := []struct {
		name        string
		collection  string
		minLevel    nagle.LogLevel
		logFunc     func(logger nagle.Logger)
		contains    []string
		notContains []string
	}{
		{
			name:     "debug level allows all",
			minLevel: nagle.LogLevelDebug,
			logFunc: func(logger nagle.Logger) {
				logger.Debug("debug message")
				logger.Info("info message")
				logger.Warn("warn message")
				logger.Error("error message")
			},
			contains: []string{"debug debug message", "info info message", "warn warn message", "error error message"},
		},
		{
			name:     "info level filters debug",
			minLevel: nagle.LogLevelInfo,
			logFunc: func(logger nagle.Logger) {
				logger.Debug("hidden message")
				logger.Info("info message")
			},
			contains:    []string{"info info message"},
			notContains: []string{"hidden"},
		},
		{
			name:       "tags lines with the collection name",
			collection: "orders",
			minLevel:   nagle.LogLevelInfo,
			logFunc: func(logger nagle.Logger) {
				logger.Warn("number: %d, string: %s", 42, "hello")
			},
			contains: []string{"[orders] warn number: 42, string: hello"},
		},
		{
			name:     "no tag without a name",
			minLevel: nagle.LogLevelInfo,
			logFunc: func(logger nagle.Logger) {
				logger.Info("plain")
			},
			notContains: []string{"["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := nagle.NewWriterLogger(&buf, tt.collection, tt.minLevel)

			tt.logFunc(logger)

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing expected string %q\nGot: %s", want, output)
				}
			}
			for _, notWant := range tt.notContains {
				if strings.Contains(output, notWant) {
					t.Errorf("output contains unexpected string %q\nGot: %s", notWant, output)
				}
			}
		})
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := nagle.NewSlogLogger(slog.New(handler))

	logger.Debug("hidden %d", 1)
	logger.Info("visible %d", 2)
	logger.Error("failed: %s", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered\nGot: %s", out)
	}
	if !strings.Contains(out, "level=INFO") || !strings.Contains(out, `msg="visible 2"`) {
		t.Errorf("missing info record\nGot: %s", out)
	}
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, `msg="failed: boom"`) {
		t.Errorf("missing error record\nGot: %s", out)
	}
}

func TestCollection_LogsLifecycle(t *testing.T) {
	var stdout bytes.Buffer
	logger := nagle.NewWriterLogger(&stdout, "letters", nagle.LogLevelDebug)

	c, err := nagle.New[string](4, nagle.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Add("a")
	if _, err := c.TakeBatch(context.Background(), 1, 0); err != nil {
		t.Fatal(err)
	}
	c.CompleteAdding()
	_ = c.Add("b")
	_ = c.Close()

	out := stdout.String()
	for _, want := range []string{
		"released full batch of 1 item(s)",
		"collection completed with 0 item(s) buffered",
		"Add rejected, collection is completed",
		"collection disposed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\nGot: %s", want, out)
		}
	}
}
