package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// The slog-backed implementation must satisfy the full facade, including the
// fatal variant used by the CLI entrypoints.
var _ Interface = (*slogLogger)(nil)

func TestSlogLoggerWritesThroughFacade(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	log.Debugw("debug line", "k", "v")
	log.Infow("info line", "k", "v")
	log.Warnw("warn line", "k", "v")
	log.Errorw("error line", "k", "v")
	log.With("component", "test").Infow("with line")
	log.Named("sub").Infow("named line")

	out := buf.String()
	for _, want := range []string{"debug line", "info line", "warn line", "error line", "component=test", "logger=sub"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSyncIsSafeToDefer(t *testing.T) {
	if err := Sync(); err != nil {
		t.Errorf("Sync() = %v, want nil", err)
	}
}
