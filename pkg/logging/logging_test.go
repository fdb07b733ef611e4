package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

func TestConsoleWriterPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel, true)
	logger.Info().Str("board", "sim").Msg("setting up")

	out := buf.String()
	if !strings.Contains(out, "setting up") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "board=sim") {
		t.Errorf("missing field in %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no escape codes with NoColor, got %q", out)
	}
}

func TestConsoleWriterError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel, true)
	logger.Error().Err(eris.New("configure failed")).Msg("setup")

	out := buf.String()
	if !strings.Contains(out, "Error: setup") {
		t.Errorf("missing error prefix in %q", out)
	}
	if !strings.Contains(out, "configure failed") {
		t.Errorf("missing error details in %q", out)
	}
}

func TestConsoleWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.WarnLevel, true)
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if l := From(context.Background()); l == nil {
		t.Fatal("From without logger returned nil")
	}

	var buf bytes.Buffer
	logger := New(&buf, zerolog.InfoLevel, true)
	ctx := WithLogger(context.Background(), &logger)
	c := Component(ctx, "builder")
	c.Info().Msg("running clean")
	if !strings.Contains(buf.String(), "builder: running clean") {
		t.Errorf("component prefix missing in %q", buf.String())
	}
}
