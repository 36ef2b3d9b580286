package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN", "bogus", ""} {
		log := Setup(level)
		assert.NotNil(t, log, "level %q", level)
	}
}

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithLogger(context.Background(), log)

		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}
