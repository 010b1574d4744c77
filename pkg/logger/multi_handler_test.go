package logger_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redb0/slogwire/pkg/logger"
)

func TestNewMultiHandler(t *testing.T) {
	t.Parallel()

	t.Run("forwards records to every enabled handler", func(t *testing.T) {
		t.Parallel()

		infoPipe, infoSink := newTestPipeline(t, logger.PipelineConfig{Level: slog.LevelInfo})
		errPipe, errSink := newTestPipeline(t, logger.PipelineConfig{Level: slog.LevelError})

		log := slog.New(logger.NewMultiHandler(infoPipe, errPipe))

		log.Info("routine")
		log.Error("broken")

		require.Len(t, infoSink.all(), 2)
		require.Len(t, errSink.all(), 1)
		require.Equal(t, "broken", errSink.last(t)[logger.DefaultEventKey])
	})

	t.Run("enabled when any handler is enabled", func(t *testing.T) {
		t.Parallel()

		infoPipe, _ := newTestPipeline(t, logger.PipelineConfig{Level: slog.LevelInfo})
		errPipe, _ := newTestPipeline(t, logger.PipelineConfig{Level: slog.LevelError})

		h := logger.NewMultiHandler(infoPipe, errPipe)
		require.True(t, h.Enabled(context.Background(), slog.LevelInfo))
		require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("skips nil handlers", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, logger.PipelineConfig{})
		h := logger.NewMultiHandler(nil, p, nil)

		require.Same(t, p, h)
	})

	t.Run("one failing handler does not stop the rest", func(t *testing.T) {
		t.Parallel()

		closedPipe, _ := newTestPipeline(t, logger.PipelineConfig{})
		require.NoError(t, closedPipe.Close(context.Background()))

		healthyPipe, healthySink := newTestPipeline(t, logger.PipelineConfig{})

		h := logger.NewMultiHandler(closedPipe, healthyPipe)
		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)

		err := h.Handle(context.Background(), rec)
		require.ErrorIs(t, err, logger.ErrSinkClosed)
		require.Len(t, healthySink.all(), 1)
	})

	t.Run("with attrs reaches every handler", func(t *testing.T) {
		t.Parallel()

		aPipe, aSink := newTestPipeline(t, logger.PipelineConfig{})
		bPipe, bSink := newTestPipeline(t, logger.PipelineConfig{})

		log := slog.New(logger.NewMultiHandler(aPipe, bPipe)).With(slog.String("env", "test"))
		log.Info("hello")

		require.Equal(t, "test", aSink.last(t)["env"])
		require.Equal(t, "test", bSink.last(t)["env"])
	})
}
