package logger

import (
	"context"
	"errors"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds rotating file sink parameters.
// Embed this in your app config for env parsing with caarlos0/env.
type FileConfig struct {
	// Path to the log file with name and extension.
	Path string `env:"LOG_FILE_PATH"`

	// Rotation thresholds. Size triggers rotation, age and backup
	// count bound how much history stays on disk.
	MaxSizeMB  int  `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int  `env:"LOG_FILE_MAX_BACKUPS" envDefault:"10"`
	MaxAgeDays int  `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"30"`
	Compress   bool `env:"LOG_FILE_COMPRESS" envDefault:"false"`
}

// FileSink writes rendered entries to a size-rotated log file.
type FileSink struct {
	*WriterSink
	rotator *lumberjack.Logger
}

// NewFileSink validates the config and opens the rotating writer. A nil
// renderer defaults to the plain console layout, which is what log
// files usually want.
func NewFileSink(cfg FileConfig, renderer Renderer) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, ErrNoFilePath
	}
	if renderer == nil {
		renderer = ConsoleRenderer{}
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return &FileSink{
		WriterSink: NewWriterSink(rotator, renderer),
		rotator:    rotator,
	}, nil
}

// Rotate forces a rotation regardless of size, for SIGHUP-style hooks.
func (s *FileSink) Rotate() error {
	return s.rotator.Rotate()
}

func (s *FileSink) Close(ctx context.Context) error {
	return errors.Join(s.WriterSink.Close(ctx), s.rotator.Close())
}
