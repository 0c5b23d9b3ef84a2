package effects

import (
	"context"

	"go.uber.org/zap"
)

// LogSink records effects in the log. It is the default when no audio
// engine is attached.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Play(ctx context.Context, sounds []Sound) error {
	for _, snd := range sounds {
		s.Logger.Info("play sound", zap.String("path", snd.Path), zap.Float64("volume", snd.Volume), zap.Bool("loop", snd.Loop))
	}
	return nil
}

func (s LogSink) Ambient(ctx context.Context, sounds []Sound) error {
	for _, snd := range sounds {
		s.Logger.Info("play ambient", zap.String("path", snd.Path), zap.Float64("volume", snd.Volume))
	}
	return nil
}

func (s LogSink) Stop(ctx context.Context, path string) error {
	s.Logger.Info("stop sound", zap.String("path", path))
	return nil
}

func (s LogSink) StopAll(ctx context.Context) error {
	s.Logger.Info("stop all sounds")
	return nil
}
