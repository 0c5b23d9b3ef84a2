// Package effects interprets the FX command family. Playback itself belongs
// to whatever Sink the host wires in.
package effects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"worldmap/internal/logging"
	"worldmap/internal/parser"
	"worldmap/internal/tools"
)

// Module is the command module tag routed to this package.
const Module = "FX"

var (
	// ErrUnknownEffect wraps tools.ErrUnknownTool so the dispatcher treats
	// it like any other unregistered command.
	ErrUnknownEffect = fmt.Errorf("unknown effect: %w", tools.ErrUnknownTool)
	ErrInvalidSound  = errors.New("invalid sound spec")
)

// Sound describes one clip. Volume is 0..1; zero means the sink default.
type Sound struct {
	Path   string  `json:"path"`
	Volume float64 `json:"volume,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
}

// Sink is the audio engine seen from here.
type Sink interface {
	Play(ctx context.Context, sounds []Sound) error
	Ambient(ctx context.Context, sounds []Sound) error
	Stop(ctx context.Context, path string) error
	StopAll(ctx context.Context) error
}

type Handler struct {
	sink   Sink
	logger *zap.Logger
}

func NewHandler(sink Sink, logger *zap.Logger) *Handler {
	logger = logging.OrNop(logger).Named("fx")
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &Handler{sink: sink, logger: logger}
}

// Handle matches tools.EffectFunc.
func (h *Handler) Handle(ctx context.Context, cmd parser.Command) error {
	h.logger.Debug("handling effect", zap.String("function", cmd.Function), zap.Int("args", len(cmd.Args)))
	switch cmd.Function {
	case "PlaySound":
		sounds, err := soundsArg(cmd.Args)
		if err != nil {
			return err
		}
		return h.sink.Play(ctx, sounds)
	case "PlayAmbient":
		sounds, err := soundsArg(cmd.Args)
		if err != nil {
			return err
		}
		for i := range sounds {
			sounds[i].Loop = true
		}
		return h.sink.Ambient(ctx, sounds)
	case "StopSound":
		path := ""
		if len(cmd.Args) > 0 {
			s, ok := cmd.Args[0].(string)
			if !ok {
				return fmt.Errorf("%w: StopSound expects a path string", ErrInvalidSound)
			}
			path = s
		}
		if path == "" {
			return h.sink.StopAll(ctx)
		}
		return h.sink.Stop(ctx, path)
	case "StopAll":
		return h.sink.StopAll(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEffect, cmd)
	}
}

// soundsArg accepts a single sound object, a list of them, or a bare path
// string as the first argument.
func soundsArg(args []any) ([]Sound, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing argument", ErrInvalidSound)
	}
	if path, ok := args[0].(string); ok {
		args = []any{map[string]any{"path": path}}
	}

	raw := args[0]
	if _, ok := raw.([]any); !ok {
		raw = []any{raw}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSound, err)
	}
	var sounds []Sound
	if err := json.Unmarshal(data, &sounds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSound, err)
	}
	for i, s := range sounds {
		if s.Path == "" {
			return nil, fmt.Errorf("%w: sound %d has no path", ErrInvalidSound, i)
		}
		if s.Volume < 0 || s.Volume > 1 {
			return nil, fmt.Errorf("%w: sound %q volume %v out of range", ErrInvalidSound, s.Path, s.Volume)
		}
	}
	return sounds, nil
}
