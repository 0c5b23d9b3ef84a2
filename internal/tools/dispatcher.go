package tools

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"worldmap/internal/logging"
	"worldmap/internal/parser"
)

// EffectFunc handles a directly interpreted command family, such as sound
// effects, that has no registered tools.
type EffectFunc func(ctx context.Context, cmd parser.Command) error

type Result struct {
	Command parser.Command
	Output  string
	Err     error
}

type Dispatcher struct {
	registry *Registry
	effects  map[string]EffectFunc
	logger   *zap.Logger
	tracer   trace.Tracer
}

type Option func(*Dispatcher)

// WithEffects routes every command whose module is module to fn instead of
// the registry.
func WithEffects(module string, fn EffectFunc) Option {
	return func(d *Dispatcher) {
		d.effects[module] = fn
	}
}

func NewDispatcher(registry *Registry, logger *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		effects:  make(map[string]EffectFunc),
		logger:   logging.OrNop(logger).Named("dispatch"),
		tracer:   otel.Tracer("worldmap/tools"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one command. Failures are logged and reported in the result,
// never returned or panicked, so the rest of a batch still runs.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd parser.Command) Result {
	ctx, span := d.tracer.Start(ctx, "tools.dispatch", trace.WithAttributes(
		attribute.String("command", cmd.String()),
		attribute.Int("args", len(cmd.Args)),
	))
	defer span.End()

	res := Result{Command: cmd}
	logger := d.logger.With(zap.String("command", cmd.String()))

	if fn, ok := d.effects[cmd.Module]; ok {
		res.Err = protect(func() error { return fn(ctx, cmd) })
		switch {
		case errors.Is(res.Err, ErrUnknownTool):
			span.SetAttributes(attribute.String("error_type", "tool_not_found"))
			logger.Warn("ignoring command for unregistered tool")
		case res.Err != nil:
			span.RecordError(res.Err)
			logger.Error("effect command failed", zap.Error(res.Err))
		}
		return res
	}

	tool, ok := d.registry.Lookup(cmd.Module, cmd.Function)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrUnknownTool, cmd)
		span.SetAttributes(attribute.String("error_type", "tool_not_found"))
		logger.Warn("ignoring command for unregistered tool")
		return res
	}

	res.Output, res.Err = d.run(ctx, tool, MapArgs(tool.Parameters, cmd.Args))
	if res.Err != nil {
		span.RecordError(res.Err)
		logger.Error("tool action failed", zap.Error(res.Err))
		return res
	}
	logger.Info("tool action completed", zap.String("result", res.Output))
	return res
}

// DispatchAll runs cmds sequentially. A failed command does not undo or
// stop the others.
func (d *Dispatcher) DispatchAll(ctx context.Context, cmds []parser.Command) []Result {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		results = append(results, d.Dispatch(ctx, cmd))
	}
	return results
}

// Invoke calls a tool with named arguments and always returns text: the
// action's output, or a line starting with "Error:".
func (d *Dispatcher) Invoke(ctx context.Context, module, name string, args Args) string {
	tool, ok := d.registry.Lookup(module, name)
	if !ok {
		d.logger.Warn("invoke of unregistered tool", zap.String("tool", Key(module, name)))
		return fmt.Sprintf("Error: Unknown tool %q.", Key(module, name))
	}
	if args == nil {
		args = Args{}
	}
	out, err := d.run(ctx, tool, args)
	if err != nil {
		d.logger.Error("tool invocation failed", zap.String("tool", tool.Key()), zap.Error(err))
		var failure *Failure
		if errors.As(err, &failure) {
			return "Error: " + failure.Message
		}
		return "Error: " + err.Error()
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, tool Tool, args Args) (string, error) {
	if err := tool.validate(args); err != nil {
		return "", err
	}
	var out string
	err := protect(func() error {
		var err error
		out, err = tool.Action(ctx, args)
		return err
	})
	return out, err
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
