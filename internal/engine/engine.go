// Package engine runs the command pipeline for one book: parse generated
// text, dispatch its commands, then rebuild the locator entry for wherever
// the player ended up.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worldmap/internal/config"
	"worldmap/internal/effects"
	"worldmap/internal/graph"
	"worldmap/internal/locator"
	"worldmap/internal/logging"
	"worldmap/internal/maptools"
	"worldmap/internal/parser"
	"worldmap/internal/store"
	"worldmap/internal/tools"
)

type Options struct {
	Book         string
	OpenTag      string
	CloseTag     string
	LocatorEntry string
	PlayerEntry  string
	// Sink receives FX commands. Nil logs them.
	Sink effects.Sink
}

// OptionsFromConfig maps the project config onto engine options.
func OptionsFromConfig(cfg *config.ProjectConfig) Options {
	return Options{
		Book:         cfg.Book,
		OpenTag:      cfg.Commands.OpenTag,
		CloseTag:     cfg.Commands.CloseTag,
		LocatorEntry: cfg.Locator.EntryName,
	}
}

type Engine struct {
	opts   Options
	db     store.Store
	logger *zap.Logger

	graph      *graph.Graph
	position   *Position
	parser     *parser.Parser
	dispatcher *tools.Dispatcher
	locator    *locator.Builder
}

// Report describes one processing pass.
type Report struct {
	PassID   string
	Location string
	Results  []tools.Result
}

// Failed counts commands that did not complete.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// New wires the pipeline. The registry is built here so every engine gets
// its own; nothing is shared at package level.
func New(db store.Store, opts Options, logger *zap.Logger) (*Engine, error) {
	logger = logging.OrNop(logger)
	if opts.OpenTag == "" {
		opts.OpenTag = config.DefaultOpenTag
	}
	if opts.CloseTag == "" {
		opts.CloseTag = config.DefaultCloseTag
	}
	if opts.LocatorEntry == "" {
		opts.LocatorEntry = config.DefaultLocator
	}

	g := graph.New(db, logger)
	pos := NewPosition(db, opts.PlayerEntry)

	registry := tools.NewRegistry()
	if err := maptools.Register(registry, maptools.New(g, pos, logger)); err != nil {
		return nil, fmt.Errorf("registering map tools: %w", err)
	}
	fx := effects.NewHandler(opts.Sink, logger)

	return &Engine{
		opts:       opts,
		db:         db,
		logger:     logger.Named("engine"),
		graph:      g,
		position:   pos,
		parser:     parser.NewParser(opts.OpenTag, opts.CloseTag, logger),
		dispatcher: tools.NewDispatcher(registry, logger, tools.WithEffects(effects.Module, fx.Handle)),
		locator:    locator.New(g, opts.LocatorEntry, logger),
	}, nil
}

// Open prepares the store, creating the book if it does not exist yet, and
// loads the graph and the player position from it.
func (e *Engine) Open(ctx context.Context) error {
	if e.opts.Book == "" {
		return fmt.Errorf("engine: book is required")
	}
	if err := e.db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preparing store: %w", err)
	}

	exists, err := e.db.BookExists(ctx, e.opts.Book)
	if err != nil {
		return fmt.Errorf("checking book %q: %w", e.opts.Book, err)
	}
	if !exists {
		if err := e.db.CreateBook(ctx, e.opts.Book); err != nil {
			return fmt.Errorf("creating book %q: %w", e.opts.Book, err)
		}
		e.logger.Info("created book", zap.String("book", e.opts.Book))
	}

	if err := e.graph.Initialize(ctx, e.opts.Book); err != nil {
		return err
	}
	if err := e.position.Load(ctx, e.opts.Book); err != nil {
		return err
	}
	return nil
}

func (e *Engine) Graph() *graph.Graph       { return e.graph }
func (e *Engine) Position() *Position       { return e.position }
func (e *Engine) Locator() *locator.Builder { return e.locator }

// Process runs one pass over text. Command failures are in the report; the
// returned error is only for the locator rebuild.
func (e *Engine) Process(ctx context.Context, text string) (Report, error) {
	report := Report{PassID: uuid.NewString()}
	logger := e.logger.With(zap.String("pass", report.PassID))

	cmds := e.parser.Parse(text)
	logger.Debug("parsed commands", zap.Int("commands", len(cmds)))
	report.Results = e.dispatcher.DispatchAll(ctx, cmds)

	report.Location = e.position.Current()
	if err := e.refreshLocator(ctx, report.Location); err != nil {
		return report, err
	}
	if len(cmds) > 0 {
		logger.Info("pass complete",
			zap.Int("commands", len(cmds)),
			zap.Int("failed", report.Failed()),
			zap.String("location", report.Location),
		)
	}
	return report, nil
}

// Invoke runs one tool by name and refreshes the locator, for operator
// style calls that want a text answer.
func (e *Engine) Invoke(ctx context.Context, module, name string, args tools.Args) string {
	out := e.dispatcher.Invoke(ctx, module, name, args)
	if err := e.refreshLocator(ctx, e.position.Current()); err != nil {
		e.logger.Warn("locator refresh after invoke failed", zap.Error(err))
	}
	return out
}

func (e *Engine) refreshLocator(ctx context.Context, nodeID string) error {
	if nodeID == "" {
		return nil
	}
	return e.locator.UpdateLocator(ctx, nodeID)
}
