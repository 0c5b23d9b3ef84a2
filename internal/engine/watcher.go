package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher follows a transcript file and processes the text appended to it.
// Only text up to the last complete command block is consumed, so a block
// still being written is picked up by a later pass.
type Watcher struct {
	engine    *Engine
	path      string
	debouncer *Debouncer
	logger    *zap.Logger
	fsw       *fsnotify.Watcher

	mu     sync.Mutex
	offset int64
}

func NewWatcher(ctx context.Context, e *Engine, path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are still seen.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		engine: e,
		path:   abs,
		logger: e.logger.Named("watch").With(zap.String("path", abs)),
		fsw:    fsw,
	}
	w.debouncer = NewDebouncer(ctx, debounce, func(ctx context.Context, _ string) {
		if err := w.ProcessPending(ctx); err != nil {
			w.logger.Error("processing transcript", zap.Error(err))
		}
	})
	return w, nil
}

// Run blocks until ctx is done or the watcher fails. Text already in the
// file is processed first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.debouncer.Close()
	defer w.fsw.Close()

	w.debouncer.Trigger(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("transcript changed", zap.String("op", event.Op.String()))
			w.debouncer.Trigger(w.path)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

// ProcessPending reads the file from the last consumed offset and runs one
// engine pass over every complete command block found. A file that shrank
// is read again from the start.
func (w *Watcher) ProcessPending(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < w.offset {
		w.logger.Info("transcript truncated; starting over")
		w.offset = 0
	}
	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	closeTag := w.engine.opts.CloseTag
	end := strings.LastIndex(string(data), closeTag)
	if end < 0 {
		return nil
	}
	end += len(closeTag)

	report, err := w.engine.Process(ctx, string(data[:end]))
	w.offset += int64(end)
	if err != nil {
		return err
	}
	w.logger.Debug("consumed transcript", zap.String("pass", report.PassID), zap.Int64("offset", w.offset))
	return nil
}
