// Package ingest loads yaml seed files into the location graph. Files whose
// content hash matches the last import are skipped.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"worldmap/internal/graph"
	"worldmap/internal/logging"
	"worldmap/internal/store"
)

const seedEntryPrefix = "[MapSeed:"

type Result struct {
	NodesUpserted int
	FilesSkipped  int
	Errors        []error
}

type Options struct {
	Full    bool
	Exclude []string
}

// Run imports every .yaml/.yml file under roots into g and records each
// file's hash in the graph's book.
func Run(ctx context.Context, g *graph.Graph, roots []string, options Options, logger *zap.Logger) (*Result, error) {
	logger = logging.OrNop(logger).Named("ingest")
	if !g.IsInitialized() {
		return nil, graph.ErrNotInitialized
	}
	db, book := g.Store(), g.Book()

	files, err := walkSeedFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking seed files: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		hash := computeHash(data)

		if !options.Full {
			existing, err := db.Get(ctx, book, seedEntryName(path))
			if err != nil {
				return nil, fmt.Errorf("get seed hash for %s: %w", path, err)
			}
			if existing != nil && existing.Content == hash {
				result.FilesSkipped++
				continue
			}
		}

		updates, err := parseSeed(data)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if err := g.ProcessUpdate(ctx, updates); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("applying %s: %w", path, err))
			result.NodesUpserted += len(updates) - countJoined(err)
			continue
		}
		result.NodesUpserted += len(updates)

		entry := store.Entry{Book: book, Name: seedEntryName(path), Content: hash, Keys: []string{}, Priority: store.PrioritySystem}
		if err := store.Upsert(ctx, db, entry); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recording hash for %s: %w", path, err))
		}
		logger.Info("seed file imported", zap.String("path", path), zap.Int("nodes", len(updates)))
	}
	return result, nil
}

func seedEntryName(path string) string {
	return seedEntryPrefix + filepath.ToSlash(filepath.Clean(path)) + "]"
}

func countJoined(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}

func walkSeedFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
