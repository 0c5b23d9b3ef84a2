package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

type dsnTarget struct {
	path     string
	inMemory bool
}

// parseDSN turns sqlite://<path>[?query] into a driver path. Relative paths
// are anchored at the working directory.
func parseDSN(dsn string) (dsnTarget, error) {
	rest, ok := strings.CutPrefix(dsn, "sqlite://")
	if !ok {
		return dsnTarget{}, fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}
	if rest == "" {
		return dsnTarget{}, fmt.Errorf("sqlite DSN has no path")
	}
	if rest == ":memory:" {
		return dsnTarget{path: ":memory:", inMemory: true}, nil
	}

	path, query, _ := strings.Cut(rest, "?")
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return dsnTarget{}, fmt.Errorf("unescaping path: %w", err)
	}
	path = unescaped

	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}
	if query != "" {
		path += "?" + query
	}
	return dsnTarget{path: path}, nil
}
