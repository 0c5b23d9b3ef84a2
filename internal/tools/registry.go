// Package tools maps parsed commands onto named actions.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	ErrDuplicateTool    = errors.New("tool already registered")
	ErrInvalidTool      = errors.New("invalid tool definition")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("arguments do not match tool schema")
)

// Args are a tool's named arguments, built from a command's positional ones.
type Args map[string]any

func (a Args) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

type Action func(ctx context.Context, args Args) (string, error)

// Tool is a named action. Parameters lists argument names in the order a
// command supplies them positionally.
type Tool struct {
	Module      string
	Name        string
	Description string
	Parameters  []string
	Schema      *jsonschema.Schema
	Action      Action

	resolved *jsonschema.Resolved
}

func (t Tool) Key() string {
	return Key(t.Module, t.Name)
}

func Key(module, name string) string {
	return module + "." + name
}

type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t. Registering the same Module.Name twice is an error.
func (r *Registry) Register(t Tool) error {
	if strings.TrimSpace(t.Module) == "" || strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: module and name are required", ErrInvalidTool)
	}
	if t.Action == nil {
		return fmt.Errorf("%w: %s has no action", ErrInvalidTool, t.Key())
	}
	if t.Schema != nil {
		resolved, err := t.Schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("%w: %s schema: %v", ErrInvalidTool, t.Key(), err)
		}
		t.resolved = resolved
	}
	t.Parameters = append([]string{}, t.Parameters...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Key()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Key())
	}
	r.tools[t.Key()] = t
	return nil
}

// MustRegister panics on error. Meant for startup wiring.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(module, name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[Key(module, name)]
	return t, ok
}

func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// MapArgs pairs params with positional values by index. Extra values are
// dropped and missing ones stay unset.
func MapArgs(params []string, values []any) Args {
	args := make(Args, len(params))
	for i, name := range params {
		if i >= len(values) {
			break
		}
		args[name] = values[i]
	}
	return args
}

func (t Tool) validate(args Args) error {
	if t.resolved == nil {
		return nil
	}
	if err := t.resolved.Validate(map[string]any(args)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
