package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMalformedSegment = errors.New("segment does not match Module.Function(arguments)")
	ErrInvalidArguments = errors.New("arguments are not valid JSON")
)

var segmentPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)\(([\s\S]*)\)$`)

// Command is one Module.Function(args...) instruction. Args hold decoded
// JSON values in source order.
type Command struct {
	Module   string
	Function string
	Args     []any
}

func (c Command) String() string {
	return c.Module + "." + c.Function
}

// ParseSegment parses the inside of one bracketed segment.
func ParseSegment(segment string) (Command, error) {
	match := segmentPattern.FindStringSubmatch(strings.TrimSpace(segment))
	if match == nil {
		return Command{}, ErrMalformedSegment
	}

	var args []any
	raw := "[" + strings.TrimSpace(match[3]) + "]"
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if args == nil {
		args = []any{}
	}

	return Command{Module: match[1], Function: match[2], Args: args}, nil
}

// Segments splits body on depth-0 square brackets. Nested brackets inside a
// segment are kept, so arguments may contain JSON arrays. unterminated
// reports a trailing segment whose bracket never closed.
func Segments(body string) (segments []string, unterminated bool) {
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				segments = append(segments, body[start:i])
			}
		}
	}
	return segments, depth > 0
}
