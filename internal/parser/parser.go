package parser

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"worldmap/internal/logging"
)

// Parser extracts commands embedded between an open and close tag.
type Parser struct {
	openTag  string
	closeTag string
	logger   *zap.Logger
}

func NewParser(openTag, closeTag string, logger *zap.Logger) *Parser {
	return &Parser{
		openTag:  openTag,
		closeTag: closeTag,
		logger:   logging.OrNop(logger).Named("parser"),
	}
}

// Parse never fails as a whole: malformed segments and bad arguments are
// logged and dropped, and the remaining commands are returned in order.
func (p *Parser) Parse(text string) []Command {
	commands := []Command{}

	body := p.ExtractBlocks(text)
	if body == "" {
		return commands
	}

	segments, unterminated := Segments(body)
	if unterminated {
		p.logger.Warn("dropping unterminated command segment")
	}

	for _, segment := range segments {
		cmd, err := ParseSegment(segment)
		switch {
		case errors.Is(err, ErrMalformedSegment):
			p.logger.Warn("skipping malformed command segment", zap.String("segment", segment))
			continue
		case err != nil:
			p.logger.Error("skipping command with invalid arguments", zap.String("segment", segment), zap.Error(err))
			continue
		}
		commands = append(commands, cmd)
	}

	return commands
}

// ExtractBlocks concatenates the trimmed contents of every complete
// open/close tag pair in text. An unclosed trailing block is ignored.
func (p *Parser) ExtractBlocks(text string) string {
	var out strings.Builder
	rest := text
	for {
		_, after, found := strings.Cut(rest, p.openTag)
		if !found {
			break
		}
		inner, tail, closed := strings.Cut(after, p.closeTag)
		if !closed {
			break
		}
		out.WriteString(strings.TrimSpace(inner))
		rest = tail
	}
	return out.String()
}
