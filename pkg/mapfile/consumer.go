package mapfile

import (
	"fmt"

	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// Consumer resolves generated positions against a full source map JSON
// document using an independent parser. It exists for cross-validation
// and ad-hoc queries; the engine's own FindClosestMapping works on index
// state, not documents.
type Consumer struct {
	sm *gosourcemap.Consumer
}

// NewConsumer parses raw source map JSON into a consumer.
func NewConsumer(data []byte) (*Consumer, error) {
	sm, err := gosourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source map: %w", err)
	}
	return &Consumer{sm: sm}, nil
}

// Position is a resolved original position. Line and Column are
// zero-based, matching the engine's convention.
type Position struct {
	Source string
	Name   string
	Line   uint32
	Column uint32
}

// Source resolves a zero-based generated position to its original
// position. Returns false when no mapping covers the position.
func (c *Consumer) Source(line, column uint32) (Position, bool) {
	// The underlying library speaks 1-based lines and 0-based columns.
	source, name, origLine, origCol, ok := c.sm.Source(int(line)+1, int(column))
	if !ok || origLine < 1 || origCol < 0 {
		return Position{}, false
	}
	return Position{
		Source: source,
		Name:   name,
		Line:   uint32(origLine - 1),
		Column: uint32(origCol),
	}, true
}
