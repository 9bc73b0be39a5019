package source

// Position represents a specific location in the source code with line, column, and index information.
type Position struct {
	Line   int // Line number in the source code (1-based).
	Column int // Column number in the source code (1-based).
	Index  int // Byte index in the source code.
}

// NewPosition creates a Position for the given line and column.
func NewPosition(line, column int) *Position {
	return &Position{Line: line, Column: column}
}

// Before reports whether p appears strictly before other in the file.
func (p *Position) Before(other *Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}
