package game

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Color is a palette index. Zero means no color.
type Color int

type Cell struct {
	Filled bool
	Color  Color
}

// Board is a fixed BoardHeight x BoardWidth grid, row 0 at the top.
type Board struct {
	Cells [BoardHeight][BoardWidth]Cell
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// Cell returns the cell at (x, y). Out of range coordinates read as empty.
func (b *Board) Cell(x, y int) Cell {
	if x < 0 || x >= BoardWidth || y < 0 || y >= BoardHeight {
		return Cell{}
	}
	return b.Cells[y][x]
}

// RowComplete reports whether every cell of row y is filled.
func (b *Board) RowComplete(y int) bool {
	for x := 0; x < BoardWidth; x++ {
		if !b.Cells[y][x].Filled {
			return false
		}
	}
	return true
}

// IsValidMove reports whether p translated by (dx, dy) fits on the board.
// Cells above row 0 only need a valid column, so pieces can spawn partly
// above the visible board.
func (b *Board) IsValidMove(p Piece, dx, dy int) bool {
	for y, row := range p.Shape {
		for x, filled := range row {
			if !filled {
				continue
			}
			newX := p.X + x + dx
			newY := p.Y + y + dy
			if newX < 0 || newX >= BoardWidth {
				return false
			}
			if newY >= BoardHeight {
				return false
			}
			if newY >= 0 && b.Cells[newY][newX].Filled {
				return false
			}
		}
	}
	return true
}
