package game

var basePoints = [...]int{0, 40, 100, 300, 1200}

// Merge stamps p into a copy of b and returns the copy along with the
// completed rows in ascending order. Cells above row 0 are dropped.
func Merge(b *Board, p Piece) (*Board, []int) {
	merged := b.Clone()
	p.Cells(func(x, y int) {
		if y >= 0 && y < BoardHeight && x >= 0 && x < BoardWidth {
			merged.Cells[y][x] = Cell{Filled: true, Color: p.Color}
		}
	})

	var completed []int
	for y := 0; y < BoardHeight; y++ {
		if merged.RowComplete(y) {
			completed = append(completed, y)
		}
	}
	return merged, completed
}

// RemoveLines returns a copy of b with each listed row deleted and an empty
// row inserted at the top, processed in the given order.
func RemoveLines(b *Board, rows []int) *Board {
	out := b.Clone()
	for _, row := range rows {
		if row < 0 || row >= BoardHeight {
			continue
		}
		copy(out.Cells[1:row+1], out.Cells[0:row])
		out.Cells[0] = [BoardWidth]Cell{}
	}
	return out
}

// LineScore returns the points for clearing n lines at level. Clearing more
// than four lines at once cannot happen and scores nothing.
func LineScore(n, level int) int {
	if n < 0 || n >= len(basePoints) {
		return 0
	}
	return basePoints[n] * level
}
