package game

// GhostPosition returns where p would come to rest if dropped straight down.
func GhostPosition(b *Board, p Piece) Position {
	ghost := p
	for b.IsValidMove(ghost, 0, 1) {
		ghost.Y++
	}
	return ghost.Position
}

// OverlapsActive reports whether (x, y) is covered both by the ghost at
// ghost and by the active piece itself. The renderer draws no ghost there.
func OverlapsActive(p Piece, ghost Position, x, y int) bool {
	return covers(p.Shape, ghost, x, y) && covers(p.Shape, p.Position, x, y)
}

func covers(s Shape, at Position, x, y int) bool {
	sy, sx := y-at.Y, x-at.X
	if sy < 0 || sy >= len(s) || sx < 0 || sx >= len(s[sy]) {
		return false
	}
	return s[sy][sx]
}
