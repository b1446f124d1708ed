package game

import (
	"math/rand"
	"time"
)

type PieceType int

const (
	PieceI PieceType = iota
	PieceJ
	PieceL
	PieceO
	PieceS
	PieceT
	PieceZ
	pieceTypeCount
)

// PieceTypes lists every piece type in catalog order.
var PieceTypes = [pieceTypeCount]PieceType{PieceI, PieceJ, PieceL, PieceO, PieceS, PieceT, PieceZ}

func (t PieceType) Valid() bool {
	return t >= 0 && t < pieceTypeCount
}

func (t PieceType) String() string {
	if !t.Valid() {
		return "?"
	}
	return "IJLOSTZ"[t : t+1]
}

// Shape is a rectangular occupancy matrix, indexed [row][col].
type Shape [][]bool

// Width returns the number of columns.
func (s Shape) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Equal reports whether two shapes have the same dimensions and cells.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for y := range s {
		if len(s[y]) != len(o[y]) {
			return false
		}
		for x := range s[y] {
			if s[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}

func (s Shape) clone() Shape {
	out := make(Shape, len(s))
	for y := range s {
		out[y] = make([]bool, len(s[y]))
		copy(out[y], s[y])
	}
	return out
}

type tetromino struct {
	shape Shape
	color Color
}

var catalog = [pieceTypeCount]tetromino{
	PieceI: {
		shape: Shape{
			{false, false, false, false},
			{true, true, true, true},
			{false, false, false, false},
			{false, false, false, false},
		},
		color: 1,
	},
	PieceJ: {
		shape: Shape{
			{true, false, false},
			{true, true, true},
			{false, false, false},
		},
		color: 2,
	},
	PieceL: {
		shape: Shape{
			{false, false, true},
			{true, true, true},
			{false, false, false},
		},
		color: 3,
	},
	PieceO: {
		shape: Shape{
			{true, true},
			{true, true},
		},
		color: 4,
	},
	PieceS: {
		shape: Shape{
			{false, true, true},
			{true, true, false},
			{false, false, false},
		},
		color: 5,
	},
	PieceT: {
		shape: Shape{
			{false, true, false},
			{true, true, true},
			{false, false, false},
		},
		color: 6,
	},
	PieceZ: {
		shape: Shape{
			{true, true, false},
			{false, true, true},
			{false, false, false},
		},
		color: 7,
	},
}

// SeedShape returns a copy of the spawn orientation of t.
func SeedShape(t PieceType) Shape {
	return catalog[t].shape.clone()
}

// ColorOf returns the fixed color of t.
func ColorOf(t PieceType) Color {
	return catalog[t].color
}

// RotateShape returns s rotated 90 degrees clockwise.
func RotateShape(s Shape) Shape {
	rows, cols := len(s), s.Width()
	out := make(Shape, cols)
	for i := 0; i < cols; i++ {
		out[i] = make([]bool, rows)
		for j := 0; j < rows; j++ {
			out[i][j] = s[rows-1-j][i]
		}
	}
	return out
}

type Position struct {
	X, Y int
}

// Piece is a value; moving or rotating returns a new Piece.
type Piece struct {
	Type  PieceType
	Shape Shape
	Color Color
	Position
}

// NewPiece returns a piece of type t at its spawn position, horizontally
// centered on row 0.
func NewPiece(t PieceType) Piece {
	shape := SeedShape(t)
	return Piece{
		Type:     t,
		Shape:    shape,
		Color:    ColorOf(t),
		Position: Position{X: BoardWidth/2 - shape.Width()/2, Y: 0},
	}
}

// Moved returns p translated by (dx, dy).
func (p Piece) Moved(dx, dy int) Piece {
	p.X += dx
	p.Y += dy
	return p
}

// Rotated returns p with its shape rotated clockwise, same position.
func (p Piece) Rotated() Piece {
	p.Shape = RotateShape(p.Shape)
	return p
}

// Cells calls fn with the board coordinates of every occupied cell.
func (p Piece) Cells(fn func(x, y int)) {
	for y, row := range p.Shape {
		for x, filled := range row {
			if filled {
				fn(p.X+x, p.Y+y)
			}
		}
	}
}

// Randomizer draws piece types uniformly and independently.
type Randomizer struct {
	rng *rand.Rand
}

// NewRandomizer wraps rng. A nil rng is seeded from the current time.
func NewRandomizer(rng *rand.Rand) *Randomizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Randomizer{rng: rng}
}

// Next returns a freshly spawned piece of a random type.
func (r *Randomizer) Next() Piece {
	return NewPiece(PieceTypes[r.rng.Intn(len(PieceTypes))])
}
