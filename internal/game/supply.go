package game

const LookaheadSize = 3

// Supply owns the active piece and the lookahead queue.
type Supply struct {
	rnd       *Randomizer
	active    Piece
	lookahead [LookaheadSize]Piece
}

// NewSupply draws the active piece and a full lookahead independently.
func NewSupply(rnd *Randomizer) *Supply {
	s := &Supply{rnd: rnd}
	s.active = rnd.Next()
	for i := range s.lookahead {
		s.lookahead[i] = rnd.Next()
	}
	return s
}

// Active returns the current piece.
func (s *Supply) Active() Piece {
	return s.active
}

// Lookahead returns the upcoming pieces, head first.
func (s *Supply) Lookahead() [LookaheadSize]Piece {
	return s.lookahead
}

// Advance promotes the queue head to active and appends one fresh draw.
func (s *Supply) Advance() Piece {
	s.active = s.lookahead[0]
	copy(s.lookahead[:], s.lookahead[1:])
	s.lookahead[LookaheadSize-1] = s.rnd.Next()
	return s.active
}

func (s *Supply) setActive(p Piece) {
	s.active = p
}
