package game

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	InitialSpeed     = 500 * time.Millisecond
	TimerSeconds     = 15
	LineClearDelay   = 500 * time.Millisecond
	RotationPulse    = 200 * time.Millisecond
	SoftDropInterval = 50 * time.Millisecond

	maxKick = 2
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlaying
	PhasePaused
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseGameOver:
		return "game_over"
	}
	return "unknown"
}

// DropInterval returns the gravity interval at level: each level is 10%
// faster than the one before.
func DropInterval(level int) time.Duration {
	return time.Duration(math.Round(float64(InitialSpeed) * math.Pow(0.9, float64(level-1))))
}

// Session owns all state of one player's game. It is not safe for
// concurrent use: ticks and input must arrive on the same goroutine.
type Session struct {
	clock    Clock
	rnd      *Randomizer
	listener Listener
	reporter Reporter
	log      *zap.Logger
	name     string

	board    *Board
	supply   *Supply
	score    int
	level    int
	timeLeft int
	paused   bool
	gameOver bool
	started  bool

	clearingRows []int
	clearLevel   int
	clearSeq     uint64
	pulse        bool
	pulseSeq     uint64

	generation uint64
	events     scheduler

	lastTick     time.Time
	dropAcc      time.Duration
	timerAcc     time.Duration
	dropInterval time.Duration
	levelLatched bool
	lastSoftDrop time.Time
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rnd = NewRandomizer(rng) }
}

func WithListener(l Listener) Option {
	return func(s *Session) { s.listener = l }
}

func WithReporter(r Reporter) Option {
	return func(s *Session) { s.reporter = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithPlayerName(name string) Option {
	return func(s *Session) { s.name = name }
}

// NewSession returns an idle session. Nothing moves until StartNewGame.
func NewSession(opts ...Option) *Session {
	s := &Session{
		clock: systemClock{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = NewRandomizer(nil)
	}
	s.board = NewBoard()
	s.supply = NewSupply(s.rnd)
	s.level = 1
	s.timeLeft = TimerSeconds
	s.dropInterval = InitialSpeed
	s.lastTick = s.clock.Now()
	return s
}

// SetPlayerName changes the name attached to the next reported result.
func (s *Session) SetPlayerName(name string) {
	s.name = name
}

// --- State queries ---

func (s *Session) Phase() Phase {
	switch {
	case s.gameOver:
		return PhaseGameOver
	case !s.started:
		return PhaseIdle
	case s.paused:
		return PhasePaused
	}
	return PhasePlaying
}

func (s *Session) playing() bool {
	return s.started && !s.paused && !s.gameOver
}

func (s *Session) Board() *Board { return s.board }
func (s *Session) Active() Piece { return s.supply.Active() }
func (s *Session) Score() int { return s.score }
func (s *Session) Level() int { return s.level }
func (s *Session) TimeLeft() int { return s.timeLeft }
func (s *Session) Generation() uint64 { return s.generation }

// LineClearInProgress reports whether completed rows are still animating.
func (s *Session) LineClearInProgress() bool {
	return len(s.clearingRows) > 0
}

// Snapshot is a read-only view for the renderer.
type Snapshot struct {
	Phase         Phase
	Board         *Board
	Active        Piece
	Ghost         Position
	Lookahead     [LookaheadSize]Piece
	Score         int
	Level         int
	TimeLeft      int
	Paused        bool
	GameOver      bool
	Started       bool
	ClearingRows  []int
	RotationPulse bool
}

func (s *Session) Snapshot() Snapshot {
	active := s.supply.Active()
	rows := make([]int, len(s.clearingRows))
	copy(rows, s.clearingRows)
	return Snapshot{
		Phase:         s.Phase(),
		Board:         s.board.Clone(),
		Active:        active,
		Ghost:         GhostPosition(s.board, active),
		Lookahead:     s.supply.Lookahead(),
		Score:         s.score,
		Level:         s.level,
		TimeLeft:      s.timeLeft,
		Paused:        s.paused,
		GameOver:      s.gameOver,
		Started:       s.started,
		ClearingRows:  rows,
		RotationPulse: s.pulse,
	}
}

// --- Lifecycle ---

// StartNewGame abandons whatever was in progress and starts a fresh game.
// Deferred actions from the previous game are discarded. The start is
// announced with EventPause, the same cue as pausing.
func (s *Session) StartNewGame() {
	s.generation++
	s.events.reset()

	s.board = NewBoard()
	s.supply = NewSupply(s.rnd)
	s.score = 0
	s.level = 1
	s.timeLeft = TimerSeconds
	s.paused = false
	s.gameOver = false
	s.started = true

	s.clearingRows = nil
	s.pulse = false

	s.lastTick = s.clock.Now()
	s.dropAcc = 0
	s.timerAcc = 0
	s.dropInterval = InitialSpeed
	s.levelLatched = false
	s.lastSoftDrop = time.Time{}

	s.notify(EventPause)
	s.log.Debug("new game", zap.Uint64("generation", s.generation))
}

// TogglePause flips between playing and paused. It does nothing before a
// game starts or after it ends.
func (s *Session) TogglePause() bool {
	if !s.started || s.gameOver {
		return false
	}
	s.paused = !s.paused
	if !s.paused {
		s.lastTick = s.clock.Now()
	}
	s.notify(EventPause)
	return true
}

func (s *Session) endGame() {
	if len(s.clearingRows) > 0 {
		s.completeLineClear()
	}
	s.gameOver = true
	s.started = false
	s.notify(EventGameOver)

	s.log.Info("game over",
		zap.String("player", s.name),
		zap.Int("score", s.score),
		zap.Int("level", s.level),
		zap.Uint64("generation", s.generation))

	if s.score > 0 && s.reporter != nil {
		s.reporter.Report(Result{
			Name:       s.name,
			Score:      s.score,
			Level:      s.level,
			Timestamp:  s.clock.Now(),
			Generation: s.generation,
		})
	}
}

// --- Input ---

func (s *Session) MoveLeft() bool { return s.TryMove(-1, 0) }
func (s *Session) MoveRight() bool { return s.TryMove(1, 0) }
func (s *Session) SoftDrop() bool { return s.TryMove(0, 1) }

// TryMove translates the active piece. A rejected downward move lands the
// piece. Downward moves closer than SoftDropInterval to the previous one
// are ignored.
func (s *Session) TryMove(dx, dy int) bool {
	if !s.playing() {
		return false
	}
	now := s.clock.Now()
	if dy > 0 && !s.lastSoftDrop.IsZero() && now.Sub(s.lastSoftDrop) < SoftDropInterval {
		return false
	}

	p := s.supply.Active()
	if s.board.IsValidMove(p, dx, dy) {
		s.supply.setActive(p.Moved(dx, dy))
		if dy > 0 {
			s.lastSoftDrop = now
		}
		return true
	}

	if dy > 0 {
		s.land()
	}
	return false
}

// Rotate turns the active piece clockwise, trying horizontal kicks of
// 0, +1, -1, +2, -2 in that order.
func (s *Session) Rotate() bool {
	if !s.playing() {
		return false
	}
	p := s.supply.Active()
	rotated := p.Rotated()

	for i := 0; i <= maxKick; i++ {
		for _, dx := range [2]int{i, -i} {
			if !s.board.IsValidMove(rotated, dx, 0) {
				continue
			}
			s.supply.setActive(rotated.Moved(dx, 0))
			s.pulse = true
			s.pulseSeq++
			s.events.schedule(deferred{
				due:   s.clock.Now().Add(RotationPulse),
				gen:   s.generation,
				token: s.pulseSeq,
				kind:  deferredPulseEnd,
			})
			return true
		}
	}
	return false
}

// --- Landing and line clears ---

func (s *Session) land() {
	p := s.supply.Active()
	if len(s.clearingRows) > 0 {
		p = s.flushLineClear(p)
	}

	merged, completed := Merge(s.board, p)
	s.board = merged

	if len(completed) > 0 {
		s.clearingRows = completed
		s.clearLevel = s.level
		s.clearSeq++
		s.events.schedule(deferred{
			due:   s.clock.Now().Add(LineClearDelay),
			gen:   s.generation,
			token: s.clearSeq,
			kind:  deferredLineClear,
		})
		s.notify(EventLinesCleared)
	}

	next := s.supply.Advance()
	if !s.board.IsValidMove(next, 0, 0) {
		s.endGame()
	}
}

// flushLineClear finishes a pending clear early because p is landing on
// top of it. Every row being removed lies below p, so p moves down by the
// number of rows removed to keep its place in the stack.
func (s *Session) flushLineClear(p Piece) Piece {
	bottom := p.Y
	p.Cells(func(_, y int) {
		if y > bottom {
			bottom = y
		}
	})
	shift := 0
	for _, row := range s.clearingRows {
		if row > bottom {
			shift++
		}
	}
	s.completeLineClear()
	return p.Moved(0, shift)
}

func (s *Session) completeLineClear() {
	rows := s.clearingRows
	s.clearingRows = nil
	s.board = RemoveLines(s.board, rows)
	s.score += LineScore(len(rows), s.clearLevel)
	s.log.Debug("lines cleared", zap.Ints("rows", rows), zap.Int("score", s.score))
}

// --- Loop ---

// Tick advances the game by the wall-clock time elapsed since the previous
// tick. Deferred actions run in every phase; gravity and the level timer
// only run while playing.
func (s *Session) Tick() {
	now := s.clock.Now()
	s.runDue(now)

	elapsed := now.Sub(s.lastTick)
	s.lastTick = now
	if !s.playing() || elapsed <= 0 {
		return
	}

	s.dropAcc += elapsed
	if s.dropAcc >= s.dropInterval {
		s.TryMove(0, 1)
		s.dropAcc = 0
	}
	if !s.playing() {
		return
	}

	if s.timeLeft == TimerSeconds {
		s.levelLatched = false
	}
	s.timerAcc += elapsed
	if s.timerAcc >= time.Second {
		s.timerAcc = 0
		s.stepTimer()
	}
}

func (s *Session) stepTimer() {
	if s.timeLeft > 1 {
		s.timeLeft--
		return
	}
	if !s.levelLatched {
		s.levelLatched = true
		s.level++
		s.dropInterval = DropInterval(s.level)
		s.notify(EventLevelUp)
		s.log.Debug("level up", zap.Int("level", s.level))
	}
	s.timeLeft = TimerSeconds
}

func (s *Session) runDue(now time.Time) {
	for _, d := range s.events.popDue(now) {
		if d.gen != s.generation {
			continue
		}
		switch d.kind {
		case deferredLineClear:
			if d.token == s.clearSeq && len(s.clearingRows) > 0 {
				s.completeLineClear()
			}
		case deferredPulseEnd:
			if d.token == s.pulseSeq {
				s.pulse = false
			}
		}
	}
}

func (s *Session) notify(e Event) {
	if s.listener != nil {
		s.listener.OnEvent(e)
	}
}
