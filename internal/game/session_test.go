package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct {
	events  []Event
	results []Result
}

func (r *recorder) OnEvent(e Event) { r.events = append(r.events, e) }
func (r *recorder) Report(res Result) { r.results = append(r.results, res) }

func (r *recorder) count(e Event) int {
	n := 0
	for _, got := range r.events {
		if got == e {
			n++
		}
	}
	return n
}

func newTestSession(t *testing.T) (*Session, *fakeClock, *recorder) {
	t.Helper()
	clock := newFakeClock()
	rec := &recorder{}
	s := NewSession(
		WithClock(clock),
		WithRand(rand.New(rand.NewSource(42))),
		WithListener(rec),
		WithReporter(rec),
		WithPlayerName("tester"),
	)
	return s, clock, rec
}

// dropUntilLanded soft-drops with enough spacing to pass the rate limit and
// returns how many moves succeeded before the piece landed.
func dropUntilLanded(s *Session, clock *fakeClock) int {
	moves := 0
	for {
		clock.Advance(SoftDropInterval)
		if !s.SoftDrop() {
			return moves
		}
		moves++
	}
}

func TestIdleSessionRejectsInput(t *testing.T) {
	s, clock, rec := newTestSession(t)

	assert.Equal(t, PhaseIdle, s.Phase())
	assert.False(t, s.MoveLeft())
	assert.False(t, s.SoftDrop())
	assert.False(t, s.Rotate())
	assert.False(t, s.TogglePause())

	before := s.Active()
	clock.Advance(5 * time.Second)
	s.Tick()
	assert.Equal(t, before.Position, s.Active().Position)
	assert.Equal(t, TimerSeconds, s.TimeLeft())
	assert.Empty(t, rec.events)
}

func TestStartNewGameResetsState(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	s.score = 500
	s.level = 4
	s.timeLeft = 3
	s.board.Cells[19][0].Filled = true
	s.TogglePause()

	s.StartNewGame()

	snap := s.Snapshot()
	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, TimerSeconds, snap.TimeLeft)
	assert.False(t, snap.Paused)
	assert.False(t, snap.GameOver)
	assert.True(t, snap.Started)
	assert.False(t, snap.Board.Cell(0, 19).Filled)
	assert.Equal(t, uint64(2), s.Generation())
}

func TestStartNewGameAnnouncesStart(t *testing.T) {
	s, _, rec := newTestSession(t)
	s.StartNewGame()
	require.Equal(t, []Event{EventPause}, rec.events)

	s.StartNewGame()
	assert.Equal(t, 2, rec.count(EventPause))
}

func TestReportCarriesGeneration(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()
	s.StartNewGame()
	s.score = 10
	for x := 3; x <= 6; x++ {
		s.board.Cells[1][x] = Cell{Filled: true, Color: 8}
	}
	s.supply.setActive(pieceAt(PieceO, 0, 17))

	dropUntilLanded(s, clock)

	require.Len(t, rec.results, 1)
	assert.Equal(t, uint64(2), rec.results[0].Generation)
}

func TestOPieceFallsToFloor(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(NewPiece(PieceO))
	require.Equal(t, Position{X: 4, Y: 0}, s.Active().Position)

	moves := dropUntilLanded(s, clock)

	assert.Equal(t, BoardHeight-2, moves)
	b := s.Board()
	for _, y := range []int{18, 19} {
		for _, x := range []int{4, 5} {
			assert.True(t, b.Cell(x, y).Filled, "cell %d,%d", x, y)
			assert.Equal(t, ColorOf(PieceO), b.Cell(x, y).Color)
		}
	}
	assert.False(t, s.LineClearInProgress())
	assert.Equal(t, 0, s.Active().Y, "next piece spawned")
}

func TestLineClearIsDeferred(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()
	for x := 4; x < BoardWidth; x++ {
		s.board.Cells[19][x] = Cell{Filled: true, Color: 8}
	}
	s.supply.setActive(pieceAt(PieceI, 0, 0))

	dropUntilLanded(s, clock)

	snap := s.Snapshot()
	assert.Equal(t, []int{19}, snap.ClearingRows)
	assert.True(t, snap.Board.RowComplete(19), "merged board stays visible during the animation")
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, rec.count(EventLinesCleared))

	clock.Advance(LineClearDelay)
	s.Tick()

	b := s.Board()
	assert.False(t, s.LineClearInProgress())
	assert.Equal(t, 40, s.Score())
	for x := 0; x < BoardWidth; x++ {
		assert.False(t, b.Cell(x, 19).Filled, "row 19 col %d", x)
		assert.False(t, b.Cell(x, 0).Filled, "row 0 col %d", x)
	}
}

func TestLandingDuringLineClearFlushesIt(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	for x := 4; x < BoardWidth; x++ {
		s.board.Cells[19][x] = Cell{Filled: true, Color: 8}
	}
	s.supply.setActive(pieceAt(PieceI, 0, 0))
	dropUntilLanded(s, clock)
	require.True(t, s.LineClearInProgress())

	s.supply.setActive(pieceAt(PieceO, 0, 0))
	dropUntilLanded(s, clock)

	b := s.Board()
	assert.False(t, s.LineClearInProgress())
	assert.Equal(t, 40, s.Score())
	assert.True(t, b.Cell(0, 18).Filled)
	assert.True(t, b.Cell(1, 18).Filled)
	assert.True(t, b.Cell(0, 19).Filled)
	assert.True(t, b.Cell(1, 19).Filled)
	assert.False(t, b.Cell(2, 19).Filled)
	assert.False(t, b.Cell(9, 19).Filled)

	// The stale deferred clear must not remove anything now.
	clock.Advance(LineClearDelay)
	s.Tick()
	assert.Equal(t, 40, s.Score())
	assert.True(t, s.Board().Cell(0, 19).Filled)
}

func TestSoftDropRateLimit(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(NewPiece(PieceT))

	assert.True(t, s.SoftDrop())
	clock.Advance(SoftDropInterval - time.Millisecond)
	assert.False(t, s.SoftDrop())
	assert.Equal(t, 1, s.Active().Y)

	clock.Advance(time.Millisecond)
	assert.True(t, s.SoftDrop())
	assert.Equal(t, 2, s.Active().Y)

	// Sideways moves are not rate limited.
	assert.True(t, s.MoveLeft())
	assert.True(t, s.MoveRight())
}

func TestHorizontalMoveBlockedHasNoSideEffect(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(pieceAt(PieceO, 0, 5))

	assert.False(t, s.MoveLeft())
	assert.Equal(t, Position{X: 0, Y: 5}, s.Active().Position)
	assert.False(t, s.LineClearInProgress())
	assert.Equal(t, PhasePlaying, s.Phase())
}

func TestTimerRaisesLevelOncePerCycle(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()

	for i := 1; i < TimerSeconds; i++ {
		clock.Advance(time.Second)
		s.Tick()
		require.Equal(t, 1, s.Level())
		require.Equal(t, TimerSeconds-i, s.TimeLeft())
	}

	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, TimerSeconds, s.TimeLeft())
	assert.Equal(t, 1, rec.count(EventLevelUp))
	assert.Equal(t, DropInterval(2), s.dropInterval)

	clock.Advance(time.Second)
	s.Tick()
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, TimerSeconds-1, s.TimeLeft())
}

func TestTimerIgnoresSubSecondTicks(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()

	for i := 0; i < 9; i++ {
		clock.Advance(100 * time.Millisecond)
		s.Tick()
	}
	assert.Equal(t, TimerSeconds, s.TimeLeft())

	clock.Advance(100 * time.Millisecond)
	s.Tick()
	assert.Equal(t, TimerSeconds-1, s.TimeLeft())
}

func TestGravityFollowsDropInterval(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(NewPiece(PieceT))

	clock.Advance(InitialSpeed - time.Millisecond)
	s.Tick()
	assert.Equal(t, 0, s.Active().Y)

	clock.Advance(time.Millisecond)
	s.Tick()
	assert.Equal(t, 1, s.Active().Y)
}

func TestPauseStopsGravityAndTimer(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(NewPiece(PieceT))

	require.True(t, s.TogglePause())
	assert.Equal(t, PhasePaused, s.Phase())
	assert.False(t, s.MoveLeft())
	assert.False(t, s.Rotate())

	clock.Advance(10 * time.Second)
	s.Tick()
	assert.Equal(t, 0, s.Active().Y)
	assert.Equal(t, TimerSeconds, s.TimeLeft())

	require.True(t, s.TogglePause())
	clock.Advance(100 * time.Millisecond)
	s.Tick()
	assert.Equal(t, 0, s.Active().Y, "paused time does not count toward gravity")
	assert.Equal(t, 3, rec.count(EventPause), "start, pause and resume")
}

func TestDropInterval(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, DropInterval(1))
	assert.Equal(t, 450*time.Millisecond, DropInterval(2))
	assert.Equal(t, 405*time.Millisecond, DropInterval(3))
	assert.Less(t, DropInterval(30), DropInterval(29))
}

func TestRotateWallKick(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	vertical := pieceAt(PieceI, -2, 5).Rotated()
	require.True(t, s.board.IsValidMove(vertical, 0, 0))
	s.supply.setActive(vertical)

	require.True(t, s.Rotate())

	got := s.Active()
	assert.Equal(t, 0, got.X, "kicked +2 away from the wall")
	assert.Equal(t, 5, got.Y)
	assert.True(t, RotateShape(RotateShape(SeedShape(PieceI))).Equal(got.Shape))
}

func TestRotateKickOrderPrefersRight(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	// T at x=4 rotated in place would overlap (5,7); both +1 and -1 are free.
	s.board.Cells[7][5] = Cell{Filled: true, Color: 8}
	s.supply.setActive(pieceAt(PieceT, 4, 5))

	require.True(t, s.Rotate())
	assert.Equal(t, 5, s.Active().X)
}

func TestRotateBlockedKeepsPiece(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if y != 1 || x < 3 || x > 6 {
				s.board.Cells[y][x] = Cell{Filled: true, Color: 8}
			}
		}
	}
	start := pieceAt(PieceI, 3, 0)
	s.supply.setActive(start)

	assert.False(t, s.Rotate())
	assert.True(t, start.Shape.Equal(s.Active().Shape))
	assert.Equal(t, start.Position, s.Active().Position)
	assert.False(t, s.Snapshot().RotationPulse)
}

func TestRotationPulseClears(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(pieceAt(PieceT, 4, 5))

	require.True(t, s.Rotate())
	assert.True(t, s.Snapshot().RotationPulse)

	clock.Advance(150 * time.Millisecond)
	require.True(t, s.Rotate())

	clock.Advance(60 * time.Millisecond)
	s.Tick()
	assert.True(t, s.Snapshot().RotationPulse, "first pulse's clear must not end the second pulse")

	clock.Advance(150 * time.Millisecond)
	s.Tick()
	assert.False(t, s.Snapshot().RotationPulse)
}

func TestNewGameDropsDeferredActions(t *testing.T) {
	s, clock, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(pieceAt(PieceT, 4, 5))
	require.True(t, s.Rotate())
	require.Equal(t, 1, s.events.pending())

	s.StartNewGame()
	assert.Equal(t, 0, s.events.pending())
	assert.False(t, s.Snapshot().RotationPulse)

	s.supply.setActive(pieceAt(PieceT, 4, 5))
	require.True(t, s.Rotate())
	clock.Advance(RotationPulse)
	s.Tick()
	assert.False(t, s.Snapshot().RotationPulse)
}

func TestGameOverWhenSpawnBlocked(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()
	for y := 0; y < 2; y++ {
		for x := 3; x <= 6; x++ {
			s.board.Cells[y][x] = Cell{Filled: true, Color: 8}
		}
	}
	s.supply.setActive(pieceAt(PieceO, 0, 17))

	dropUntilLanded(s, clock)

	assert.Equal(t, PhaseGameOver, s.Phase())
	snap := s.Snapshot()
	assert.True(t, snap.GameOver)
	assert.False(t, snap.Started)
	assert.Equal(t, 1, rec.count(EventGameOver))
	assert.Empty(t, rec.results, "zero scores are not reported")

	assert.False(t, s.SoftDrop())
	assert.False(t, s.TogglePause())
}

func TestGameOverReportsScoreOnce(t *testing.T) {
	s, clock, rec := newTestSession(t)
	s.StartNewGame()
	s.score = 340
	s.level = 3
	for y := 0; y < 2; y++ {
		for x := 3; x <= 6; x++ {
			s.board.Cells[y][x] = Cell{Filled: true, Color: 8}
		}
	}
	s.supply.setActive(pieceAt(PieceO, 0, 17))

	dropUntilLanded(s, clock)
	clock.Advance(time.Second)
	s.Tick()

	require.Len(t, rec.results, 1)
	assert.Equal(t, Result{Name: "tester", Score: 340, Level: 3, Timestamp: rec.results[0].Timestamp, Generation: 1}, rec.results[0])
	assert.False(t, rec.results[0].Timestamp.IsZero())
}

func TestSnapshotGhost(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.StartNewGame()
	s.supply.setActive(NewPiece(PieceO))

	snap := s.Snapshot()
	assert.Equal(t, Position{X: 4, Y: 18}, snap.Ghost)
	assert.Len(t, snap.Lookahead, LookaheadSize)
}
