package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/savefile"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct{ events []Event }

func (r *recorder) listen(e Event) { r.events = append(r.events, e) }

func (r *recorder) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *recorder) last(kind EventKind) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func newTestSession(t *testing.T, columns, rows int) (*Session, *fakeClock, *recorder) {
	t.Helper()
	s, err := New(columns, rows, rand.New(rand.NewPCG(1, 2)), savefile.New(afero.NewMemMapFs()))
	require.NoError(t, err)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.timer = newPlayTimer(clock.Now)
	rec := &recorder{}
	s.Subscribe(rec.listen)
	return s, clock, rec
}

// startWith lays the given mines and puts the session into a running game,
// as if the first click had already happened.
func startWith(t *testing.T, s *Session, mineCoords ...mines.Coordinate) {
	t.Helper()
	require.NoError(t, s.board.SetMineCount(len(mineCoords)))
	require.NoError(t, s.board.LayMines(mineCoords))
	mines.ComputeNeighborCounts(s.board)
	s.restart()
	s.initialClickDone = true
	s.state = Active
	s.timer.Start()
}

func TestNewGameDefaultRatio(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	assert.Equal(t, 10, s.MineCount())
	assert.Equal(t, 10, s.MinesRemaining())
	assert.Equal(t, 71, s.UnopenedNonMineCount())
	assert.Equal(t, Inactive, s.State())
	assert.False(t, s.InitialClickDone())
	assert.Empty(t, s.Mines())
}

func TestNewRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 9}, {9, 0}, {-3, -3}, {1, 1}, {1<<62 + 1, 4}, {100_000, 100_000}} {
		_, err := New(dims[0], dims[1], rand.New(rand.NewPCG(1, 2)), nil)
		assert.ErrorIs(t, err, mines.ErrInvalidDimension, "%v", dims)
	}
}

func TestFirstClickIsAlwaysSafe(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for col := range 9 {
		for row := range 9 {
			s, err := New(9, 9, r, nil)
			require.NoError(t, err)
			rec := &recorder{}
			s.Subscribe(rec.listen)

			first := mines.At(col, row)
			outcome, err := s.OnCellLeftClickReleased(first)
			require.NoError(t, err)
			assert.NotEqual(t, Exploded, outcome)
			assert.NotContains(t, s.Mines(), first)
			assert.Len(t, s.Mines(), 10)
			assert.True(t, s.InitialClickDone())
			assert.Contains(t, rec.kinds(), GameStarted)
			if !s.GameOver() {
				assert.Equal(t, Active, s.State())
			}
		}
	}
}

func TestMarkCycle(t *testing.T) {
	s, _, rec := newTestSession(t, 9, 9)
	c := mines.At(4, 4)

	require.NoError(t, s.OnCellRightClickReleased(c))
	cell, _ := s.Cell(c)
	assert.True(t, cell.HasFlag())
	assert.Equal(t, 9, s.MinesRemaining())

	require.NoError(t, s.OnCellRightClickReleased(c))
	cell, _ = s.Cell(c)
	assert.True(t, cell.HasQuestionMark())
	assert.False(t, cell.HasFlag())
	assert.Equal(t, 10, s.MinesRemaining())

	require.NoError(t, s.OnCellRightClickReleased(c))
	cell, _ = s.Cell(c)
	assert.False(t, cell.Marked())
	assert.Equal(t, 10, s.MinesRemaining())

	e, ok := rec.last(MinesRemainingChanged)
	require.True(t, ok)
	assert.Equal(t, 10, *e.Count)
}

func TestMarkedCellIgnoresLeftClick(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	c := mines.At(0, 0)
	require.NoError(t, s.OnCellRightClickReleased(c))

	outcome, err := s.OnCellLeftClickReleased(c)
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
	assert.False(t, s.InitialClickDone())

	require.NoError(t, s.OnCellRightClickReleased(c))
	outcome, err = s.OnCellLeftClickReleased(c)
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
}

func TestResizeResetsActiveGame(t *testing.T) {
	s, _, rec := newTestSession(t, 9, 9)
	_, err := s.OnCellLeftClickReleased(mines.At(4, 4))
	require.NoError(t, err)
	require.Equal(t, 1, s.MovesMade())

	require.NoError(t, s.Resize(16, 16))
	assert.Equal(t, 0, s.MovesMade())
	assert.Equal(t, Inactive, s.State())
	assert.False(t, s.InitialClickDone())
	assert.Equal(t, 40, s.MineCount())
	assert.Equal(t, 16, s.Columns())
	assert.Equal(t, ReadyToBeginNewGame, rec.events[len(rec.events)-3].Kind)
}

func TestResizeFailureKeepsSession(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	assert.ErrorIs(t, s.Resize(0, 4), mines.ErrInvalidDimension)
	assert.ErrorIs(t, s.Resize(1<<62+1, 4), mines.ErrInvalidDimension)
	assert.Equal(t, 9, s.Columns())
	assert.Equal(t, 10, s.MineCount())
}

func TestCustomMineRatio(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	assert.ErrorIs(t, s.SetCustomMineRatio(0), mines.ErrInvalidMineRatio)
	assert.ErrorIs(t, s.SetCustomMineRatio(1), mines.ErrInvalidMineRatio)

	require.NoError(t, s.SetCustomMineRatio(0.5))
	assert.Equal(t, 10, s.MineCount())
	require.NoError(t, s.Resize(10, 10))
	assert.Equal(t, 50, s.MineCount())

	s.ClearCustomMineRatio()
	require.NoError(t, s.Resize(9, 9))
	assert.Equal(t, 10, s.MineCount())
}

func TestRevealNumberedCellOnly(t *testing.T) {
	s, _, rec := newTestSession(t, 5, 5)
	startWith(t, s, mines.At(1, 1), mines.At(3, 1), mines.At(2, 3))

	c := mines.At(2, 2)
	cell, _ := s.Cell(c)
	require.Equal(t, 3, cell.NeighborMineCount())

	outcome, err := s.OnCellLeftClickReleased(c)
	require.NoError(t, err)
	assert.Equal(t, Opened, outcome)
	assert.Equal(t, 1, s.MovesMade())

	revealed := 0
	for _, cell := range s.Cells() {
		if cell.IsRevealed() {
			revealed++
		}
	}
	assert.Equal(t, 1, revealed)
	e, ok := rec.last(CellRevealed)
	require.True(t, ok)
	assert.Equal(t, c, *e.Coord)
}

func TestExplosionFreezesBoard(t *testing.T) {
	s, clock, rec := newTestSession(t, 4, 4)
	startWith(t, s, mines.At(0, 0), mines.At(3, 3))
	clock.Advance(3 * time.Second)

	outcome, err := s.OnCellLeftClickReleased(mines.At(0, 0))
	require.NoError(t, err)
	assert.Equal(t, Exploded, outcome)
	assert.True(t, s.GameOver())
	assert.False(t, s.Won())
	assert.Equal(t, Inactive, s.State())
	assert.Equal(t, 0, s.MovesMade())
	assert.Contains(t, rec.kinds(), MineExploded)

	for c, cell := range s.Cells() {
		assert.True(t, cell.BlocksClicks(), c.String())
	}

	clock.Advance(time.Minute)
	assert.Equal(t, 3*time.Second, s.TotalElapsed())

	outcome, err = s.OnCellLeftClickReleased(mines.At(2, 2))
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
	require.NoError(t, s.OnCellRightClickReleased(mines.At(2, 2)))
	cell, _ := s.Cell(mines.At(2, 2))
	assert.False(t, cell.HasFlag())
}

func TestWin(t *testing.T) {
	s, _, rec := newTestSession(t, 3, 3)
	startWith(t, s, mines.At(2, 2))

	outcome, err := s.OnCellLeftClickReleased(mines.At(0, 0))
	require.NoError(t, err)
	assert.Equal(t, Cascaded, outcome)

	assert.Equal(t, 0, s.UnopenedNonMineCount())
	assert.True(t, s.GameOver())
	assert.True(t, s.Won())
	assert.Equal(t, 0, s.MinesRemaining())
	assert.Equal(t, GameWon, rec.events[len(rec.events)-1].Kind)

	mine, _ := s.Cell(mines.At(2, 2))
	assert.True(t, mine.HasFlag())
	assert.False(t, mine.IsRevealed())
}

func TestWinNeedsEveryNonMineCell(t *testing.T) {
	s, _, rec := newTestSession(t, 3, 1)
	startWith(t, s, mines.At(1, 0))

	_, err := s.OnCellLeftClickReleased(mines.At(0, 0))
	require.NoError(t, err)
	assert.False(t, s.GameOver())
	assert.Equal(t, 1, s.UnopenedNonMineCount())
	assert.NotContains(t, rec.kinds(), GameWon)

	_, err = s.OnCellLeftClickReleased(mines.At(2, 0))
	require.NoError(t, err)
	assert.True(t, s.Won())
	assert.Equal(t, 2, s.MovesMade())
}

func TestRevealedCellIgnoresClicks(t *testing.T) {
	s, _, _ := newTestSession(t, 4, 1)
	startWith(t, s, mines.At(3, 0))
	_, err := s.OnCellLeftClickReleased(mines.At(2, 0))
	require.NoError(t, err)

	outcome, err := s.OnCellLeftClickReleased(mines.At(2, 0))
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)
	assert.Equal(t, 1, s.MovesMade())
}

func TestOutOfBoundsClick(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	_, err := s.OnCellLeftClickReleased(mines.At(9, 0))
	assert.ErrorIs(t, err, mines.ErrOutOfBounds)
	assert.ErrorIs(t, s.OnCellRightClickReleased(mines.At(-1, 0)), mines.ErrOutOfBounds)
	assert.False(t, s.InitialClickDone())
}

func TestPauseResume(t *testing.T) {
	s, clock, rec := newTestSession(t, 4, 4)

	s.Pause()
	assert.Equal(t, Inactive, s.State())
	assert.NotContains(t, rec.kinds(), GamePaused)

	startWith(t, s, mines.At(0, 0))
	s.Resume()
	assert.Equal(t, Active, s.State())
	assert.NotContains(t, rec.kinds(), GameResumed)

	clock.Advance(2 * time.Second)
	s.Pause()
	assert.Equal(t, Paused, s.State())
	assert.True(t, s.IsTimerPaused())
	clock.Advance(time.Hour)
	assert.Equal(t, 2*time.Second, s.TotalElapsed())

	outcome, err := s.OnCellLeftClickReleased(mines.At(3, 3))
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)

	s.Resume()
	assert.Equal(t, Active, s.State())
	clock.Advance(time.Second)
	assert.Equal(t, 3*time.Second, s.TotalElapsed())
	assert.Equal(t, []EventKind{GamePaused, GameResumed}, filter(rec.kinds(), GamePaused, GameResumed))
}

func filter(kinds []EventKind, keep ...EventKind) []EventKind {
	var out []EventKind
	for _, k := range kinds {
		for _, want := range keep {
			if k == want {
				out = append(out, k)
			}
		}
	}
	return out
}

func TestPauseAfterGameOver(t *testing.T) {
	s, _, _ := newTestSession(t, 4, 4)
	startWith(t, s, mines.At(0, 0))
	_, err := s.OnCellLeftClickReleased(mines.At(0, 0))
	require.NoError(t, err)

	s.Pause()
	assert.Equal(t, Inactive, s.State())
}

func TestReset(t *testing.T) {
	s, _, _ := newTestSession(t, 9, 9)
	_, err := s.OnCellLeftClickReleased(mines.At(4, 4))
	require.NoError(t, err)
	require.NoError(t, s.OnCellRightClickReleased(mines.At(0, 0)))

	s.Reset()
	assert.Equal(t, Inactive, s.State())
	assert.Equal(t, 0, s.MovesMade())
	assert.Equal(t, 10, s.MinesRemaining())
	assert.Equal(t, 71, s.UnopenedNonMineCount())
	assert.Equal(t, 9, s.Columns())
	assert.Empty(t, s.Mines())
	assert.Zero(t, s.TotalElapsed())
	for _, cell := range s.Cells() {
		assert.False(t, cell.IsRevealed())
		assert.False(t, cell.Marked())
	}
}

func TestChord(t *testing.T) {
	s, _, _ := newTestSession(t, 3, 3)
	startWith(t, s, mines.At(0, 0))

	_, err := s.OnCellLeftClickReleased(mines.At(1, 1))
	require.NoError(t, err)

	outcome, err := s.OnCellChord(mines.At(1, 1))
	require.NoError(t, err)
	assert.Equal(t, Ignored, outcome)

	require.NoError(t, s.OnCellRightClickReleased(mines.At(0, 0)))
	outcome, err = s.OnCellChord(mines.At(1, 1))
	require.NoError(t, err)
	assert.Equal(t, Cascaded, outcome)
	assert.True(t, s.Won())
	assert.Equal(t, 2, s.MovesMade())
}

func TestChordOnWrongFlagExplodes(t *testing.T) {
	s, _, rec := newTestSession(t, 3, 3)
	startWith(t, s, mines.At(0, 0))
	_, err := s.OnCellLeftClickReleased(mines.At(1, 1))
	require.NoError(t, err)
	require.NoError(t, s.OnCellRightClickReleased(mines.At(2, 2)))

	outcome, err := s.OnCellChord(mines.At(1, 1))
	require.NoError(t, err)
	assert.Equal(t, Exploded, outcome)
	assert.True(t, s.GameOver())
	assert.Contains(t, rec.kinds(), MineExploded)
}

func TestUnsubscribe(t *testing.T) {
	s, _, _ := newTestSession(t, 4, 4)
	calls := 0
	unsubscribe := s.Subscribe(func(Event) { calls++ })
	s.Reset()
	n := calls
	unsubscribe()
	s.Reset()
	assert.Equal(t, n, calls)
}
