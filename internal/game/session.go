package game

import (
	"iter"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/savefile"
)

var Log = logrus.New()

type State uint8

const (
	Inactive State = iota
	Active
	Paused
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	default:
		return "inactive"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome tells the host how a left click went. Cascaded and Opened differ
// only in how long a host may want to show its success feedback.
type Outcome uint8

const (
	Ignored Outcome = iota
	Opened
	Cascaded
	Exploded
)

// Session is one live game: the board, its counters and its state. It is
// not safe for concurrent use; the host serializes calls.
type Session struct {
	board            *mines.Board
	state            State
	gameOver         bool
	won              bool
	initialClickDone bool
	movesMade        int
	minesRemaining   int
	unopenedNonMine  int
	timer            PlayTimer

	ratio     float64
	rnd       *rand.Rand
	codec     *savefile.Codec
	listeners map[int]Listener
	nextID    int
}

// New starts an inactive game on a columns x rows board. A nil codec saves to
// the OS filesystem.
func New(columns, rows int, r *rand.Rand, codec *savefile.Codec) (*Session, error) {
	if codec == nil {
		codec = savefile.New(nil)
	}
	s := &Session{
		rnd:       r,
		codec:     codec,
		timer:     newPlayTimer(nil),
		listeners: make(map[int]Listener),
	}
	if err := s.Resize(columns, rows); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe registers l for every event raised from now on. The returned
// function removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() { delete(s.listeners, id) }
}

func (s *Session) emit(e Event) {
	for _, l := range s.listeners {
		l(e)
	}
}

func (s *Session) State() State                { return s.state }
func (s *Session) GameOver() bool              { return s.gameOver }
func (s *Session) Won() bool                   { return s.won }
func (s *Session) InitialClickDone() bool      { return s.initialClickDone }
func (s *Session) MovesMade() int              { return s.movesMade }
func (s *Session) MinesRemaining() int         { return s.minesRemaining }
func (s *Session) UnopenedNonMineCount() int   { return s.unopenedNonMine }
func (s *Session) TotalElapsed() time.Duration { return s.timer.Elapsed() }
func (s *Session) IsTimerPaused() bool         { return s.timer.IsPaused() }
func (s *Session) Columns() int                { return s.board.Columns() }
func (s *Session) Rows() int                   { return s.board.Rows() }
func (s *Session) MineCount() int              { return s.board.MineCount() }
func (s *Session) CustomMineRatio() float64    { return s.ratio }

// Cell returns a copy of the cell at c.
func (s *Session) Cell(c mines.Coordinate) (mines.Cell, error) {
	cell, err := s.board.CellAt(c)
	if err != nil {
		return mines.Cell{}, err
	}
	return *cell, nil
}

// Cells yields a copy of every cell in row-major order.
func (s *Session) Cells() iter.Seq2[mines.Coordinate, mines.Cell] {
	return func(yield func(mines.Coordinate, mines.Cell) bool) {
		for c, cell := range s.board.All() {
			if !yield(c, *cell) {
				return
			}
		}
	}
}

// Mines returns the mined coordinates. It is empty before the first click.
func (s *Session) Mines() []mines.Coordinate {
	return s.board.Mines()
}

func (s *Session) String() string {
	return s.board.String()
}

// SetCustomMineRatio makes the next resize derive the mine count from ratio
// instead of the default table.
func (s *Session) SetCustomMineRatio(ratio float64) error {
	if err := mines.ValidateRatio(ratio); err != nil {
		return err
	}
	s.ratio = ratio
	return nil
}

// ClearCustomMineRatio goes back to the default ratio table.
func (s *Session) ClearCustomMineRatio() {
	s.ratio = 0
}

// NewGame is Resize under the name hosts use for starting over at a size.
func (s *Session) NewGame(columns, rows int) error {
	return s.Resize(columns, rows)
}

// Resize rebuilds the board and starts over. On error nothing changes.
func (s *Session) Resize(columns, rows int) error {
	if err := mines.ValidateDimensions(columns, rows); err != nil {
		return err
	}
	mineCount, err := mines.MineCountFor(columns*rows, s.ratio)
	if err != nil {
		return err
	}

	board, err := mines.NewBoard(columns, rows)
	if err != nil {
		return err
	}
	if err := board.SetMineCount(mineCount); err != nil {
		return err
	}
	s.board = board

	Log.WithFields(logrus.Fields{
		"columns": columns,
		"rows":    rows,
		"mines":   mineCount,
	}).Debug("board resized")

	s.restart()
	return nil
}

// Reset clears the current board without resizing it.
func (s *Session) Reset() {
	s.board.Clear()
	Log.Debug("board reset")
	s.restart()
}

func (s *Session) restart() {
	s.state = Inactive
	s.gameOver = false
	s.won = false
	s.initialClickDone = false
	s.movesMade = 0
	s.minesRemaining = s.board.MineCount()
	s.unopenedNonMine = s.board.TotalCellCount() - s.board.MineCount()
	s.timer.Reset()

	s.emit(Event{Kind: ReadyToBeginNewGame})
	s.emit(countEvent(MovesMadeChanged, s.movesMade))
	s.emit(countEvent(MinesRemainingChanged, s.minesRemaining))
}

// clickable returns the cell at c if input on it should be processed.
func (s *Session) clickable(c mines.Coordinate) (*mines.Cell, error) {
	cell, err := s.board.CellAt(c)
	if err != nil {
		return nil, err
	}
	if s.gameOver || s.state == Paused || cell.BlocksClicks() || cell.IsRevealed() {
		return nil, nil
	}
	return cell, nil
}

// OnCellLeftClickReleased opens the cell at c. The first open of a game lays
// the mines around c, so it is always safe.
func (s *Session) OnCellLeftClickReleased(c mines.Coordinate) (Outcome, error) {
	cell, err := s.clickable(c)
	if err != nil || cell == nil || cell.Marked() {
		return Ignored, err
	}

	if !s.initialClickDone {
		if err := s.start(c); err != nil {
			return Ignored, err
		}
	}

	if cell.HasMine() {
		s.explode(c)
		return Exploded, nil
	}

	s.movesMade++
	s.emit(countEvent(MovesMadeChanged, s.movesMade))
	s.open(c)

	if cell.NeighborMineCount() == 0 {
		return Cascaded, nil
	}
	return Opened, nil
}

// OnCellRightClickReleased cycles the mark on c: none, flag, question mark,
// none. Only flags count against the mines remaining display.
func (s *Session) OnCellRightClickReleased(c mines.Coordinate) error {
	cell, err := s.clickable(c)
	if err != nil || cell == nil {
		return err
	}

	counted := true
	switch {
	case cell.HasFlag():
		cell.SetQuestionMark(true)
		s.minesRemaining++
	case cell.HasQuestionMark():
		cell.SetQuestionMark(false)
		counted = false
	default:
		cell.SetFlag(true)
		s.minesRemaining--
	}

	s.emit(cellEvent(CellMarked, c))
	if counted {
		s.emit(countEvent(MinesRemainingChanged, s.minesRemaining))
	}
	return nil
}

// OnCellChord opens every unmarked neighbor of the revealed cell at c when
// the number of flags around it equals its mine count. It counts as one move.
func (s *Session) OnCellChord(c mines.Coordinate) (Outcome, error) {
	cell, err := s.board.CellAt(c)
	if err != nil {
		return Ignored, err
	}
	if s.gameOver || s.state != Active || !cell.IsRevealed() || cell.NeighborMineCount() == 0 {
		return Ignored, nil
	}

	var flags int
	var todo []mines.Coordinate
	for nc := range s.board.Neighbors(c) {
		n, _ := s.board.CellAt(nc)
		switch {
		case n.HasFlag():
			flags++
		case !n.IsRevealed() && !n.HasQuestionMark():
			todo = append(todo, nc)
		}
	}
	if flags != cell.NeighborMineCount() || len(todo) == 0 {
		return Ignored, nil
	}

	s.movesMade++
	s.emit(countEvent(MovesMadeChanged, s.movesMade))

	outcome := Opened
	for _, nc := range todo {
		n, _ := s.board.CellAt(nc)
		if n.HasMine() {
			s.explode(nc)
			return Exploded, nil
		}
		if n.NeighborMineCount() == 0 {
			outcome = Cascaded
		}
		s.open(nc)
		if s.gameOver {
			break
		}
	}
	return outcome, nil
}

func (s *Session) start(first mines.Coordinate) error {
	if _, err := mines.PlaceMines(s.board, first, s.board.MineCount(), s.rnd); err != nil {
		Log.WithError(err).Error("unable to place mines")
		return err
	}
	mines.ComputeNeighborCounts(s.board)
	s.initialClickDone = true
	s.state = Active
	s.timer.Start()
	Log.WithField("first", first.String()).Debug("game started")
	s.emit(Event{Kind: GameStarted})
	return nil
}

func (s *Session) open(c mines.Coordinate) {
	mines.Reveal(s.board, c, func(rc mines.Coordinate) {
		s.unopenedNonMine--
		s.emit(cellEvent(CellRevealed, rc))
	})
	if s.unopenedNonMine == 0 {
		s.win()
	}
}

func (s *Session) explode(c mines.Coordinate) {
	cell, _ := s.board.CellAt(c)
	cell.SetRevealed(true)
	s.finish()
	Log.WithField("coord", c.String()).Debug("mine exploded")
	s.emit(cellEvent(MineExploded, c))
}

func (s *Session) win() {
	s.won = true
	for _, cell := range s.board.All() {
		if cell.HasMine() && !cell.HasFlag() {
			cell.SetFlag(true)
		}
	}
	s.minesRemaining = 0
	s.finish()
	Log.WithFields(logrus.Fields{
		"moves":   s.movesMade,
		"elapsed": s.timer.Elapsed().String(),
	}).Debug("game won")
	s.emit(countEvent(MinesRemainingChanged, s.minesRemaining))
	s.emit(Event{Kind: GameWon})
}

// finish ends the game and freezes every cell.
func (s *Session) finish() {
	s.gameOver = true
	s.state = Inactive
	s.timer.Stop()
	for _, cell := range s.board.All() {
		cell.SetBlocksClicks(true)
	}
}

// Pause stops the clock of a running game. Otherwise it does nothing.
func (s *Session) Pause() {
	if !s.initialClickDone || s.gameOver || s.state != Active {
		return
	}
	s.state = Paused
	s.timer.Pause()
	s.emit(Event{Kind: GamePaused})
}

// Resume restarts the clock of a paused game. Otherwise it does nothing.
func (s *Session) Resume() {
	if !s.initialClickDone || s.gameOver || s.state != Paused {
		return
	}
	s.state = Active
	s.timer.Resume()
	s.emit(Event{Kind: GameResumed})
}
