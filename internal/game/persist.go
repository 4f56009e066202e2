package game

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/savefile"
)

// Snapshot projects the session onto a save document.
func (s *Session) Snapshot() *savefile.Document {
	doc := &savefile.Document{
		Columns:        s.board.Columns(),
		Rows:           s.board.Rows(),
		MineCount:      s.board.MineCount(),
		MovesMade:      s.movesMade,
		MinesRemaining: s.minesRemaining,
		PlayTimer: savefile.PlayTimer{
			IsPaused:    s.timer.IsPaused(),
			TotalTimeMs: s.timer.Elapsed().Milliseconds(),
		},
		Mines: s.board.Mines(),
		Cells: make([]savefile.CellRecord, 0, s.board.TotalCellCount()),
	}
	for c, cell := range s.board.All() {
		doc.Cells = append(doc.Cells, savefile.CellRecord{
			Coord:             c,
			BlockingClicks:    cell.BlocksClicks(),
			NeighborMineCount: cell.NeighborMineCount(),
			Checked:           cell.Checked(),
			HasFlag:           cell.HasFlag(),
			HasQuestionMark:   cell.HasQuestionMark(),
			HasMine:           cell.HasMine(),
			IsRevealed:        cell.IsRevealed(),
		})
	}
	return doc
}

// Save writes the session to path and its digest next to it.
func (s *Session) Save(path string) error {
	if err := s.codec.Save(path, s.Snapshot()); err != nil {
		Log.WithError(err).WithField("path", path).Warn("unable to save game")
		return err
	}
	return nil
}

// Load replaces the whole session with the one saved at path. On any error
// the session is left as it was. Either way a LoadCompleted event is raised.
func (s *Session) Load(path string) error {
	doc, err := s.codec.Load(path)
	if err == nil {
		err = s.restore(doc)
	}
	if err != nil {
		Log.WithError(err).WithField("path", path).Warn("unable to load game")
		s.emit(Event{Kind: LoadCompleted, Err: err})
		return err
	}

	Log.WithFields(logrus.Fields{
		"path":  path,
		"state": s.state.String(),
	}).Debug("game loaded")
	s.emit(Event{Kind: LoadCompleted})
	s.emit(countEvent(MovesMadeChanged, s.movesMade))
	s.emit(countEvent(MinesRemainingChanged, s.minesRemaining))
	return nil
}

// restore rebuilds the session from doc. Nothing is touched unless the whole
// document is consistent.
func (s *Session) restore(doc *savefile.Document) error {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", savefile.ErrMalformedDocument, fmt.Sprintf(format, args...))
	}

	board, err := mines.NewBoard(doc.Columns, doc.Rows)
	if err != nil {
		return malformed("%v", err)
	}
	if err := board.SetMineCount(doc.MineCount); err != nil {
		return malformed("%v", err)
	}
	if err := board.LayMines(doc.Mines); err != nil {
		return fmt.Errorf("%w: %w", savefile.ErrMalformedDocument, err)
	}
	if len(doc.Mines) != 0 && len(board.Mines()) != doc.MineCount {
		return malformed("%d mines listed for a mine count of %d", len(board.Mines()), doc.MineCount)
	}
	if len(doc.Cells) != board.TotalCellCount() {
		return malformed("%d cell records for %d cells", len(doc.Cells), board.TotalCellCount())
	}

	var (
		gameOver   bool
		unopened   int
		mineOpened bool
		seen       = make(map[mines.Coordinate]bool, len(doc.Cells))
	)
	for _, rec := range doc.Cells {
		cell, err := board.CellAt(rec.Coord)
		if err != nil {
			return malformed("%v", err)
		}
		if seen[rec.Coord] {
			return malformed("duplicate record for cell %s", rec.Coord)
		}
		seen[rec.Coord] = true
		if rec.HasMine != cell.HasMine() {
			return malformed("cell %s disagrees with the mine list", rec.Coord)
		}
		if rec.HasFlag && rec.HasQuestionMark {
			return malformed("cell %s is both flagged and questioned", rec.Coord)
		}
		if err := cell.SetNeighborMineCount(rec.NeighborMineCount); err != nil {
			return malformed("cell %s: %v", rec.Coord, err)
		}
		cell.SetFlag(rec.HasFlag)
		cell.SetQuestionMark(rec.HasQuestionMark)
		cell.SetRevealed(rec.IsRevealed)
		cell.SetChecked(rec.Checked)
		cell.SetBlocksClicks(rec.BlockingClicks)

		gameOver = gameOver || rec.BlockingClicks
		switch {
		case rec.IsRevealed && rec.HasMine:
			mineOpened = true
		case !rec.IsRevealed && !rec.HasMine:
			unopened++
		}
	}

	s.board = board
	s.movesMade = doc.MovesMade
	s.minesRemaining = doc.MinesRemaining
	s.initialClickDone = len(doc.Mines) > 0
	s.unopenedNonMine = unopened
	if !s.initialClickDone {
		// mines are not laid yet, so every unopened cell was counted
		s.unopenedNonMine -= board.MineCount()
	}
	s.gameOver = gameOver
	s.won = gameOver && !mineOpened && unopened == 0
	s.timer.restore(time.Duration(doc.PlayTimer.TotalTimeMs)*time.Millisecond, doc.PlayTimer.IsPaused)

	switch {
	case !s.initialClickDone || s.gameOver:
		s.state = Inactive
	case s.timer.IsPaused():
		s.state = Paused
	default:
		s.state = Active
		s.timer.Start()
	}
	return nil
}
