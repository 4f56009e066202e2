package mines

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Board is a dense grid of cells, one per in-bounds coordinate, stored row by
// row.
type Board struct {
	columns, rows int
	mineCount     int
	cells         []Cell
}

// MaxCells bounds the cell count of any board.
const MaxCells = 1 << 22

// ValidateDimensions accepts positive sizes whose product fits in MaxCells.
func ValidateDimensions(columns, rows int) error {
	if columns <= 0 || rows <= 0 || columns > MaxCells/rows {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, columns, rows)
	}
	return nil
}

func NewBoard(columns, rows int) (*Board, error) {
	b := &Board{}
	if err := b.Resize(columns, rows); err != nil {
		return nil, err
	}
	return b, nil
}

// Resize rebuilds the board at the new dimensions. All cell state and the
// mine count are discarded.
func (b *Board) Resize(columns, rows int) error {
	if err := ValidateDimensions(columns, rows); err != nil {
		return err
	}
	b.columns, b.rows = columns, rows
	b.mineCount = 0
	b.cells = make([]Cell, columns*rows)
	for row := range rows {
		for col := range columns {
			b.cells[row*columns+col] = newCell(At(col, row))
		}
	}
	return nil
}

func (b *Board) Columns() int        { return b.columns }
func (b *Board) Rows() int           { return b.rows }
func (b *Board) MineCount() int      { return b.mineCount }
func (b *Board) TotalCellCount() int { return b.columns * b.rows }

func (b *Board) SetMineCount(n int) error {
	if n <= 0 || n >= b.TotalCellCount() {
		return fmt.Errorf("%w: %d of %d", ErrInvalidMineCount, n, b.TotalCellCount())
	}
	b.mineCount = n
	return nil
}

func (b *Board) InBounds(c Coordinate) bool {
	return 0 <= c.Col && c.Col < b.columns && 0 <= c.Row && c.Row < b.rows
}

func (b *Board) CellAt(c Coordinate) (*Cell, error) {
	if !b.InBounds(c) {
		return nil, fmt.Errorf("%w: %s on %dx%d", ErrOutOfBounds, c, b.columns, b.rows)
	}
	return &b.cells[c.Row*b.columns+c.Col], nil
}

// cell is CellAt for coordinates already known to be in bounds.
func (b *Board) cell(c Coordinate) *Cell {
	return &b.cells[c.Row*b.columns+c.Col]
}

func (b *Board) IsCorner(c Coordinate) bool {
	return (c.Col == 0 || c.Col == b.columns-1) &&
		(c.Row == 0 || c.Row == b.rows-1)
}

func (b *Board) IsEdge(c Coordinate) bool {
	return c.Col == 0 || c.Col == b.columns-1 ||
		c.Row == 0 || c.Row == b.rows-1
}

// Neighbors yields the in-bounds coordinates of the up to 8 cells around c.
func (b *Board) Neighbors(c Coordinate) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				if dc == 0 && dr == 0 {
					continue
				}
				n := c.offset(dc, dr)
				if !b.InBounds(n) {
					continue
				}
				if !yield(n) {
					return
				}
			}
		}
	}
}

// All yields every cell in row-major order.
func (b *Board) All() iter.Seq2[Coordinate, *Cell] {
	return func(yield func(Coordinate, *Cell) bool) {
		for i := range b.cells {
			if !yield(b.cells[i].coord, &b.cells[i]) {
				return
			}
		}
	}
}

// Clear resets every cell without resizing. The mine count is kept.
func (b *Board) Clear() {
	for i := range b.cells {
		b.cells[i].clear()
	}
}

// LayMines sets the mine bit on exactly the given coordinates. A coordinate
// with no cell on the board is an [AssertionError].
func (b *Board) LayMines(coords []Coordinate) error {
	for i := range b.cells {
		b.cells[i].mine = false
	}
	for _, c := range coords {
		cell, err := b.CellAt(c)
		if err != nil {
			Log.WithField("coord", c).Error("mine outside of the cell map")
			return AssertionError{fmt.Sprintf("mine at %s has no cell on a %dx%d board", c, b.columns, b.rows)}
		}
		cell.mine = true
	}
	return nil
}

// Mines returns the mined coordinates ordered by [Coordinate.Compare].
func (b *Board) Mines() []Coordinate {
	var mines []Coordinate
	for c, cell := range b.All() {
		if cell.mine {
			mines = append(mines, c)
		}
	}
	slices.SortFunc(mines, Coordinate.Compare)
	return mines
}

func (b *Board) String() string {
	var s strings.Builder
	for row := range b.rows {
		for col := range b.columns {
			s.WriteString(b.cells[row*b.columns+col].String())
			s.WriteByte(' ')
		}
		s.WriteByte('\n')
	}
	return s.String()
}
