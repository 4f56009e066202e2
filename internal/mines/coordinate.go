package mines

import "fmt"

// Coordinate addresses a cell by column and row.
type Coordinate struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

func At(col, row int) Coordinate {
	return Coordinate{Col: col, Row: row}
}

// Compare orders coordinates by column, then by row.
func (c Coordinate) Compare(other Coordinate) int {
	switch {
	case c.Col < other.Col:
		return -1
	case c.Col > other.Col:
		return 1
	case c.Row < other.Row:
		return -1
	case c.Row > other.Row:
		return 1
	}
	return 0
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%d:%d", c.Col, c.Row)
}

func (c Coordinate) offset(dc, dr int) Coordinate {
	return Coordinate{Col: c.Col + dc, Row: c.Row + dr}
}
