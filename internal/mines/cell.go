package mines

// Cell is the full status of one grid position. Flag and question mark are
// mutually exclusive; the setters keep it that way.
type Cell struct {
	coord        Coordinate
	mine         bool
	flag         bool
	question     bool
	revealed     bool
	checked      bool
	blocksClicks bool
	neighbors    int
}

func newCell(c Coordinate) Cell {
	return Cell{coord: c}
}

func (c *Cell) Coord() Coordinate      { return c.coord }
func (c *Cell) HasMine() bool          { return c.mine }
func (c *Cell) HasFlag() bool          { return c.flag }
func (c *Cell) HasQuestionMark() bool  { return c.question }
func (c *Cell) IsRevealed() bool       { return c.revealed }
func (c *Cell) Checked() bool          { return c.checked }
func (c *Cell) BlocksClicks() bool     { return c.blocksClicks }
func (c *Cell) NeighborMineCount() int { return c.neighbors }

// Marked reports whether the cell carries a flag or a question mark.
func (c *Cell) Marked() bool {
	return c.flag || c.question
}

func (c *Cell) SetMine(mine bool) {
	c.mine = mine
}

// SetFlag places or removes a flag. Placing a flag clears a question mark.
func (c *Cell) SetFlag(flag bool) {
	c.flag = flag
	if flag {
		c.question = false
	}
}

// SetQuestionMark places or removes a question mark. Placing one clears a flag.
func (c *Cell) SetQuestionMark(question bool) {
	c.question = question
	if question {
		c.flag = false
	}
}

func (c *Cell) SetRevealed(revealed bool) {
	c.revealed = revealed
}

func (c *Cell) SetChecked(checked bool) {
	c.checked = checked
}

func (c *Cell) SetBlocksClicks(block bool) {
	c.blocksClicks = block
}

func (c *Cell) SetNeighborMineCount(n int) error {
	if n < 0 || n > 8 {
		return ErrInvalidNeighborCount
	}
	c.neighbors = n
	return nil
}

// clear drops everything but the coordinate.
func (c *Cell) clear() {
	*c = newCell(c.coord)
}

func (c Cell) String() string {
	switch {
	case c.question:
		return "?"
	case c.flag:
		return "*"
	case !c.revealed:
		return " "
	case c.mine:
		return "!"
	default:
		return string(rune('0' + c.neighbors))
	}
}
