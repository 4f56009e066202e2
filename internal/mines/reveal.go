package mines

// Reveal opens origin and, when it has no mined neighbors, cascades through
// the connected zero region and its numbered border. Flagged and
// question-marked cells stop the cascade. Cells already revealed are left
// alone, so revealing twice is a no-op.
//
// The caller makes sure origin is in bounds, not mined and the game is not
// over. onRevealed, if not nil, is called once per newly revealed cell.
// Reveal returns how many cells it opened.
func Reveal(b *Board, origin Coordinate, onRevealed func(Coordinate)) int {
	start := b.cell(origin)
	if start.revealed {
		return 0
	}

	start.checked = true
	todo := []Coordinate{origin}
	opened := 0

	for len(todo) > 0 {
		c := todo[0]
		todo = todo[1:]

		cell := b.cell(c)
		cell.revealed = true
		opened++
		if onRevealed != nil {
			onRevealed(c)
		}

		if cell.neighbors > 0 {
			continue
		}

		for nc := range b.Neighbors(c) {
			n := b.cell(nc)
			if n.mine || n.revealed || n.checked || n.flag || n.question {
				continue
			}
			n.checked = true
			todo = append(todo, nc)
		}
	}

	return opened
}
