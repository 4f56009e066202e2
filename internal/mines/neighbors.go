package mines

// ComputeNeighborCounts sets the neighbor mine count of every cell. Interior
// cells skip the bounds checks.
func ComputeNeighborCounts(b *Board) {
	for c, cell := range b.All() {
		n := 0
		if b.IsEdge(c) {
			for nc := range b.Neighbors(c) {
				if b.cell(nc).mine {
					n++
				}
			}
		} else {
			for dc := -1; dc <= 1; dc++ {
				for dr := -1; dr <= 1; dr++ {
					if (dc != 0 || dr != 0) && b.cell(c.offset(dc, dr)).mine {
						n++
					}
				}
			}
		}
		// at most 8 neighbors exist, so this cannot fail
		cell.neighbors = n
	}
}
