package mines

import (
	"fmt"
	"math/rand/v2"
)

// PlaceMines picks count distinct random coordinates, never excluded, and
// lays mines on them. Draws that hit the excluded cell or an already chosen
// one are thrown away, so the first opened cell is always safe.
func PlaceMines(b *Board, excluded Coordinate, count int, r *rand.Rand) ([]Coordinate, error) {
	if !b.InBounds(excluded) {
		return nil, fmt.Errorf("%w: excluded %s", ErrOutOfBounds, excluded)
	}
	if count <= 0 || count >= b.TotalCellCount() {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidMineCount, count, b.TotalCellCount())
	}

	chosen := make(map[Coordinate]struct{}, count)
	draws := 0
	for len(chosen) < count {
		draws++
		c := At(r.IntN(b.columns), r.IntN(b.rows))
		if c == excluded {
			continue
		}
		chosen[c] = struct{}{}
	}

	mines := make([]Coordinate, 0, count)
	for c := range chosen {
		mines = append(mines, c)
	}
	if err := b.LayMines(mines); err != nil {
		return nil, err
	}

	Log.WithFields(map[string]any{
		"board":    fmt.Sprintf("%dx%d", b.columns, b.rows),
		"mines":    count,
		"excluded": excluded.String(),
		"draws":    draws,
	}).Debug("mines placed")

	return b.Mines(), nil
}
