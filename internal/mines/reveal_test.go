package mines

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revealedCells(b *Board) []Coordinate {
	var out []Coordinate
	for c, cell := range b.All() {
		if cell.IsRevealed() {
			out = append(out, c)
		}
	}
	return out
}

func TestRevealNumberedCellDoesNotCascade(t *testing.T) {
	b := boardFrom(t,
		"*.*",
		"...",
		"*..",
	)
	cell, err := b.CellAt(At(1, 1))
	require.NoError(t, err)
	require.Equal(t, 3, cell.NeighborMineCount())

	var events []Coordinate
	n := Reveal(b, At(1, 1), func(c Coordinate) { events = append(events, c) })
	assert.Equal(t, 1, n)
	assert.Equal(t, []Coordinate{At(1, 1)}, events)
	assert.Equal(t, []Coordinate{At(1, 1)}, revealedCells(b))
}

func TestRevealCascade(t *testing.T) {
	b := boardFrom(t,
		".....",
		".....",
		"...**",
		"...*.",
	)
	n := Reveal(b, At(0, 0), nil)

	for c, cell := range b.All() {
		switch {
		case cell.HasMine():
			assert.False(t, cell.IsRevealed(), c.String())
		case c == At(4, 3):
			// enclosed by mines
			assert.False(t, cell.IsRevealed(), c.String())
		default:
			assert.True(t, cell.IsRevealed(), c.String())
		}
	}
	assert.Equal(t, 20-3-1, n)
}

func TestRevealStopsAtMarks(t *testing.T) {
	b := boardFrom(t,
		".....",
		".....",
		".....",
		"....*",
	)
	flag, _ := b.CellAt(At(2, 0))
	flag.SetFlag(true)
	question, _ := b.CellAt(At(2, 1))
	question.SetQuestionMark(true)

	Reveal(b, At(0, 0), nil)

	assert.False(t, flag.IsRevealed())
	assert.False(t, question.IsRevealed())
	// reached around the marks through row 2
	east, _ := b.CellAt(At(4, 0))
	assert.True(t, east.IsRevealed())
}

func TestRevealIsIdempotent(t *testing.T) {
	b := boardFrom(t,
		"...",
		"...",
		"..*",
	)
	first := Reveal(b, At(0, 0), nil)
	assert.Equal(t, 8, first)

	calls := 0
	assert.Equal(t, 0, Reveal(b, At(0, 0), func(Coordinate) { calls++ }))
	assert.Equal(t, 0, Reveal(b, At(1, 1), func(Coordinate) { calls++ }))
	assert.Zero(t, calls)
}

func TestRevealLargeBoard(t *testing.T) {
	b, err := NewBoard(1000, 1000)
	require.NoError(t, err)
	ComputeNeighborCounts(b)
	assert.Equal(t, 1000*1000, Reveal(b, At(500, 500), nil))
}

// floodRegion walks the board cell by cell: every zero cell reachable from
// origin through zero cells, plus the non-mine cells bordering them.
func floodRegion(b *Board, origin Coordinate) []Coordinate {
	count := func(c Coordinate) int {
		cell, _ := b.CellAt(c)
		return cell.NeighborMineCount()
	}
	seen := map[Coordinate]bool{origin: true}
	queue := []Coordinate{origin}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if count(c) > 0 {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				o := At(c.Col+dc, c.Row+dr)
				if !b.InBounds(o) || seen[o] {
					continue
				}
				if cell, _ := b.CellAt(o); cell.HasMine() {
					continue
				}
				seen[o] = true
				queue = append(queue, o)
			}
		}
	}
	out := make([]Coordinate, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.SortFunc(out, Coordinate.Compare)
	return out
}

func TestRevealMatchesFloodRegionOnRandomBoards(t *testing.T) {
	for seed := range uint64(20) {
		r := rand.New(rand.NewPCG(seed, 7))
		columns, rows := 8+r.IntN(30), 8+r.IntN(20)
		count := 1 + r.IntN(columns*rows/5)

		b, err := NewBoard(columns, rows)
		require.NoError(t, err)
		_, err = PlaceMines(b, At(0, 0), count, r)
		require.NoError(t, err)
		ComputeNeighborCounts(b)

		var safe []Coordinate
		for c, cell := range b.All() {
			if !cell.HasMine() {
				safe = append(safe, c)
			}
		}
		origin := safe[r.IntN(len(safe))]
		want := floodRegion(b, origin)

		var events []Coordinate
		n := Reveal(b, origin, func(c Coordinate) { events = append(events, c) })

		got := revealedCells(b)
		slices.SortFunc(got, Coordinate.Compare)
		slices.SortFunc(events, Coordinate.Compare)
		assert.Equal(t, want, got, "seed %d origin %s", seed, origin)
		assert.Equal(t, want, events, "seed %d origin %s", seed, origin)
		assert.Equal(t, len(want), n, "seed %d", seed)
	}
}
