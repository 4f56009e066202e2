package mines

import (
	"fmt"
	"math"
)

type ratioStep struct {
	maxCells int
	ratio    float64
}

// classic densities: beginner 10/81, intermediate 40/256, expert 99/480
var ratioTable = []ratioStep{
	{81, 10.0 / 81},
	{256, 40.0 / 256},
	{math.MaxInt, 99.0 / 480},
}

// DefaultRatio is the mine ratio of the table entry for the given cell count.
func DefaultRatio(totalCells int) float64 {
	for _, step := range ratioTable {
		if totalCells <= step.maxCells {
			return step.ratio
		}
	}
	return ratioTable[len(ratioTable)-1].ratio
}

func ValidateRatio(ratio float64) error {
	if !(ratio > 0 && ratio < 1) {
		return fmt.Errorf("%w: %v", ErrInvalidMineRatio, ratio)
	}
	return nil
}

// MineCountFor derives a mine count for a board of the given size. A zero
// ratio selects the table. The result is clamped to [1, totalCells-1].
func MineCountFor(totalCells int, ratio float64) (int, error) {
	if totalCells < 2 {
		return 0, fmt.Errorf("%w: %d cells cannot hold a mine and a safe cell", ErrInvalidDimension, totalCells)
	}
	if totalCells > MaxCells {
		return 0, fmt.Errorf("%w: %d cells exceed %d", ErrInvalidDimension, totalCells, MaxCells)
	}
	if ratio == 0 {
		ratio = DefaultRatio(totalCells)
	} else if err := ValidateRatio(ratio); err != nil {
		return 0, err
	}
	n := int(math.Round(float64(totalCells) * ratio))
	return max(1, min(n, totalCells-1)), nil
}

// Preset is a named board size.
type Preset struct {
	Name          string
	Columns, Rows int
}

var (
	Beginner     = Preset{"beginner", 9, 9}
	Intermediate = Preset{"intermediate", 16, 16}
	Expert       = Preset{"expert", 30, 16}
)

func Presets() []Preset {
	return []Preset{Beginner, Intermediate, Expert}
}
