package mines

import "errors"

var (
	ErrInvalidDimension     = errors.New("columns and rows must be positive")
	ErrOutOfBounds          = errors.New("coordinate is out of bounds")
	ErrInvalidNeighborCount = errors.New("neighbor mine count must be within [0, 8]")
	ErrInvalidMineRatio     = errors.New("mine ratio must be within (0, 1)")
	ErrInvalidMineCount     = errors.New("mine count must be positive and less than the cell count")
)

// AssertionError reports a broken internal invariant. It is never caused by
// user input.
type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
