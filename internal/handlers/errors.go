package handlers

import (
	"errors"
	"net/http"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/savefile"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, mines.ErrInvalidDimension),
		errors.Is(err, mines.ErrInvalidMineRatio),
		errors.Is(err, mines.ErrInvalidMineCount):
		return http.StatusBadRequest
	case errors.Is(err, savefile.ErrFileDoesNotExist),
		errors.Is(err, savefile.ErrHashFileDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, savefile.ErrHashVerificationFailed),
		errors.Is(err, savefile.ErrMalformedDocument),
		errors.Is(err, savefile.ErrUnsupportedVersion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
