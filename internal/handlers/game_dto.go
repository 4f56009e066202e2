package handlers

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

type CreateNewGameDTO struct {
	Columns int     `schema:"columns"`
	Rows    int     `schema:"rows"`
	Ratio   float64 `schema:"ratio"`
	Preset  string  `schema:"preset"`
}

func ParseCreateNewGameDTO(src map[string][]string) (CreateNewGameDTO, error) {
	var dto CreateNewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// Dimensions resolves a preset name, falling back to the given defaults
// for any size left unset.
func (dto CreateNewGameDTO) Dimensions(columns, rows int) (int, int, error) {
	if dto.Preset != "" {
		for _, p := range mines.Presets() {
			if p.Name == dto.Preset {
				return p.Columns, p.Rows, nil
			}
		}
		return 0, 0, fmt.Errorf("unknown preset %q", dto.Preset)
	}
	if dto.Columns != 0 {
		columns = dto.Columns
	}
	if dto.Rows != 0 {
		rows = dto.Rows
	}
	return columns, rows, nil
}

type PositionDTO struct {
	Col int `schema:"col,required"`
	Row int `schema:"row,required"`
}

func ParsePosition(src map[string][]string) (mines.Coordinate, error) {
	var dto PositionDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Coordinate{}, err
	}
	return mines.At(dto.Col, dto.Row), nil
}

type ResizeDTO struct {
	Columns int `schema:"columns,required"`
	Rows    int `schema:"rows,required"`
}

type SaveDTO struct {
	Name string `schema:"name,required"`
}

var saveNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ParseSaveName(src map[string][]string) (string, error) {
	var dto SaveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return "", err
	}
	if !saveNameRe.MatchString(dto.Name) {
		return "", fmt.Errorf("invalid save name %q", dto.Name)
	}
	return dto.Name + ".json", nil
}

type GameSessionDTO struct {
	GameSessionId  string   `json:"game_session_id"`
	Columns        int      `json:"columns"`
	Rows           int      `json:"rows"`
	MineCount      int      `json:"mine_count"`
	State          string   `json:"state"`
	GameOver       bool     `json:"game_over"`
	Won            bool     `json:"won"`
	MovesMade      int      `json:"moves_made"`
	MinesRemaining int      `json:"mines_remaining"`
	ElapsedMs      int64    `json:"elapsed_ms"`
	Paused         bool     `json:"paused"`
	Grid           []string `json:"grid"`
	CreatedAt      int64    `json:"created_at"`
	Outcome        string   `json:"outcome,omitempty"`
}

// Grid symbols. Mines are only shown once the game is over.
const (
	gridHidden   = '#'
	gridFlag     = 'F'
	gridQuestion = '?'
	gridMine     = '*'
	gridEmpty    = '.'
)

func renderGrid(s *game.Session) []string {
	rows := make([][]byte, s.Rows())
	for i := range rows {
		rows[i] = bytes.Repeat([]byte{gridHidden}, s.Columns())
	}
	for c, cell := range s.Cells() {
		var b byte
		switch {
		case cell.HasFlag():
			b = gridFlag
		case cell.HasQuestionMark():
			b = gridQuestion
		case cell.HasMine() && (cell.IsRevealed() || s.GameOver()):
			b = gridMine
		case !cell.IsRevealed():
			b = gridHidden
		case cell.NeighborMineCount() == 0:
			b = gridEmpty
		default:
			b = strconv.Itoa(cell.NeighborMineCount())[0]
		}
		rows[c.Row][c.Col] = b
	}
	grid := make([]string, len(rows))
	for i, row := range rows {
		grid[i] = string(row)
	}
	return grid
}

func outcomeName(o game.Outcome) string {
	switch o {
	case game.Opened:
		return "opened"
	case game.Cascaded:
		return "cascaded"
	case game.Exploded:
		return "exploded"
	default:
		return "ignored"
	}
}

// NewGameSessionDTO must be called with live.mu held.
func NewGameSessionDTO(live *liveSession) *GameSessionDTO {
	s := live.session
	return &GameSessionDTO{
		GameSessionId:  live.id.String(),
		Columns:        s.Columns(),
		Rows:           s.Rows(),
		MineCount:      s.MineCount(),
		State:          s.State().String(),
		GameOver:       s.GameOver(),
		Won:            s.Won(),
		MovesMade:      s.MovesMade(),
		MinesRemaining: s.MinesRemaining(),
		ElapsedMs:      s.TotalElapsed().Milliseconds(),
		Paused:         s.IsTimerPaused(),
		Grid:           renderGrid(s),
		CreatedAt:      live.createdAt.UnixMilli(),
	}
}
