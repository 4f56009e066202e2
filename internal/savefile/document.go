package savefile

import (
	"encoding/json"
	"fmt"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Version is written into every document; Decode refuses any other.
const Version = 1

// Document is the on-disk projection of a game session.
type Document struct {
	Version        int                `json:"version" yaml:"version"`
	Columns        int                `json:"columns" yaml:"columns"`
	Rows           int                `json:"rows" yaml:"rows"`
	MineCount      int                `json:"mineCount" yaml:"mineCount"`
	MovesMade      int                `json:"movesMade" yaml:"movesMade"`
	MinesRemaining int                `json:"minesRemaining" yaml:"minesRemaining"`
	PlayTimer      PlayTimer          `json:"playTimer" yaml:"playTimer"`
	Mines          []mines.Coordinate `json:"mines" yaml:"mines"`
	Cells          []CellRecord       `json:"cells" yaml:"cells"`
}

type PlayTimer struct {
	IsPaused    bool  `json:"isPaused" yaml:"isPaused"`
	TotalTimeMs int64 `json:"totalTimeMs" yaml:"totalTimeMs"`
}

type CellRecord struct {
	Coord             mines.Coordinate `json:"coord" yaml:"coord"`
	BlockingClicks    bool             `json:"blockingClicks" yaml:"blockingClicks"`
	NeighborMineCount int              `json:"neighborMineCount" yaml:"neighborMineCount"`
	Checked           bool             `json:"checked" yaml:"checked"`
	HasFlag           bool             `json:"hasFlag" yaml:"hasFlag"`
	HasQuestionMark   bool             `json:"hasQuestionMark" yaml:"hasQuestionMark"`
	HasMine           bool             `json:"hasMine" yaml:"hasMine"`
	IsRevealed        bool             `json:"isRevealed" yaml:"isRevealed"`
}

func Encode(doc *Document) ([]byte, error) {
	doc.Version = Version
	return json.MarshalIndent(doc, "", "  ")
}

func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	return &doc, nil
}
