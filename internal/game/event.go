package game

import "github.com/vancomm/minesweeper/internal/mines"

type EventKind uint8

const (
	GameStarted EventKind = iota + 1
	GamePaused
	GameResumed
	CellRevealed
	CellMarked
	MineExploded
	GameWon
	MovesMadeChanged
	MinesRemainingChanged
	ReadyToBeginNewGame
	LoadCompleted
)

var eventNames = map[EventKind]string{
	GameStarted:           "gameStarted",
	GamePaused:            "gamePaused",
	GameResumed:           "gameResumed",
	CellRevealed:          "cellRevealed",
	CellMarked:            "cellMarked",
	MineExploded:          "mineExploded",
	GameWon:               "gameWon",
	MovesMadeChanged:      "movesMadeChanged",
	MinesRemainingChanged: "minesRemainingChanged",
	ReadyToBeginNewGame:   "readyToBeginNewGame",
	LoadCompleted:         "loadCompleted",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a notification raised by a [Session]. Coord is set for cell
// events, Count for counter changes, Err for a failed load.
type Event struct {
	Kind  EventKind         `json:"kind"`
	Coord *mines.Coordinate `json:"coord,omitempty"`
	Count *int              `json:"count,omitempty"`
	Err   error             `json:"-"`
}

func cellEvent(kind EventKind, c mines.Coordinate) Event {
	return Event{Kind: kind, Coord: &c}
}

func countEvent(kind EventKind, n int) Event {
	return Event{Kind: kind, Count: &n}
}

type Listener func(Event)
