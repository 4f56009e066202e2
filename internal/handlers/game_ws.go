package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
)

type wsCommand string

const (
	wsOpen   wsCommand = "o"
	wsMark   wsCommand = "m"
	wsChord  wsCommand = "c"
	wsPause  wsCommand = "p"
	wsResume wsCommand = "u"
	wsNew    wsCommand = "n"
)

// outboxSize bounds how many messages may wait for a slow client before
// events are dropped.
const outboxSize = 256

// writeWait bounds a single write to a client that stopped reading.
const writeWait = 10 * time.Second

type wsWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
}

// writeMessages sends every message from outbox. After the first failed
// write it keeps draining outbox so senders never block.
func writeMessages(conn wsWriter, outbox <-chan wsMessage, wait time.Duration, logger logrus.FieldLogger) {
	for m := range outbox {
		err := conn.SetWriteDeadline(time.Now().Add(wait))
		if err == nil {
			err = conn.WriteJSON(m)
		}
		if err != nil {
			logger.WithError(err).Debug("unable to write json")
			for range outbox {
			}
			return
		}
	}
}

type wsMessage struct {
	Type  string          `json:"type"`
	Event *game.Event     `json:"event,omitempty"`
	State *GameSessionDTO `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

func eventMessage(e game.Event) wsMessage {
	m := wsMessage{Type: "event", Event: &e}
	if e.Err != nil {
		m.Error = e.Err.Error()
	}
	return m
}

func parseCoordinate(args []string) (mines.Coordinate, error) {
	if len(args) != 2 {
		return mines.Coordinate{}, fmt.Errorf("invalid args")
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		return mines.Coordinate{}, fmt.Errorf("first argument must be an int")
	}
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return mines.Coordinate{}, fmt.Errorf("second argument must be an int")
	}
	return mines.At(col, row), nil
}

// execute runs one command line. Must be called with the session lock held.
func execute(s *game.Session, line string) error {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := wsCommand(tokens[0]), tokens[1:]
	switch cmd {
	case wsOpen, wsMark, wsChord:
		c, err := parseCoordinate(args)
		if err != nil {
			return err
		}
		switch cmd {
		case wsOpen:
			_, err = s.OnCellLeftClickReleased(c)
		case wsMark:
			err = s.OnCellRightClickReleased(c)
		default:
			_, err = s.OnCellChord(c)
		}
		return err
	case wsPause:
		s.Pause()
	case wsResume:
		s.Resume()
	case wsNew:
		s.Reset()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// Connect streams session events to a websocket client and applies the
// newline separated commands it sends. A state snapshot follows every
// command message.
func (g GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	live, ok := g.lookup(w, r)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		g.logger.WithError(err).Error("unable to upgrade")
		return
	}
	defer conn.Close()

	live.conns.Add(1)
	defer live.conns.Add(-1)

	logger := g.logger.WithField("session", live.id)
	logger.Debug("established WS connection")

	outbox := make(chan wsMessage, outboxSize)
	send := func(m wsMessage) {
		select {
		case outbox <- m:
		default:
			logger.Warn("ws client too slow, dropping message")
		}
	}

	live.mu.Lock()
	unsubscribe := live.session.Subscribe(func(e game.Event) {
		send(eventMessage(e))
	})
	send(wsMessage{Type: "state", State: NewGameSessionDTO(live)})
	live.mu.Unlock()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeMessages(conn, outbox, writeWait, logger)
	}()

	err = g.runLoop(r, conn, live, send)

	live.mu.Lock()
	unsubscribe()
	live.mu.Unlock()
	close(outbox)
	<-writerDone

	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.WithError(err).Warn("error in ws loop")
	}
}

func (g GameHandler) runLoop(
	r *http.Request, conn *websocket.Conn, live *liveSession, send func(wsMessage),
) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return errors.New("unexpected binary message")
		}

		live.touch(g.registry.now())
		live.mu.Lock()
		for _, line := range strings.Split(strings.TrimSpace(string(buf)), "\n") {
			if err := execute(live.session, line); err != nil {
				send(wsMessage{Type: "error", Error: err.Error()})
				if statusFor(err) == http.StatusInternalServerError {
					g.logger.WithError(err).WithFields(logrus.Fields{
						"session": live.id,
						"command": line,
					}).Error("game operation failed")
				}
				break
			}
			if live.session.GameOver() {
				break
			}
		}
		g.recordWin(r.Context(), live)
		send(wsMessage{Type: "state", State: NewGameSessionDTO(live)})
		live.mu.Unlock()
	}
}
