package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

// RecordStore keeps won games. A nil store disables records.
type RecordStore interface {
	CreateRecord(context.Context, repository.CreateRecordParams) (*repository.Record, error)
	GetRecords(context.Context, repository.RecordFilter) ([]repository.Record, error)
}

type GameHandler struct {
	logger   logrus.FieldLogger
	registry *Registry
	records  RecordStore
	ws       *config.WebSocket
	defaults config.Game
}

func NewGameHandler(
	logger logrus.FieldLogger,
	registry *Registry,
	records RecordStore,
	ws *config.WebSocket,
	defaults config.Game,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		registry: registry,
		records:  records,
		ws:       ws,
		defaults: defaults,
	}
}

// checkSize rejects boards over the configured cell cap before the engine
// allocates them.
func (g GameHandler) checkSize(columns, rows int) error {
	if err := mines.ValidateDimensions(columns, rows); err != nil {
		return err
	}
	if g.defaults.MaxCells > 0 && columns > g.defaults.MaxCells/rows {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", mines.ErrInvalidDimension, columns, rows, g.defaults.MaxCells)
	}
	return nil
}

func (g GameHandler) lookup(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, g.logger, fmt.Errorf("invalid session id"))
		return nil, false
	}
	live, ok := g.registry.Get(id)
	if !ok {
		sendError(w, g.logger, http.StatusNotFound, fmt.Errorf("session %s not found", id))
		return nil, false
	}
	return live, true
}

// recordWin stores a freshly won game. Must be called with live.mu held.
func (g GameHandler) recordWin(ctx context.Context, live *liveSession) {
	if !live.pendingWin {
		return
	}
	live.pendingWin = false
	if g.records == nil {
		return
	}

	s := live.session
	_, err := g.records.CreateRecord(ctx, repository.CreateRecordParams{
		SessionId:  live.round,
		Columns:    s.Columns(),
		Rows:       s.Rows(),
		MineCount:  s.MineCount(),
		MovesMade:  s.MovesMade(),
		PlaytimeMs: s.TotalElapsed().Milliseconds(),
	})
	logger := g.logger.WithFields(logrus.Fields{
		"session": live.id,
		"round":   live.round,
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyRecorded):
		logger.Debug("game already recorded")
	case err != nil:
		logger.WithError(err).Error("unable to record won game")
	default:
		logger.Info("game recorded")
	}
}

// act runs op on the session under its lock and replies with the resulting
// snapshot.
func (g GameHandler) act(
	w http.ResponseWriter,
	r *http.Request,
	op func(s *game.Session) (game.Outcome, error),
) {
	live, ok := g.lookup(w, r)
	if !ok {
		return
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	outcome, err := op(live.session)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			g.logger.WithError(err).WithField("session", live.id).Error("game operation failed")
		}
		sendError(w, g.logger, status, err)
		return
	}
	g.recordWin(r.Context(), live)

	dto := NewGameSessionDTO(live)
	if outcome != game.Ignored {
		dto.Outcome = outcomeName(outcome)
	}
	sendJSONOrLog(w, g.logger, dto)
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateNewGameDTO(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	columns, rows, err := dto.Dimensions(g.defaults.Columns, g.defaults.Rows)
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	if err := g.checkSize(columns, rows); err != nil {
		badRequest(w, g.logger, err)
		return
	}
	ratio := dto.Ratio
	if ratio == 0 {
		ratio = g.defaults.MineRatio
	}

	live, err := g.registry.Create(columns, rows, ratio)
	if err != nil {
		sendError(w, g.logger, statusFor(err), err)
		return
	}

	g.logger.WithFields(logrus.Fields{
		"session": live.id,
		"columns": columns,
		"rows":    rows,
	}).Debug("session created")

	live.mu.Lock()
	defer live.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(live))
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	g.act(w, r, func(*game.Session) (game.Outcome, error) {
		return game.Ignored, nil
	})
}

func (g GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	live, ok := g.lookup(w, r)
	if !ok {
		return
	}
	g.registry.Delete(live.id)
	w.WriteHeader(http.StatusNoContent)
}

func (g GameHandler) Open(w http.ResponseWriter, r *http.Request) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return s.OnCellLeftClickReleased(pos)
	})
}

func (g GameHandler) Mark(w http.ResponseWriter, r *http.Request) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return game.Ignored, s.OnCellRightClickReleased(pos)
	})
}

func (g GameHandler) Chord(w http.ResponseWriter, r *http.Request) {
	pos, err := ParsePosition(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return s.OnCellChord(pos)
	})
}

func (g GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		s.Pause()
		return game.Ignored, nil
	})
}

func (g GameHandler) Resume(w http.ResponseWriter, r *http.Request) {
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		s.Resume()
		return game.Ignored, nil
	})
}

func (g GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		s.Reset()
		return game.Ignored, nil
	})
}

func (g GameHandler) Resize(w http.ResponseWriter, r *http.Request) {
	var dto ResizeDTO
	if err := decoder.Decode(&dto, r.URL.Query()); err != nil {
		badRequest(w, g.logger, err)
		return
	}
	if err := g.checkSize(dto.Columns, dto.Rows); err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return game.Ignored, s.Resize(dto.Columns, dto.Rows)
	})
}

func (g GameHandler) Save(w http.ResponseWriter, r *http.Request) {
	name, err := ParseSaveName(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return game.Ignored, s.Save(name)
	})
}

func (g GameHandler) Load(w http.ResponseWriter, r *http.Request) {
	name, err := ParseSaveName(r.URL.Query())
	if err != nil {
		badRequest(w, g.logger, err)
		return
	}
	g.act(w, r, func(s *game.Session) (game.Outcome, error) {
		return game.Ignored, s.Load(name)
	})
}
