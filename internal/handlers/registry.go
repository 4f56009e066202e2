package handlers

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/savefile"
)

// liveSession is a game held by the server. Every access to session goes
// through mu.
type liveSession struct {
	mu        sync.Mutex
	id        uuid.UUID
	session   *game.Session
	createdAt time.Time

	// round identifies the game currently on the board; it changes every
	// time the session starts over or loads a save.
	round      uuid.UUID
	pendingWin bool

	lastSeen atomic.Int64 // unix nanoseconds
	conns    atomic.Int32
}

func (live *liveSession) touch(now time.Time) {
	live.lastSeen.Store(now.UnixNano())
}

func (live *liveSession) track(e game.Event) {
	switch e.Kind {
	case game.ReadyToBeginNewGame:
		live.round = uuid.New()
		live.pendingWin = false
	case game.LoadCompleted:
		if e.Err == nil {
			live.round = uuid.New()
			live.pendingWin = false
		}
	case game.GameWon:
		live.pendingWin = true
	}
}

var ErrTooManySessions = errors.New("too many live sessions")

type Registry struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*liveSession
	codec       *savefile.Codec
	newRand     func() *rand.Rand
	maxSessions int
	now         func() time.Time
}

// NewRegistry keeps at most maxSessions sessions, or any number if
// maxSessions is zero. Their save files live on fs.
func NewRegistry(fs afero.Fs, newRand func() *rand.Rand, maxSessions int) *Registry {
	return &Registry{
		sessions:    make(map[uuid.UUID]*liveSession),
		codec:       savefile.New(fs),
		newRand:     newRand,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

func (r *Registry) full() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxSessions > 0 && len(r.sessions) >= r.maxSessions
}

func (r *Registry) Create(columns, rows int, ratio float64) (*liveSession, error) {
	if r.full() {
		return nil, ErrTooManySessions
	}
	s, err := game.New(columns, rows, r.newRand(), r.codec)
	if err != nil {
		return nil, err
	}
	if ratio != 0 {
		if err := s.SetCustomMineRatio(ratio); err != nil {
			return nil, err
		}
		if err := s.Resize(columns, rows); err != nil {
			return nil, err
		}
	}

	now := r.now()
	live := &liveSession{
		id:        uuid.New(),
		session:   s,
		createdAt: now.UTC(),
		round:     uuid.New(),
	}
	live.touch(now)
	s.Subscribe(live.track)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		return nil, ErrTooManySessions
	}
	r.sessions[live.id] = live
	return live, nil
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*liveSession, bool) {
	r.mu.RLock()
	live, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		live.touch(r.now())
	}
	return live, ok
}

// Sweep drops sessions unused for longer than idle that have no websocket
// attached, and reports how many went.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, live := range r.sessions {
		if live.conns.Load() > 0 || live.lastSeen.Load() >= cutoff {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, logger logrus.FieldLogger, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				logger.WithFields(logrus.Fields{
					"removed": n,
					"live":    r.Len(),
				}).Info("idle sessions swept")
			}
		}
	}
}

func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
