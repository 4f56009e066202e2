package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/repository"
)

type App struct {
	logger   *logrus.Logger
	config   *config.Config
	router   *http.ServeMux
	db       *pgxpool.Pool
	ws       *config.WebSocket
	records  handlers.RecordStore
	registry *handlers.Registry
	saves    afero.Fs
}

func New(logger *logrus.Logger, c *config.Config) *App {
	return &App{
		logger: logger,
		config: c,
		router: http.NewServeMux(),
		ws:     config.NewWebSocket(c),
	}
}

func (a *App) setupRecords(ctx context.Context) error {
	url, err := a.config.DbURL()
	if err != nil {
		return err
	}
	if url == "" {
		a.logger.Warn("no database configured, records are disabled")
		return nil
	}
	db, err := database.ConnectAndMigrate(ctx, url)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	a.records = repository.New(db)
	return nil
}

func (a *App) setupSaves() error {
	if err := os.MkdirAll(a.config.SavesDir, 0o755); err != nil {
		return fmt.Errorf("unable to create saves dir: %w", err)
	}
	a.saves = afero.NewBasePathFs(afero.NewOsFs(), a.config.SavesDir)
	return nil
}

// Handler builds the routed and wrapped handler. Saves go to fs.
func (a *App) Handler(fs afero.Fs) http.Handler {
	a.loadRoutes(fs)

	var h http.Handler = a.router
	if a.config.BasePath != "" {
		h = http.StripPrefix(a.config.BasePath, h)
	}
	return middleware.Wrap(
		h,
		middleware.Cors(a.config.Development()),
		middleware.Logging(a.logger),
	)
}

func sweepInterval(idle time.Duration) time.Duration {
	return max(idle/4, time.Second)
}

// Start serves until ctx is done, then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.setupRecords(ctx); err != nil {
		return err
	}
	if a.db != nil {
		defer a.db.Close()
	}
	if err := a.setupSaves(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    a.config.Addr,
		Handler: a.Handler(a.saves),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.logger.Infof("ready to serve @ %s", a.config.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	if idle := a.config.Game.IdleTimeout; idle > 0 {
		g.Go(func() error {
			return a.registry.RunSweeper(gCtx, a.logger, sweepInterval(idle), idle)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
