package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/spf13/afero"

	"github.com/vancomm/minesweeper/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes(fs afero.Fs) {
	a.registry = handlers.NewRegistry(fs, createRand, a.config.Game.MaxSessions)
	game := handlers.NewGameHandler(
		a.logger,
		a.registry,
		a.records,
		a.ws,
		a.config.Game,
	)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("DELETE /game/{id}", game.Delete)
	a.router.HandleFunc("POST /game/{id}/open", game.Open)
	a.router.HandleFunc("POST /game/{id}/mark", game.Mark)
	a.router.HandleFunc("POST /game/{id}/chord", game.Chord)
	a.router.HandleFunc("POST /game/{id}/pause", game.Pause)
	a.router.HandleFunc("POST /game/{id}/resume", game.Resume)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("POST /game/{id}/resize", game.Resize)
	a.router.HandleFunc("POST /game/{id}/save", game.Save)
	a.router.HandleFunc("POST /game/{id}/load", game.Load)
	a.router.HandleFunc("GET /game/{id}/connect", game.Connect)
	a.router.HandleFunc("GET /records", game.Records)
}
