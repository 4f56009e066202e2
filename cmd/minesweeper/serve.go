package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/urfave/cli/v3"

	"github.com/vancomm/minesweeper/internal/app"
	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/savefile"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides the config",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if addr := cmd.String("addr"); addr != "" {
				c.Addr = addr
			}

			if err := setupLogging(c); err != nil {
				return err
			}

			log.Info("starting up, mode = ", c.Mode)
			log.WithFields(c.Fields()).Debug("config")

			if err := app.New(log, c).Start(ctx); err != nil {
				log.WithError(err).Error("server stopped")
				return err
			}
			log.Info("server stopped")
			return nil
		},
	}
}

func setupLogging(c *config.Config) error {
	var formatter logrus.Formatter = &logrus.JSONFormatter{}
	if c.Development() {
		formatter = &logrus.TextFormatter{ForceColors: true}
	}

	loggers := []*logrus.Logger{log, game.Log, mines.Log, savefile.Log}
	for _, l := range loggers {
		l.SetLevel(c.LogLevel())
		l.SetFormatter(formatter)
	}

	if c.Log.File == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   c.Log.File,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      c.LogLevel(),
		Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
	})
	if err != nil {
		return err
	}
	for _, l := range loggers {
		l.AddHook(hook)
	}
	return nil
}
