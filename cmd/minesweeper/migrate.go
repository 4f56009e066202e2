package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply the records database migrations and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			if err := setupLogging(c); err != nil {
				return err
			}

			url, err := c.DbURL()
			if err != nil {
				return err
			}
			if url == "" {
				return fmt.Errorf("no database configured")
			}

			version, dirty, err := database.Migrate(url)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"version": version,
				"dirty":   dirty,
			}).Info("migration successful")
			return nil
		},
	}
}
