package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/vancomm/minesweeper/internal/game"
	"github.com/vancomm/minesweeper/internal/savefile"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "check save files against their digests",
		ArgsUsage: "<save file>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return fmt.Errorf("at least one save file is required")
			}
			codec := savefile.New(nil)
			failed := 0
			for _, path := range cmd.Args().Slice() {
				if err := codec.Verify(path); err != nil {
					fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.Root().Writer, "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d save files failed verification", failed, cmd.NArg())
			}
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print a verified save file",
		ArgsUsage: "<save file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yaml", Usage: "print the document as YAML"},
			&cli.BoolFlag{Name: "json", Usage: "print the document as JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("exactly one save file is required")
			}
			path := cmd.Args().First()
			w := cmd.Root().Writer

			switch {
			case cmd.Bool("yaml"), cmd.Bool("json"):
				doc, err := savefile.New(nil).Load(path)
				if err != nil {
					return err
				}
				if cmd.Bool("yaml") {
					return yaml.NewEncoder(w).Encode(doc)
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			default:
				return printSession(w, path)
			}
		},
	}
}

// printSession loads the save into a fresh session and prints its board.
func printSession(w io.Writer, path string) error {
	s, err := game.New(9, 9, rand.New(rand.NewPCG(0, 0)), nil)
	if err != nil {
		return err
	}
	if err := s.Load(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "board:     %dx%d, %d mines\n", s.Columns(), s.Rows(), s.MineCount())
	fmt.Fprintf(w, "state:     %s (game over: %t, won: %t)\n", s.State(), s.GameOver(), s.Won())
	fmt.Fprintf(w, "moves:     %d\n", s.MovesMade())
	fmt.Fprintf(w, "remaining: %d\n", s.MinesRemaining())
	fmt.Fprintf(w, "elapsed:   %s\n\n", s.TotalElapsed())
	_, err = io.WriteString(w, s.String())
	return err
}
