package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dimaq12/minesweeper/config"
	"github.com/dimaq12/minesweeper/game"
	"github.com/dimaq12/minesweeper/models"
	"github.com/dimaq12/minesweeper/server"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "minesweeper:", err)
		os.Exit(2)
	}

	log, closeLog, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "minesweeper:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("minesweeper stopped")
		fmt.Fprintln(os.Stderr, "minesweeper:", err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

// run serves the HTTP API and the terminal UI around one shared game.
// Quitting the UI or a signal stops everything.
func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	difficulty, err := cfg.StartDifficulty()
	if err != nil {
		return err
	}
	initial, err := models.NewGame(difficulty)
	if err != nil {
		return err
	}
	service := game.NewMinesweeperService(initial, log)

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HTTP {
		api := server.NewServer(service, log)
		g.Go(func() error {
			return api.ListenAndServe(ctx, cfg.Addr)
		})
	}

	if cfg.Headless {
		log.WithField("difficulty", difficulty).Info("running headless")
	} else {
		controller := game.NewGameController(service, log)
		g.Go(func() error {
			defer cancel()
			return controller.Run(ctx)
		})
	}

	return g.Wait()
}
