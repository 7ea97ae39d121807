// Command skim polls RSS/Atom feeds and shows the merged headlines in a
// terminal list, newest first.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/skim/internal/config"
	"github.com/abelbrown/skim/internal/feed"
	"github.com/abelbrown/skim/internal/logging"
	"github.com/abelbrown/skim/internal/poll"
	"github.com/abelbrown/skim/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := logging.Init(cfg.LogFile, cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	logging.Info("starting skim",
		"version", cfg.Version,
		"sources", cfg.Names(),
		"interval", cfg.Interval,
	)

	limiter := feed.NewHostLimiter(feed.DefaultHostInterval)
	sources := lo.Map(cfg.Sources, func(s config.Source, _ int) feed.Source {
		return feed.NewRSS(s.Name, s.URL,
			feed.WithTimeout(cfg.Timeout),
			feed.WithUserAgent(cfg.UserAgent),
			feed.WithHostLimiter(limiter),
		)
	})
	poller := poll.New(sources, cfg.Interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	out := make(chan poll.Message, poll.DefaultBuffer)
	app := ui.NewApp(ui.Config{
		Title:    "skim · " + strings.Join(cfg.Names(), ", "),
		Messages: out,
		Tick:     cfg.Tick,
	})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(gctx))

	g.Go(func() error {
		defer close(out)
		return poller.Run(gctx, out)
	})

	// Quitting the UI cancels the poller.
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run ui: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("skim exited with error", "err", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logging.Info("shutdown complete")
	return 0
}
