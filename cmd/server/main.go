package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"upcheck/internal/account"
	"upcheck/internal/alert"
	"upcheck/internal/config"
	"upcheck/internal/hub"
	"upcheck/internal/probe"
	"upcheck/internal/registry"
	"upcheck/internal/server"
	"upcheck/internal/storage"
	"upcheck/internal/sweep"
	"upcheck/internal/token"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// run wires everything up and blocks on the HTTP server. Deferred cleanup,
// the sweeper drain included, runs before main decides the exit code.
func run(log *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gin.SetMode(cfg.GinMode)

	store, err := storage.NewFile(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open data dir: %w", err)
	}

	reg := registry.New(store, cfg.MaxChecks, log)
	accounts := account.New(store, reg)
	tokens := token.New(store, cfg.TokenWindow, nil)
	alertHub := hub.New()

	notifier := alert.Multi{
		&alert.LogNotifier{Log: log},
		&alert.HubNotifier{Hub: alertHub},
	}
	sweeper := sweep.New(store, probe.New(nil), notifier, cfg.SweepInterval, log, nil)
	sweeper.Start(context.Background())
	defer sweeper.Stop()

	router := server.NewRouter(server.Deps{
		Accounts: accounts,
		Tokens:   tokens,
		Registry: reg,
		Hub:      alertHub,
	})

	log.Info("listening", "addr", fmt.Sprintf(":%d", cfg.Port))
	return server.Run(cfg, router)
}
