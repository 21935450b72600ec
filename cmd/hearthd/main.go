// Command hearthd runs a recursive, caching, authoritative-capable DNS
// nameserver for home networks.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hearthdns/hearth/internal/cache"
	"github.com/hearthdns/hearth/internal/config"
	"github.com/hearthdns/hearth/internal/server"
	"github.com/hearthdns/hearth/internal/zone"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	store := zone.NewStore()
	c := cache.New(cfg.CacheSize, cfg.CacheMaxTTL)
	srv := server.New(cfg, store, c, logger)

	if err := srv.Reload(); err != nil {
		logger.Error("initial load failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range signals {
			switch sig {
			case syscall.SIGHUP:
				if err := srv.Reload(); err != nil {
					logger.Error("reload failed, keeping previous configuration", "error", err)
				}
			default:
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				return
			}
		}
	}()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("listen failed", "error", err)
		os.Exit(1)
	}
}
