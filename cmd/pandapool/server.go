package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pandapool/cmd/pandapool/shared"
	"github.com/lox/pandapool/internal/room"
	"github.com/lox/pandapool/internal/server"
)

const shutdownTimeout = 5 * time.Second

// ServerCmd runs the WebSocket server and the idle room sweeper.
type ServerCmd struct {
	Config  string `short:"c" default:"pandapool.hcl" help:"Path to HCL configuration file"`
	Address string `short:"a" help:"Address to bind to (overrides config)"`
	Port    int    `short:"p" help:"Port to listen on (overrides config)"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Address != "" {
		cfg.Server.Address = c.Address
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if globals.LogLevel != "" {
		cfg.Server.LogLevel = globals.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := shared.SetupLogger(globals.Stderr, cfg.Server.LogLevel)
	ctx, stop := shared.ShutdownContext(context.Background(), logger)
	defer stop()

	registry := room.NewRegistry(logger, cfg.RegistryOptions()...)
	srv := server.NewServer(cfg.GetServerAddress(), server.NewService(registry, logger), logger)
	sweeper := room.NewSweeper(registry, cfg.RoomTTL(), cfg.SweepInterval(), logger)

	logger.Info("Starting Panda Pool server",
		"addr", cfg.GetServerAddress(),
		"room_ttl", cfg.RoomTTL(),
		"sweep_interval", cfg.SweepInterval(),
		"code_length", cfg.Rooms.CodeLength)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
