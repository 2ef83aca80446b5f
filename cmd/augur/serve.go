package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/augur-forecast/augur/internal/metrics"
	transport "github.com/augur-forecast/augur/internal/transport/http"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the forecast page and API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides the configured host and port",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}

	e := engine.NewAdditive(cfg.Forecast, logger)
	srv := transport.NewServer(cfg, e, metrics.New(), logger)
	httpServer := transport.NewHTTPServer(cfg.Server, srv.Routes())
	if c.IsSet("addr") {
		httpServer.Addr = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error, %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error, %w", err)
	}
	return nil
}
