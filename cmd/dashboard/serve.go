package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/api"
	"github.com/andresuchdata/reorder-dashboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func runServe(c *cli.Context) error {
	e := envOf(c)
	cfg := e.cfg
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	e.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// The server still starts when the API is down; the banner carries the error.
	if err := e.ctrl.Reload(c.Context); err != nil {
		logger.Log.Warn().Err(err).Str("api_url", cfg.API.BaseURL).Msg("Initial load failed")
	}

	router := api.NewRouter(&api.Services{
		Dashboard: e.ctrl,
		Gatherer:  e.registry,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("api_url", cfg.API.BaseURL).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	case <-c.Context.Done():
	}
	logger.Log.Info().Msg("Shutting down server...")

	// Give in-flight requests 5 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info().Msg("Server exiting")
	return nil
}
