// cmd/dashboard/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/client"
	"github.com/andresuchdata/reorder-dashboard/internal/config"
	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/storage"
	"github.com/andresuchdata/reorder-dashboard/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

type envKey struct{}

// env is everything a command needs, built once per invocation.
type env struct {
	cfg      config.Config
	registry *prometheus.Registry
	client   *client.Client
	ctrl     *dashboard.Controller
	closers  []io.Closer
}

func newAPIURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "api-url",
		Usage:   "Base URL of the reorder API",
		EnvVars: []string{"REORDER_API_URL"},
	}
}

func newLogLevelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		EnvVars: []string{"LOG_LEVEL"},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", dashboard.ErrorMessage(err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "dashboard",
		Usage: "Warehouse reorder dashboard",
		Flags: []cli.Flag{
			newAPIURLFlag(),
			newLogLevelFlag(),
		},
		Commands: commands(),
	}
}

// initEnv builds the client and controller without an export sink.
func initEnv(c *cli.Context) error {
	return buildEnv(c, false)
}

// initEnvWithSink also wires the configured export sink.
func initEnvWithSink(c *cli.Context) error {
	return buildEnv(c, true)
}

func buildEnv(c *cli.Context, withSink bool) error {
	cfg := *config.Load()
	if c.IsSet("api-url") {
		cfg.API.BaseURL = strings.TrimRight(c.String("api-url"), "/")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	// stdout is reserved for command output
	logger.SetOutput(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: "2006-01-02 15:04:05"})
	logger.SetLevel(cfg.Log.Level)

	e := &env{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
	}
	e.client = client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout()),
		client.WithMetrics(client.NewMetrics(e.registry)),
	)

	var opts []dashboard.Option
	if withSink {
		sink, err := storage.NewSink(c.Context, cfg.Export)
		if err != nil {
			return fmt.Errorf("failed to configure export sink: %w", err)
		}
		opts = append(opts, dashboard.WithSink(sink))
	}
	e.ctrl = dashboard.New(e.client, opts...)

	c.Context = context.WithValue(c.Context, envKey{}, e)
	return nil
}

func closeEnv(c *cli.Context) error {
	e, ok := c.Context.Value(envKey{}).(*env)
	if !ok {
		return nil
	}
	for _, cl := range e.closers {
		if err := cl.Close(); err != nil {
			return err
		}
	}
	return nil
}

func envOf(c *cli.Context) *env {
	return c.Context.Value(envKey{}).(*env)
}
