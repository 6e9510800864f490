// Command gateway runs the HTTP gateway that validates prompts and relays
// them to the AI Engine.
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

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/taskarchitect/architect/internal/config"
	"github.com/taskarchitect/architect/internal/observability"
	"github.com/taskarchitect/architect/internal/relay"
	"github.com/taskarchitect/architect/internal/server"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "gateway",
		Usage: "validate prompts and relay them to the AI Engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML or JSON config file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":3000",
			},
			&cli.StringFlag{
				Name:  "engine-url",
				Usage: "AI Engine base URL",
			},
			&cli.DurationFlag{
				Name:  "relay-timeout",
				Usage: "ceiling on one outbound call to the AI Engine",
				Value: relay.DefaultTimeout,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, or error",
				Value: "info",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.New(nil)
	if path := c.String("config"); path != "" {
		fileCfg, err := config.FromFile(path)
		if err != nil {
			return err
		}
		cfg = cfg.Merge(fileCfg)
	}
	// Environment beats file, flags beat both.
	cfg = cfg.Merge(config.FromEnv(map[string]string{
		"engine_url": "PYTHON_API_URL",
		"addr":       "GATEWAY_ADDR",
		"log_level":  "LOG_LEVEL",
	}))

	addr := cfg.String("addr", c.String("addr"))
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	engineURL := cfg.String("engine_url", relay.DefaultBaseURL)
	if c.IsSet("engine-url") {
		engineURL = c.String("engine-url")
	}
	timeout := cfg.Duration("relay_timeout", c.Duration("relay-timeout"))
	if c.IsSet("relay-timeout") {
		timeout = c.Duration("relay-timeout")
	}
	logLevel := cfg.String("log_level", c.String("log-level"))
	if c.IsSet("log-level") {
		logLevel = c.String("log-level")
	}

	logger := observability.NewLogger(logLevel)

	// Metrics and tracing are on by default and disabled per service through
	// the config file.
	var metrics observability.MetricsRecorder = observability.NoopMetrics{}
	if cfg.Bool("metrics_enabled", true) {
		metrics = observability.NewMetricsRecorder()
	}
	var spans observability.SpanManager = observability.NoopSpanManager{}
	if cfg.Bool("tracing_enabled", true) {
		spans = observability.NewSpanManager()
	}

	client := relay.New(
		relay.WithBaseURL(engineURL),
		relay.WithTimeout(timeout),
		relay.WithLogger(logger),
		relay.WithMetrics(metrics),
		relay.WithSpanManager(spans),
	)
	handler := server.NewHandler(client, logger, metrics)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.WithRequestLogging(handler.Routes(), logger, "gateway"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening", "addr", addr, "engine_url", engineURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
