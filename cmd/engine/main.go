// Command engine runs the AI Engine: an HTTP service that generates
// n8n-style workflow documents from natural-language prompts.
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
	"github.com/taskarchitect/architect/internal/engine"
	"github.com/taskarchitect/architect/internal/llm"
	"github.com/taskarchitect/architect/internal/observability"
	"github.com/taskarchitect/architect/internal/server"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "engine",
		Usage: "generate workflow documents from natural-language prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML or JSON config file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":8000",
			},
			&cli.StringFlag{
				Name:  "api-base-url",
				Usage: "OpenAI-compatible API base URL",
				Value: llm.DefaultBaseURL,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "model for the structured generation call",
				Value: engine.DefaultPrimaryModel,
			},
			&cli.StringFlag{
				Name:  "fallback-model",
				Usage: "model for repair and fallback calls",
				Value: engine.DefaultFallbackModel,
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
	cfg = cfg.Merge(config.FromEnv(map[string]string{
		"addr":         "ENGINE_ADDR",
		"api_base_url": "OPENAI_BASE_URL",
		"api_key":      "OPENAI_API_KEY",
		"log_level":    "LOG_LEVEL",
	}))

	addr := cfg.String("addr", c.String("addr"))
	if c.IsSet("addr") {
		addr = c.String("addr")
	}
	apiBaseURL := cfg.String("api_base_url", c.String("api-base-url"))
	if c.IsSet("api-base-url") {
		apiBaseURL = c.String("api-base-url")
	}
	apiKey := cfg.String("api_key", "")
	logLevel := cfg.String("log_level", c.String("log-level"))
	if c.IsSet("log-level") {
		logLevel = c.String("log-level")
	}

	logger := observability.NewLogger(logLevel)
	if !cfg.Has("api_key") {
		logger.Warn("no API key configured, completion calls will be rejected upstream")
	}

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

	completer := llm.NewClient(
		llm.WithBaseURL(apiBaseURL),
		llm.WithAPIKey(apiKey),
	)
	gen := engine.New(completer,
		engine.WithPrimaryModel(c.String("model")),
		engine.WithFallbackModel(c.String("fallback-model")),
		engine.WithMaxTokens(cfg.Int("max_tokens", 0)),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics),
		engine.WithSpanManager(spans),
	)
	handler := engine.NewHandler(gen, logger)

	srv := &http.Server{
		Addr:    addr,
		Handler: server.WithRequestLogging(handler.Routes(), logger, "engine"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("engine listening", "addr", addr, "api_base_url", apiBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
