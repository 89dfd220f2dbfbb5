// Package main is the fortytech CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/fortytech/internal/config"
	"github.com/hyperjump/fortytech/internal/embedding"
	"github.com/hyperjump/fortytech/internal/llm"
	"github.com/hyperjump/fortytech/internal/rag"
	"github.com/hyperjump/fortytech/internal/server"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/stocks"
	"github.com/hyperjump/fortytech/internal/workouts"
	"github.com/hyperjump/fortytech/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/fortytech/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development), then falls back to
// built-in defaults if the default file does not exist either.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// mustSetup loads config and creates the logger, exiting on failure.
func mustSetup(configPath string, debug bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "movies":
		runMovies()
	case "rag":
		runRAG()
	case "workouts":
		runWorkouts()
	case "stock":
		runStock()
	case "sp500":
		runSP500()
	case "reference":
		runReference()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("fortytech version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug),
	)

	components := initializeComponents(cfg, logger)
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Workouts.WatchOrDefault() {
		if err := components.Workouts.Watch(watchCtx); err != nil {
			logger.Warn("workout dataset watch disabled", zap.String("path", cfg.Workouts.DataPath), zap.Error(err))
		}
	}

	srv := server.NewServer(cfg, components.Deps(), logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	Pipeline *rag.Pipeline
	Sessions *rag.Sessions
	Workouts *workouts.Source
	Stocks   *stocks.Client
	SP500    *sp500.Service
}

// Deps returns the server dependencies.
func (c *Components) Deps() server.Deps {
	return server.Deps{
		Pipeline: c.Pipeline,
		Sessions: c.Sessions,
		Workouts: c.Workouts,
		Stocks:   c.Stocks,
		SP500:    c.SP500,
	}
}

// Close releases watchers, indexes and model clients.
func (c *Components) Close() {
	if c.Workouts != nil {
		c.Workouts.Close()
	}
	if c.SP500 != nil {
		_ = c.SP500.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents builds every service. The RAG pipeline is left nil when the
// model clients cannot be created (for example without an API key).
func initializeComponents(cfg *config.Config, logger *zap.Logger) *Components {
	stockClient := stocks.NewClient(cfg.Stocks.BaseURL, stocks.WithLogger(logger))
	c := &Components{
		Sessions: rag.NewSessions(),
		Workouts: workouts.NewSource(cfg.Workouts.DataPath, cfg.Workouts.ExcludedClasses, workouts.WithLogger(logger)),
		Stocks:   stockClient,
		SP500:    sp500.NewService(cfg.SP500, stockClient, sp500.WithLogger(logger)),
	}
	pipeline, embedder, err := newPipeline(cfg, logger)
	if err != nil {
		logger.Warn("rag pipeline disabled", zap.Error(err))
		return c
	}
	c.Pipeline, c.Embedder = pipeline, embedder
	return c
}

func newPipeline(cfg *config.Config, logger *zap.Logger) (*rag.Pipeline, embedding.Embedder, error) {
	embedder, err := embedding.New(cfg.Embedding, cfg.Secrets.HuggingFaceAPIKey, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	client, err := llm.New(cfg.LLM, cfg.Secrets.HuggingFaceAPIKey, llm.WithLogger(logger))
	if err != nil {
		_ = embedder.Close()
		return nil, nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	return rag.NewPipeline(cfg.RAG, embedder, client, rag.WithLogger(logger)), embedder, nil
}

// stringList is a repeatable string flag. Set reports whether it was given at all.
type stringList struct {
	values []string
	set    bool
}

func (l *stringList) String() string { return strings.Join(l.values, ",") }

func (l *stringList) Set(v string) error {
	l.set = true
	if v = strings.TrimSpace(v); v != "" {
		l.values = append(l.values, v)
	}
	return nil
}

// Selection returns nil when the flag was never given, otherwise the values
// (possibly empty).
func (l *stringList) Selection() []string {
	if !l.set {
		return nil
	}
	if l.values == nil {
		return []string{}
	}
	return l.values
}

func printUsage() {
	fmt.Println(`fortytech - Demo apps: document Q&A, dashboards and reference pages

Usage:
  fortytech server [flags]                Start the HTTP server
  fortytech movies [flags]                Interactive movie records menu
  fortytech rag [flags]                   Process a source, then answer questions from stdin
  fortytech workouts [flags]              Workout dashboard report
  fortytech stock [flags] [symbol]        Daily closing prices and volumes
  fortytech sp500 <sectors|companies|prices|download> [flags]
                                          S&P 500 sector browser
  fortytech reference [flags] <page>      Render basics, text-elements or data-elements
  fortytech status [flags]                Show server status
  fortytech version                       Show version
  fortytech help                          Show this help

Common Flags:
  -config string   config file path (default: /usr/local/etc/fortytech/config.yaml,
                   then ./config.yaml, then built-in defaults)
  -output string   text or json

Environment:
  HUGGING_FACE_API   Hugging Face token for embeddings and the language model (.env is read)`)
}
