// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/soundbite"
	"github.com/poiesic/soundbite/ai"
	"github.com/poiesic/soundbite/core"
	"github.com/poiesic/soundbite/server"
	"github.com/poiesic/soundbite/storage/badger"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var errShutdown = errors.New("shutdown requested")

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "soundbite",
		Usage: "Match free-text questions to pre-recorded audio clips",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the matching API over HTTP",
				Action: serveCommand,
				Flags: append(systemFlags(),
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP listen port",
						Value:   8000,
						EnvVars: []string{"PORT"},
					},
					&cli.IntFlag{
						Name:    "max-descriptions",
						Usage:   "Maximum phrases accepted per clip insert",
						Value:   server.DefaultMaxDescriptions,
						EnvVars: []string{"MAX_AUDIO_DESCRIPTIONS"},
					},
				),
			},
			{
				Name:      "match",
				Usage:     "Match one question against the catalogue",
				ArgsUsage: "<question>",
				Action:    matchCommand,
				Flags: append(systemFlags(),
					&cli.StringFlag{
						Name:    "method",
						Aliases: []string{"m"},
						Usage:   "Matching method (individual, combined, hybrid, max)",
						Value:   string(core.DefaultMethod),
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print every stage of the query",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the decision as JSON",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print catalogue statistics",
				Action: statsCommand,
				Flags:  systemFlags(),
			},
			{
				Name:  "cache",
				Usage: "Inspect the embedding cache",
				Subcommands: []*cli.Command{
					{
						Name:   "warm",
						Usage:  "Embed the catalogue into the cache ahead of serving",
						Action: cacheWarmCommand,
						Flags:  systemFlags(),
					},
					{
						Name:   "count",
						Usage:  "Count cached vectors for a model",
						Action: cacheCountCommand,
						Flags:  cacheFlags(),
					},
					{
						Name:   "purge",
						Usage:  "Delete cached vectors for a model",
						Action: cachePurgeCommand,
						Flags:  cacheFlags(),
					},
				},
			},
		},
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "catalogue",
			Aliases: []string{"c"},
			Usage:   "Path to the JSON or YAML catalogue file",
			Value:   "audio_base.json",
			EnvVars: []string{"CATALOGUE_PATH"},
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "BadgerDB directory for cached embeddings (empty disables caching)",
			EnvVars: []string{"CACHE_DIR"},
		},
		&cli.Float64Flag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Acceptance threshold between 0.0 and 1.0",
			Value:   0.7,
			EnvVars: []string{"SIMILARITY_THRESHOLD"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Attach score tables to every decision",
			EnvVars: []string{"DEBUG_MODE"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "all-minilm",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-token",
			Usage:   "Bearer token for the embedding service",
			EnvVars: []string{"EMBEDDING_TOKEN"},
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Number of clips embedded concurrently (0 uses half the CPUs)",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts per embedding request",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 500 * time.Millisecond,
		},
	}
}

func cacheFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "cache-dir",
			Usage:    "BadgerDB directory for cached embeddings",
			Required: true,
			EnvVars:  []string{"CACHE_DIR"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model whose vectors are counted or purged (empty means all)",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
	}
}

// configFromFlags builds a system configuration from the command's flags.
// Flags a command does not define keep their defaults.
func configFromFlags(c *cli.Context) *soundbite.Config {
	cfg := soundbite.DefaultConfig()
	cfg.CataloguePath = c.String("catalogue")
	cfg.CacheDir = c.String("cache-dir")
	cfg.Threshold = c.Float64("threshold")
	cfg.Debug = c.Bool("debug")
	cfg.PoolSize = c.Int("pool-size")
	if port := c.Int("port"); port != 0 {
		cfg.Port = port
	}
	if n := c.Int("max-descriptions"); n != 0 {
		cfg.MaxDescriptions = n
	}
	cfg.AI = ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithToken(c.String("embedding-token")),
		ai.WithMaxRetries(c.Int("max-retries")),
		ai.WithRetryDelay(c.Duration("retry-delay")),
	)
	return cfg
}

func serveCommand(c *cli.Context) error {
	cfg := configFromFlags(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// A failed start still serves health and reports the system as not
	// initialized.
	var srv *server.Server
	sys, err := soundbite.NewSystem(c.Context, cfg)
	if err != nil {
		slog.Error("error initializing system", "err", err)
		srv, err = server.New(nil, server.WithMaxDescriptions(cfg.MaxDescriptions))
	} else {
		defer sys.Close()
		srv, err = sys.NewServer()
	}
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, ctx := errgroup.WithContext(c.Context)
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			slog.Info("received signal", "signal", sig)
			return errShutdown
		case <-ctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		return srv.Run(ctx, cfg.Addr())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

func matchCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("a question is required")
	}
	method, err := core.ParseMethod(c.String("method"))
	if err != nil {
		return err
	}

	cfg := configFromFlags(c)
	var opts []soundbite.SystemOption
	if c.Bool("trace") {
		opts = append(opts, soundbite.WithMonitor(newTraceMonitor(c.App.ErrWriter)))
	}
	sys, err := soundbite.NewSystem(c.Context, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize system: %w", err)
	}
	defer sys.Close()

	decision, err := sys.Engine().Match(c.Context, text, method)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, server.Render(decision))
	}
	printDecision(c.App.Writer, decision)
	return nil
}

func statsCommand(c *cli.Context) error {
	sys, err := soundbite.NewSystem(c.Context, configFromFlags(c))
	if err != nil {
		return fmt.Errorf("failed to initialize system: %w", err)
	}
	defer sys.Close()

	stats := sys.Engine().Stats()
	w := c.App.Writer
	fmt.Fprintf(w, "Catalogue: %s\n", sys.Config().CataloguePath)
	fmt.Fprintf(w, "Model: %s\n", stats.Model)
	fmt.Fprintf(w, "Threshold: %.3f\n", stats.Threshold)
	fmt.Fprintf(w, "Clips: %d\n", stats.Count)
	for _, id := range stats.ClipIDs {
		fmt.Fprintf(w, "  %s\n", id)
	}
	return nil
}

func cacheWarmCommand(c *cli.Context) error {
	cfg := configFromFlags(c)
	if cfg.CacheDir == "" {
		return fmt.Errorf("cache-dir is required")
	}

	sys, err := soundbite.NewSystem(c.Context, cfg, soundbite.WithLoadProgress(c.App.ErrWriter))
	if err != nil {
		return fmt.Errorf("failed to initialize system: %w", err)
	}
	defer sys.Close()

	n, err := sys.Cache().Count(c.Context, sys.Engine().Stats().Model)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Cached %d vectors for %d clips\n", n, sys.Store().Len())
	return nil
}

func cacheCountCommand(c *cli.Context) error {
	repo, err := badger.OpenVectorRepository(c.String("cache-dir"))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer repo.Close()

	n, err := repo.Count(c.Context, c.String("embedding-model"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d\n", n)
	return nil
}

func cachePurgeCommand(c *cli.Context) error {
	repo, err := badger.OpenVectorRepository(c.String("cache-dir"))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer repo.Close()

	n, err := repo.Purge(c.Context, c.String("embedding-model"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Purged %d vectors\n", n)
	return nil
}

func printDecision(w io.Writer, d *core.Decision) {
	switch r := d.Result.(type) {
	case core.Success:
		fmt.Fprintf(w, "%s\n", r.ClipID)
	case core.NoMatch:
		if r.BestGuess != "" {
			fmt.Fprintf(w, "no match (best candidate %s)\n", r.BestGuess)
		} else {
			fmt.Fprintln(w, "no match")
		}
	case core.Failure:
		fmt.Fprintf(w, "error: %s\n", r.Reason)
	}
	fmt.Fprintf(w, "%s [%s, confidence %.3f]\n", d.Message, d.Method, d.Confidence)
	if d.MethodUsed != "" {
		fmt.Fprintf(w, "method used: %s\n", d.MethodUsed)
	}
	for _, cs := range d.Scores {
		fmt.Fprintf(w, "  %-30s %0.3f\n", cs.ClipID, cs.Score)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

