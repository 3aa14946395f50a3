package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/sawane/shiori/internal/logging"
	"github.com/sawane/shiori/pkg/adapters/file"
	httpAdapter "github.com/sawane/shiori/pkg/adapters/http"
	"github.com/sawane/shiori/pkg/adapters/memory"
	"github.com/sawane/shiori/pkg/adapters/redis"
	"github.com/sawane/shiori/pkg/adapters/yaml"
	"github.com/sawane/shiori/pkg/ports"
	"github.com/sawane/shiori/pkg/session"
)

// serveConfig is read from the environment; flags override it.
type serveConfig struct {
	Port          string `env:"SHIORI_PORT" envDefault:"8080"`
	Store         string `env:"SHIORI_STORE" envDefault:"memory"`
	SaveDir       string `env:"SHIORI_SAVE_DIR"`
	RedisAddr     string `env:"SHIORI_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"SHIORI_REDIS_PASSWORD"`
	RedisDB       int    `env:"SHIORI_REDIS_DB"`
}

var serveCmd = &cobra.Command{
	Use:   "serve <scenario.yaml>",
	Short: "Start the HTTP session server",
	Long:  `Serves the scenario as a JSON API over HTTP. Each POST /sessions creates an independent playthrough; saves go to the configured snapshot store.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SHIORI_PORT)")
	serveCmd.Flags().String("store", "", "Snapshot store: memory, file or redis (overrides SHIORI_STORE)")
	serveCmd.Flags().String("save-dir", "", "Directory for the file store (overrides SHIORI_SAVE_DIR)")
}

func runServe(cmd *cobra.Command, scenarioPath string) error {
	var cfg serveConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store = store
	}
	if dir, _ := cmd.Flags().GetString("save-dir"); dir != "" {
		cfg.SaveDir = dir
	}

	level, err := logging.ParseLevel(cmd.Flag("log-level").Value.String())
	if err != nil {
		return err
	}
	logger := logging.NewJSON(level)

	store, err := newSnapshotStore(cfg)
	if err != nil {
		return err
	}

	server := httpAdapter.NewServer(
		yaml.NewLoader(scenarioPath),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithSaves(session.NewManager(store, session.WithLogger(logger))),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Handler(),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "scenario", scenarioPath, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("starting shutdown", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("killing server: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}

func newSnapshotStore(cfg serveConfig) (ports.SnapshotStore, error) {
	switch cfg.Store {
	case "memory":
		return memory.NewStore(), nil
	case "file":
		return file.New(cfg.SaveDir), nil
	case "redis":
		return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want memory, file or redis)", cfg.Store)
	}
}
