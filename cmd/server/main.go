/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the budget engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load optional YAML config
  2. Initialize SQLite store
  3. Build the planner and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: budget.db)
           Use ":memory:" for an in-memory database
  -config  Optional YAML config path (log level, sweep pass limit)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/budget.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run with a config file
  ./server -config=./budget.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: YAML settings
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/config"
	"github.com/warp/budget-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "YAML config path")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Build the planner and handler
	planner := budget.NewPlanner(store,
		budget.WithLogger(log),
		budget.WithSweepPassLimit(cfg.SweepPassLimit),
	)
	handler := api.NewHandler(planner, log)
	if cfg.DemoScenarios {
		handler.Resetter = store
	}
	router := api.NewRouter(handler)

	// Background sweep catches weeks that become eligible by date alone
	scheduler := api.NewSweepScheduler(planner, log)
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Str("db", cfg.DBPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
