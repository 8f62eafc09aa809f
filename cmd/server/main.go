/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave management server: configuration,
  storage, org seeding, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and parse command-line flags
  2. Open the SQLite store (":memory:" supported)
  3. Load the org file, or fall back to the built-in demo org
  4. Seed balances and pre-existing records (idempotent)
  5. Wire engine, reporter, and HTTP router
  6. Serve with graceful shutdown

COMMAND-LINE FLAGS:
  -port   HTTP server port (default: $PORT or 8080)
  -db     SQLite database path (default: leave.db)
  -org    org YAML file; empty loads the built-in demo org

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Flags (environment supplies defaults)
	defaultPort := 8080
	if raw := os.Getenv("PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			defaultPort = p
		}
	}
	port := flag.Int("port", defaultPort, "HTTP server port")
	dbPath := flag.String("db", "leave.db", "SQLite database path")
	orgPath := flag.String("org", "", "org YAML file (empty = built-in demo org)")
	flag.Parse()

	// Storage
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Org configuration
	var org *factory.OrgConfig
	if *orgPath != "" {
		org, err = factory.Load(*orgPath)
		if err != nil {
			logger.Fatal("failed to load org file", zap.String("path", *orgPath), zap.Error(err))
		}
		logger.Info("org loaded", zap.String("path", *orgPath))
	} else {
		org = factory.DemoOrg()
		logger.Info("using built-in demo org")
	}

	if err := factory.Seed(context.Background(), store, org); err != nil {
		logger.Fatal("failed to seed store", zap.Error(err))
	}

	// Core wiring
	directory := org.Directory()
	policies := org.PolicyStore()

	engine := leave.NewEngine(leave.Config{
		Directory: directory,
		Policies:  policies,
		Store:     store,
		Notifier:  leave.NewLogNotifier(logger),
		Audit:     store,
		Logger:    logger,
	})
	reporter := &leave.Reporter{Directory: directory, Store: store}

	handler := &api.Handler{
		Engine:    engine,
		Reporter:  reporter,
		Directory: directory,
		Policies:  policies,
		Audit:     store,
	}
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
