/*
Package main is the entry point for the taskhub server.

It loads configuration, initializes the global logger, opens the configured storage,
starts the realtime hub and the HTTP server, and shuts everything down gracefully on
SIGINT or SIGTERM.
*/
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

	"taskhub/internal/app/db"
	"taskhub/internal/app/memstore"
	"taskhub/internal/app/realtime"
	"taskhub/internal/app/task"
	"taskhub/internal/app/user"
	"taskhub/internal/configs"
	"taskhub/internal/handler"
	"taskhub/internal/pkg/auth/jwt"
	"taskhub/internal/pkg/logx"
)

// stores is the storage backend picked by STORAGE_DRIVER.
type stores struct {
	tasks task.Directory
	users user.Store
	close func()
}

func openStores(ctx context.Context, cfg *configs.AppConfig) (*stores, error) {
	switch cfg.StorageDriver {
	case configs.StorageDriverMemory:
		logx.Warn("Using in-memory storage. Data is lost on restart.")
		return &stores{
			tasks: memstore.NewTaskStore(),
			users: memstore.NewUserStore(),
			close: func() {},
		}, nil

	case configs.StorageDriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			tasks: db.NewTaskStore(pool),
			users: db.NewUserStore(pool),
			close: pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("storage_driver", cfg.StorageDriver).
		Dur("token_lifetime", cfg.TokenLifetime).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open storage")
	}
	defer st.close()

	verifier := jwt.NewVerifier(cfg.JWTSecret)
	users := user.NewService(st.users)

	// The hub's emitter is the task service's notifier: every committed
	// mutation is pushed to the owner's room.
	hub := realtime.NewHub(verifier, users, st.tasks)
	tasks := task.NewService(st.tasks, hub.Emitter())

	router, stopLimiters := handler.Router(&handler.AppDeps{
		Config:   cfg,
		Verifier: verifier,
		Users:    users,
		Tasks:    tasks,
		Hub:      hub,
	})
	defer stopLimiters()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info("taskhub server starting", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
