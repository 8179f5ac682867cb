/*
Package main is the entry point for the CRM messaging server.

It is responsible for loading configuration, initializing the global logging
system, connecting to PostgreSQL and applying migrations, wiring the messaging
core (cipher codec, presence registry, message router, typing relay, group
service), and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"crmchat/internal/app/chat"
	"crmchat/internal/app/cipher"
	"crmchat/internal/app/db"
	"crmchat/internal/app/group"
	"crmchat/internal/app/presence"
	"crmchat/internal/configs"
	"crmchat/internal/handler"
	"crmchat/internal/pkg/logx"
	"crmchat/internal/pkg/metrics"
)

func main() {
	// A missing .env is fine; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("group_scoped_listing", cfg.GroupScopedListing).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to database")
	}
	defer pool.Close()

	codec, err := cipher.NewCodec([]byte(cfg.MessageSecretKey))
	if err != nil {
		logx.Fatal(err, "Failed to initialize message codec")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	registry := presence.NewRegistry(m)
	groups := group.NewService(db.NewGroupStore(pool), cfg.GroupScopedListing)
	router := chat.NewRouter(db.NewMessageStore(pool), groups, codec, registry, m)
	typing := chat.NewTypingRelay(groups, registry, m)

	deps := &handler.AppDeps{
		Config:    cfg,
		Registry:  registry,
		Router:    router,
		Typing:    typing,
		Groups:    groups,
		Directory: db.NewUserDirectory(pool),
		Metrics:   m,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("CRM Messaging Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
