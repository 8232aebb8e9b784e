package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/webseeker/server/internal/cache"
	"github.com/webseeker/server/internal/config"
	"github.com/webseeker/server/internal/exa"
	"github.com/webseeker/server/internal/gemini"
	httphandler "github.com/webseeker/server/internal/http"
	"github.com/webseeker/server/internal/http/handlers"
	"github.com/webseeker/server/internal/session"
	"github.com/webseeker/server/internal/suggest"
	"github.com/webseeker/server/internal/verify"
	"github.com/webseeker/server/internal/vonage"
)

func main() {
	// Load .env from CWD so running from the repo root works (env vars override)
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Construct provider clients explicitly and pass them down; no package-level
	// singletons, so tests can substitute fakes at every seam.
	vonageClient, err := vonage.NewClient(vonage.Config{
		APIKey:         cfg.VonageAPIKey,
		APISecret:      cfg.VonageAPISecret,
		ApplicationID:  cfg.VonageApplicationID,
		PrivateKeyPath: cfg.VonagePrivateKeyPath,
		Brand:          cfg.VonageBrand,
		Sender:         cfg.VonageSender,
	})
	if err != nil {
		log.Fatalf("Failed to create Vonage client: %v", err)
	}

	geminiClient := gemini.NewClient(gemini.Config{APIKey: cfg.GeminiAPIKey})
	exaClient := exa.NewClient(exa.Config{APIKey: cfg.ExaAPIKey})

	// Initialize services
	sessionService := session.NewJWTService(cfg.SessionJWTSecret)
	verifyService := verify.NewService(vonageClient)
	suggestService := suggest.NewService(geminiClient, cache.NewMemory())

	// Initialize handlers
	verificationHandler := handlers.NewVerificationHandler(verifyService)
	suggestHandler := handlers.NewSuggestHandler(suggestService)
	searchHandler := handlers.NewSearchHandler(exaClient)

	// Create router
	router := httphandler.NewRouter(verificationHandler, suggestHandler, searchHandler, sessionService)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
