package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"broadcast-service/internal/config"
	"broadcast-service/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("Broadcast: No .env file found, relying on system env vars")
	}

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewServer(ctx, cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("📢 Broadcast service HTTP server starting on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		log.Println("🛑 Broadcast service shutting down gracefully...")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Broadcast service shutdown error: %v", err)
		}
	case err := <-errCh:
		log.Fatalf("Broadcast service failed: %v", err)
	}
}
