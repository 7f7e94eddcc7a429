package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/database"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/logging"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("KITAMO_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("KITAMO_DB_PATH")
	if dbPath == "" {
		dbPath = "kitamo.db"
	}

	jwtSecret := os.Getenv("KITAMO_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("KITAMO_JWT_SECRET must be set")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		JWTSecret:     jwtSecret,
		TokenDuration: 24 * time.Hour,
	}, logger)

	// Expired rate-limit entries accumulate without this.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("KitaMo! running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
