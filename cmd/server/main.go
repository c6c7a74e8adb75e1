/*
HRMS Lite backend server.

Configuration comes from environment variables (a .env file is loaded if
present), with flags taking precedence:

	HRMS_ADDR          listen address        (default ":8080")
	HRMS_DB            SQLite database path  (default "hrms.db")
	HRMS_CORS_ORIGINS  comma-separated CORS origins (default "*")

USAGE:
	go run ./cmd/server
	go run ./cmd/server -addr :9090 -db /var/lib/hrms/hrms.db
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hrmslite/backend/api"
	"github.com/hrmslite/backend/store/sqlite"
)

func main() {
	// A missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("HRMS_ADDR", ":8080"), "listen address")
	dbPath := flag.String("db", envOr("HRMS_DB", "hrms.db"), "sqlite database path")
	flag.Parse()

	origins := strings.Split(envOr("HRMS_CORS_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	server := &http.Server{
		Addr:    *addr,
		Handler: api.NewRouter(store, origins),
	}

	go func() {
		log.Printf("hrms server listening on %s (db: %s)", *addr, *dbPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("server stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
