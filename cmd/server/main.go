/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the citizen traffic-report service.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment), apply flag overrides
  2. Initialize SQLite store (schema auto-migrates)
  3. Create photo storage and optional image-host client
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (overrides PORT)
  -db       SQLite database path (overrides DB_PATH)
            Use ":memory:" for an in-memory database
  -uploads  Local photo storage directory (overrides UPLOAD_DIR)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solapur/traffic-reports/api"
	"github.com/solapur/traffic-reports/config"
	"github.com/solapur/traffic-reports/photo"
	"github.com/solapur/traffic-reports/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags override the environment for local runs.
	port := flag.String("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	uploadsDir := flag.String("uploads", cfg.Uploads.Dir, "photo uploads directory")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	photos := photo.NewStorage(*uploadsDir)
	host := &photo.HostClient{
		URL:    cfg.ImageHost.URL,
		APIKey: cfg.ImageHost.APIKey,
	}

	handler := api.NewHandler(store, photos, host)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:   cfg.CORS.Origins,
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
		UploadsDir:    *uploadsDir,
	})

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
