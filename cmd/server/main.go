package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/shapeboard/shapeboard/internal/config"
	"github.com/shapeboard/shapeboard/internal/export"
	"github.com/shapeboard/shapeboard/internal/logging"
	mw "github.com/shapeboard/shapeboard/internal/middleware"
	"github.com/shapeboard/shapeboard/internal/session"
	"github.com/shapeboard/shapeboard/internal/static"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewManager(session.Defaults{
		Color:  cfg.DefaultColor,
		Radius: strconv.Itoa(cfg.DefaultRadius),
	}, cfg.OriginHosts())
	go sessions.Run(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(cfg, sessions),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close websocket sessions first, Shutdown does not wait for hijacked connections
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "static", cfg.StaticDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, sessions *session.Manager) *mux.Router {
	staticHandler := static.NewHandler(cfg.StaticDir)
	exportHandler := export.NewHandler(cfg.MaxExportSize, cfg.MaxExportCircles)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, sessions.Count())
	}).Methods("GET")

	// Export endpoint
	r.HandleFunc("/export/png", exportHandler.ExportPNG).Methods("POST", "OPTIONS")

	// Server-side board sessions
	r.HandleFunc("/ws/board", sessions.ServeWS).Methods("GET")

	// Web bundle (index.html, board.wasm, wasm_exec.js)
	r.PathPrefix("/").Handler(staticHandler.Serve()).Methods("GET", "HEAD")

	return r
}
