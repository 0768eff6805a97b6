package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/debtfree/internal/config"
	"github.com/mmynk/debtfree/internal/server"
	"github.com/mmynk/debtfree/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()
	slog.Info("Storage initialized", "data_dir", cfg.DataDir)

	handler := corsMiddleware(srv.Handler())

	// h2c allows HTTP/2 without TLS; mobile clients sync faster over
	// multiplexed connections when a TLS-terminating proxy sits in front.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Sync server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser and mobile webview access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Sync-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
