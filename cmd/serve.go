package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cardintel-cli/internal/extract"
	"github.com/sells-group/cardintel-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server for extraction and pricing requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		resolver := initResolver(st)

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /extract", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Text     string `json:"text"`
				Filename string `json:"filename"`
				BackText string `json:"back_text,omitempty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if req.Filename == "" {
				http.Error(w, `{"error":"filename is required"}`, http.StatusBadRequest)
				return
			}

			rec := handleExtract(req.Text, req.BackText, req.Filename)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(rec)
		})

		mux.HandleFunc("POST /price", func(w http.ResponseWriter, r *http.Request) {
			var rec model.CardRecord
			if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}

			quote := resolver.Resolve(r.Context(), rec)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(quote)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			gracefulShutdown(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// gracefulShutdown drains in-flight requests under its own deadline; the
// signal context is already canceled by the time it runs.
func gracefulShutdown(srv *http.Server) {
	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx) //nolint:errcheck
}

// handleExtract runs extraction over supplied OCR text, merging a back side
// when present.
func handleExtract(text, backText, filename string) model.CardRecord {
	front := extract.ClassifyAndExtract(text, filename)

	var back *model.CardRecord
	if backText != "" {
		b := extract.ClassifyAndExtract(backText, filename)
		back = &b
	}

	player := extract.PlayerFromFilename(filename)
	return extract.MergeDualSide(front, back, player)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
