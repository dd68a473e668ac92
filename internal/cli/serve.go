package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP ingest API",
	Long: `Serve exposes the evaluation pipeline over HTTP:
- POST /api/sessions   accepts a session and starts processing (202)
- GET  /api/results/{id}  returns the final result once processing finishes
- GET  /health         liveness check

Sessions are processed asynchronously; clients poll the results endpoint.

Example:
  truelens serve
  truelens serve --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: config value)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	port := servePort
	if port <= 0 {
		port = app.cfg.Server.Port
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/sessions", app.handleIngest)
	mux.HandleFunc("GET /api/results/{id}", app.handleResult)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.log.Info("http server listening", zap.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		app.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
	}
	return nil
}

// handleIngest accepts a session and processes it in the background. The
// response carries the session id to poll for results.
func (a *app) handleIngest(w http.ResponseWriter, r *http.Request) {
	var session model.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session JSON"})
		return
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	go func() {
		// Detached from the request context so processing survives the
		// client disconnecting after the 202.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		a.pipeline.Process(ctx, &session)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"session_id": session.ID,
		"status":     "processing",
	})
}

// handleResult returns a saved final result, or 404 while processing is
// still in flight.
func (a *app) handleResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := a.results.LoadFinal(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"session_id": id,
			"status":     "pending",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
