package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lelandsequel/CL-SEO-AUTO/internal/metrics"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/model"
	"github.com/lelandsequel/CL-SEO-AUTO/internal/pipeline"
)

// Per-request limits of the search API.
const (
	apiMaxIndustries  = 3
	apiMaxPerIndustry = 3
	maxRequestBytes   = 1 << 20
)

var servePort int

// leadRunner runs one lead search.
type leadRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// searchRequest is the POST /api/search body.
type searchRequest struct {
	Location       string `json:"location"`
	Industries     string `json:"industries"`
	Mode           string `json:"mode"`
	MaxPerIndustry *int   `json:"max_per_industry"`
}

// searchResponse is the POST /api/search reply.
type searchResponse struct {
	RunID            string       `json:"run_id"`
	Results          []model.Lead `json:"results"`
	EstimatedCostUSD float64      `json:"estimated_cost_usd"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead search API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initPipeline(cfg, "serve")
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(env.Pipeline),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(runner leadRunner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())
	r.Post("/api/search", searchHandler(runner))

	return r
}

func searchHandler(runner leadRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Location == "" {
			writeError(w, http.StatusBadRequest, "location is required")
			return
		}

		mode, err := pipeline.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, "mode must be manual, auto, or hybrid")
			return
		}
		industries, err := pipeline.ResolveIndustries(mode, req.Industries)
		if err != nil {
			writeError(w, http.StatusBadRequest, "industries are required in manual mode")
			return
		}
		if len(industries) > apiMaxIndustries {
			industries = industries[:apiMaxIndustries]
		}

		maxPer := apiMaxPerIndustry
		if req.MaxPerIndustry != nil {
			maxPer = *req.MaxPerIndustry
		}
		if maxPer < 0 {
			writeError(w, http.StatusBadRequest, "max_per_industry must be >= 0")
			return
		}
		maxPer = min(maxPer, apiMaxPerIndustry)

		result, err := runner.Run(r.Context(), pipeline.Request{
			Location:       req.Location,
			Industries:     industries,
			MaxPerIndustry: maxPer,
		})
		if err != nil {
			zap.L().Error("api search failed", zap.String("location", req.Location), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to search for leads")
			return
		}

		writeJSON(w, http.StatusOK, searchResponse{
			RunID:            result.RunID,
			Results:          result.Leads,
			EstimatedCostUSD: result.EstimatedCostUSD,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
