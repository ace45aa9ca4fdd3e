package main

import (
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

	"github.com/inhuren/agency-scraper/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for triggering and inspecting scrape runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/scrape/{agency}", func(w http.ResponseWriter, req *http.Request) {
			key := chi.URLParam(req, "agency")
			agency, ok := e.Registry.Get(key)
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown agency"})
				return
			}

			go func() {
				if _, err := e.Pipeline.RunAgency(ctx, agency); err != nil {
					zap.L().Error("serve: agency run failed",
						zap.String("agency", key), zap.Error(err))
				}
			}()
			writeJSON(w, http.StatusAccepted, map[string]string{
				"status": "accepted",
				"agency": key,
			})
		})

		r.Post("/scrape-all", func(w http.ResponseWriter, _ *http.Request) {
			go func() {
				if _, err := e.Pipeline.RunAll(ctx); err != nil {
					zap.L().Error("serve: batch run failed", zap.Error(err))
				}
			}()
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			filter := store.RunFilter{AgencyKey: req.URL.Query().Get("agency")}
			runs, err := e.Store.ListRuns(req.Context(), filter)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/profiles/{agency}", func(w http.ResponseWriter, req *http.Request) {
			profile, err := e.Store.GetProfile(req.Context(), chi.URLParam(req, "agency"))
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
				return
			}
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get profile failed"})
				return
			}
			writeJSON(w, http.StatusOK, profile)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
