package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Savit10/streamsense/internal/bootstrap/logging"
	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/usecase/ingest"
	"github.com/Savit10/streamsense/internal/usecase/query"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API over HTTP",
	Long:  "Serves materialized per-user features and the recent event log. With --ingest it also runs the Kafka consumer loop in the same process; the two tasks share nothing but the store.",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		withIngest, _ := cmd.Flags().GetBool("ingest")
		addr, _ := cmd.Flags().GetString("addr")
		addr = strings.TrimSpace(addr)
		if addr == "" {
			addr = deps.App.Config.Server.Addr
		}

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ingestDone := make(chan error, 1)
		if withIngest {
			go func() {
				ingestDone <- runIngestLoop(ctx, deps)
			}()
		} else {
			ingestDone <- nil
		}

		server := &http.Server{
			Addr:    addr,
			Handler: newReadAPIHandler(deps.QuerySvc),
		}

		serveDone := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveDone <- err
				return
			}
			serveDone <- nil
		}()

		logging.Info(ctx, "read api server started", slog.String("addr", addr), slog.Bool("ingest", withIngest))

		select {
		case <-ctx.Done():
		case err := <-serveDone:
			if err != nil {
				stop()
				<-ingestDone
				return errs.Wrap(err, "serve read api")
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn(ctx, "server shutdown failed", slog.Any("err", errs.Loggable(err)))
		}

		if err := <-ingestDone; err != nil {
			return errs.Wrap(err, "run ingest loop")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr config)")
	serveCmd.Flags().Bool("ingest", false, "Also run the Kafka ingest loop in this process")
}

type featureNotFoundResponse struct {
	UserID uint64 `json:"user_id"`
	Status string `json:"status"`
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func newReadAPIHandler(svc *query.Service) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeAPIJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})

	r.Get("/features/sample_users", func(w http.ResponseWriter, req *http.Request) {
		items, err := svc.ListSample(req.Context(), query.SampleLimit)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeAPIJSON(w, http.StatusOK, items)
	})

	r.Get("/features/{user_id}", func(w http.ResponseWriter, req *http.Request) {
		userID, err := strconv.ParseUint(chi.URLParam(req, "user_id"), 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "user_id must be a non-negative integer")
			return
		}

		view, found, err := svc.GetFeature(req.Context(), userID)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !found {
			writeAPIJSON(w, http.StatusOK, featureNotFoundResponse{UserID: userID, Status: "not_found"})
			return
		}
		writeAPIJSON(w, http.StatusOK, view)
	})

	r.Get("/events/recent/{n}", func(w http.ResponseWriter, req *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(req, "n"))
		if err != nil || n < 0 {
			writeAPIError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}

		items, err := svc.ListRecentEvents(req.Context(), n)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeAPIJSON(w, http.StatusOK, items)
	})

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		raw, found, err := svc.StatsSnapshot(req.Context(), ingest.StatsKey)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !found {
			raw = "{}"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(raw))
	})

	return r
}

func writeAPIJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeAPIJSON(w, status, apiErrorResponse{Error: message})
}
