package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/leadsource"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/internal/table"
)

const maxRequestBytes = 8 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for lead search and enrichment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEnv(ctx, true, true)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(&api{enricher: env.Processor, finder: env.Source, store: env.Store}),
			ReadHeaderTimeout: 10 * time.Second,
		}

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

type batchEnricher interface {
	Enrich(ctx context.Context, leads []model.Lead, progress func(pipeline.Progress)) []model.EnrichedLead
}

type leadFinder interface {
	FindLeads(ctx context.Context, q leadsource.Query) ([]model.Lead, error)
}

// api serves the HTTP endpoints. store may be nil.
type api struct {
	enricher batchEnricher
	finder   leadFinder
	store    store.Store
}

func newRouter(a *api) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/enrich", a.handleEnrich)
		r.Post("/leads/search", a.handleSearch)
		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{id}", a.handleGetRun)
	})
	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type enrichRequest struct {
	Leads []model.Lead `json:"leads"`
}

type enrichResponse struct {
	RunID     string               `json:"run_id,omitempty"`
	Total     int                  `json:"total"`
	Processed int                  `json:"processed"`
	Failed    int                  `json:"failed"`
	Results   []model.EnrichedLead `json:"results"`
}

func (a *api) handleEnrich(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	leads := make([]model.Lead, 0, len(req.Leads))
	for _, l := range req.Leads {
		leads = append(leads, model.CleanLead(l))
	}
	leads = pipeline.Dedupe(leads)
	if len(leads) == 0 {
		writeError(w, http.StatusBadRequest, "leads is required")
		return
	}

	rows := a.enricher.Enrich(r.Context(), leads, nil)
	processed, failed := store.Counts(rows)
	resp := enrichResponse{
		Total:     len(rows),
		Processed: processed,
		Failed:    failed,
		Results:   rows,
	}

	run, err := recordRun(context.WithoutCancel(r.Context()), a.store, model.RunSourceAPI, "api", rows)
	if err != nil {
		zap.L().Warn("failed to record run", zap.Error(err))
	}
	if run != nil {
		resp.RunID = run.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchResponse struct {
	Leads   []model.Lead `json:"leads"`
	Warning string       `json:"warning,omitempty"`
}

func (a *api) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q leadsource.Query
	if err := decodeJSON(w, r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(q.Category) == "" && strings.TrimSpace(q.Keyword) == "" {
		writeError(w, http.StatusBadRequest, "category or keyword is required")
		return
	}
	if err := leadsource.ValidateLocation(q.Location); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	leads, err := a.finder.FindLeads(r.Context(), q)
	resp := searchResponse{Leads: pipeline.Dedupe(leads)}
	if resp.Leads == nil {
		resp.Leads = []model.Lead{}
	}
	if err != nil {
		switch {
		case errors.Is(err, leadsource.ErrGeocode):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case len(leads) == 0:
			zap.L().Error("lead search failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "lead search failed")
			return
		}
		resp.Warning = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store is disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := a.store.ListRuns(r.Context(), limit)
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (a *api) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run store is disabled")
		return
	}
	id := chi.URLParam(r, "id")

	run, err := a.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get run failed")
		return
	}
	rows, err := a.store.GetResults(r.Context(), id)
	if err != nil {
		zap.L().Error("get results failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get results failed")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "":
		if rows == nil {
			rows = []model.EnrichedLead{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run, "results": rows})
	case formatCSV, formatXLSX:
		contentType := "text/csv"
		if format == formatXLSX {
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		name := table.Filename(table.PrefixProcessed, run.CreatedAt, format)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		if err := encodeTable(w, table.FromEnriched(rows), format); err != nil {
			zap.L().Error("export run failed", zap.String("run_id", id), zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	return json.NewDecoder(r.Body).Decode(v)
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
