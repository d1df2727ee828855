package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/batch"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/fetcher"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/model"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/task"
)

var (
	servePort    int
	serveNoAI    bool
	serveOffline bool
)

// serverEnv carries the state shared by the HTTP handlers. baseCtx
// outlives individual requests so background batches survive the
// upload response.
type serverEnv struct {
	cfg       *config.Config
	registry  *task.Registry
	baseCtx   context.Context
	aiEnabled bool

	// newOrchestrator builds a pipeline honoring per-upload locale
	// overrides. Empty strings keep the configured defaults.
	newOrchestrator func(country, language string) (*batch.Orchestrator, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server",
	Long:  "Serves the batch API: upload a business file, poll task progress, download the results CSV, and requery unmatched rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newServerEnv(ctx, cfg, serveOffline, serveNoAI)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return serveHTTP(ctx, srv, ln)
	},
}

// serveHTTP serves until ctx is cancelled, then waits for Shutdown to
// drain in-flight requests before returning.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		zap.L().Info("shutting down server")
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server serve")
	}
	<-done
	return nil
}

func newServerEnv(ctx context.Context, cfg *config.Config, offline, noAI bool) (*serverEnv, error) {
	registry := task.NewRegistry()

	// Fail fast on missing credentials before the first upload.
	_, aiEnabled, err := newOrchestrator(cfg, registry, offline, noAI)
	if err != nil {
		return nil, err
	}

	return &serverEnv{
		cfg:       cfg,
		registry:  registry,
		baseCtx:   ctx,
		aiEnabled: aiEnabled,
		newOrchestrator: func(country, language string) (*batch.Orchestrator, error) {
			c := *cfg
			if country != "" {
				c.Google.Country = country
			}
			if language != "" {
				c.Google.Language = language
			}
			if err := c.Google.ValidateLocale(); err != nil {
				return nil, err
			}
			orch, _, err := newOrchestrator(&c, registry, offline, noAI)
			return orch, err
		},
	}, nil
}

func newRouter(env *serverEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", env.handleHealth)
	r.Post("/upload", env.handleUpload)
	r.Get("/status/{taskID}", env.handleStatus)
	r.Get("/download/{taskID}", env.handleDownload)
	r.Get("/tasks/{taskID}/notfound", env.handleNotFound)
	r.Post("/tasks/{taskID}/requery", env.handleRequery)

	return r
}

func (s *serverEnv) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"google_configured": s.cfg.Google.APIKey != "" && s.cfg.Google.CSEID != "",
		"ai_enabled":        s.aiEnabled,
	})
}

func (s *serverEnv) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	var queries []model.BusinessQuery
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		queries, err = fetcher.ParseXLSX(data)
	} else {
		queries, err = fetcher.ParseCSV(strings.NewReader(string(data)))
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, "no processable rows in file")
		return
	}

	country := r.FormValue("country_code")
	language := r.FormValue("language")
	orch, err := s.newOrchestrator(country, language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if country == "" {
		country = s.cfg.Google.Country
	}
	if language == "" {
		language = s.cfg.Google.Language
	}

	taskID := s.registry.Create(queries, country, language)
	go s.runBatch(orch, taskID)

	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":       taskID,
		"total_records": len(queries),
	})
}

func (s *serverEnv) handleStatus(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *serverEnv) handleDownload(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	if t.Status != model.TaskCompleted {
		writeError(w, http.StatusBadRequest, "processing not completed yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=facebook_urls_%s.csv", t.ID))
	if err := fetcher.WriteResultsCSV(w, t.Results); err != nil {
		zap.L().Error("serve: write results CSV", zap.String("task", t.ID), zap.Error(err))
	}
}

func (s *serverEnv) handleNotFound(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}

	missed, err := s.registry.NotFound(t.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if missed == nil {
		missed = []model.BusinessQuery{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":   t.ID,
		"count":     len(missed),
		"not_found": missed,
	})
}

func (s *serverEnv) handleRequery(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	if !t.Status.Terminal() {
		writeError(w, http.StatusConflict, "task is still processing")
		return
	}

	missed, err := s.registry.NotFound(t.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if len(missed) == 0 {
		writeError(w, http.StatusBadRequest, "no unmatched rows to requery")
		return
	}

	// The new task inherits the originating task's locale.
	orch, err := s.newOrchestrator(t.Country, t.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	taskID := s.registry.Create(missed, t.Country, t.Language)
	go s.runBatch(orch, taskID)

	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":       taskID,
		"total_records": len(missed),
	})
}

func (s *serverEnv) runBatch(orch *batch.Orchestrator, taskID string) {
	if err := orch.Run(s.baseCtx, taskID); err != nil {
		zap.L().Error("serve: batch run", zap.String("task", taskID), zap.Error(err))
	}
}

// lookupTask resolves the taskID path parameter, writing a 404 when it
// is unknown.
func (s *serverEnv) lookupTask(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	t, err := s.registry.Get(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "task not found")
		return model.Task{}, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoAI, "no-ai", false, "disable the AI judgment pass")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "use the stub search backend (no network)")
	rootCmd.AddCommand(serveCmd)
}
