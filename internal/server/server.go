// Package server is the HTTP front-end: a thin adapter translating request
// and response shapes to and from plans and execution reports. Every call
// gets its own page session, torn down unconditionally before responding.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
	"github.com/xkilldash9x/marketprobe/internal/config"
	"github.com/xkilldash9x/marketprobe/internal/store"
	"github.com/xkilldash9x/marketprobe/internal/task"
)

// Executor runs a validated plan against a session.
type Executor interface {
	Execute(ctx context.Context, sess schemas.PageSession, plan *schemas.Plan) (*schemas.ExecutionReport, error)
}

// Recorder persists finished runs. Optional; a nil Recorder disables history.
type Recorder interface {
	SaveRun(ctx context.Context, run store.Run) error
}

// Server serves the HTTP API.
type Server struct {
	logger   *zap.Logger
	cfg      *config.ServerConfig
	taskCfg  *config.TaskConfig
	sessions schemas.SessionManager
	exec     Executor
	recorder Recorder
}

// New assembles the HTTP front-end.
func New(logger *zap.Logger, cfg *config.ServerConfig, taskCfg *config.TaskConfig, sessions schemas.SessionManager, exec Executor, recorder Recorder) *Server {
	return &Server{
		logger:   logger.Named("http"),
		cfg:      cfg,
		taskCfg:  taskCfg,
		sessions: sessions,
		exec:     exec,
		recorder: recorder,
	}
}

// RegisterHandlers attaches the API routes to mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /run-fixed-task", s.handleRunFixedTask)
	mux.HandleFunc("POST /run-plan", s.handleRunPlan)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// Run serves until ctx is cancelled, then drains with a bounded shutdown.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	s.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     mux,
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
		}
		return nil
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRunFixedTask runs the built-in extraction plan. The goal field is
// accepted for logging only; the plan is fixed.
func (s *Server) handleRunFixedTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusInternalServerError, errors.New("invalid JSON body"))
		return
	}
	s.logger.Info("Running fixed task", zap.String("goal", req.Goal))

	report, err := s.runOnFreshSession(r.Context(), req.Goal, task.FixedPlan(s.taskCfg.TargetURL))
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err)
		return
	}
	if report.Final == nil {
		detail := report.FirstError()
		if detail == "" {
			detail = "extraction produced no result"
		}
		jsonErr(w, http.StatusInternalServerError, errors.New(detail))
		return
	}

	jsonResp(w, http.StatusOK, map[string]string{
		"status": "ok",
		"goal":   req.Goal,
		"ticker": report.Final.Ticker,
		"price":  report.Final.Price,
	})
}

// handleRunPlan executes a caller-supplied plan on a fresh session.
func (s *Server) handleRunPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan json.RawMessage `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusInternalServerError, errors.New("invalid JSON body"))
		return
	}

	plan, err := schemas.ParsePlan(req.Plan)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err)
		return
	}

	report, err := s.runOnFreshSession(r.Context(), "", plan)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err)
		return
	}
	jsonResp(w, http.StatusOK, report)
}

// runOnFreshSession allocates a per-call session, executes the plan, records
// the run, and tears the session down on every exit path.
func (s *Server) runOnFreshSession(ctx context.Context, goal string, plan *schemas.Plan) (*schemas.ExecutionReport, error) {
	sess, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sess.Close(context.Background()); closeErr != nil {
			s.logger.Warn("Error closing per-call session", zap.Error(closeErr))
		}
	}()

	started := time.Now().UTC()
	report, err := s.exec.Execute(ctx, sess, plan)
	if err != nil {
		return nil, err
	}
	s.record(goal, report, started)
	return report, nil
}

// record persists the run when a recorder is configured. Best-effort; a
// storage failure never affects the response.
func (s *Server) record(goal string, report *schemas.ExecutionReport, started time.Time) {
	if s.recorder == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run := store.Run{
		ID:         uuid.New().String(),
		Goal:       goal,
		Report:     report,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if err := s.recorder.SaveRun(saveCtx, run); err != nil {
		s.logger.Warn("Failed to record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func jsonResp(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func jsonErr(w http.ResponseWriter, status int, err error) {
	jsonResp(w, status, map[string]string{"detail": err.Error()})
}
