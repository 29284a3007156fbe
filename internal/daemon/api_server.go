package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"lumen/internal/api"
	"lumen/internal/config"
	"lumen/internal/logging"
	"lumen/internal/metrics"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind     string
	logger   *slog.Logger
	daemon   *Daemon
	explain  *api.ExplainService
	guidance *api.GuidanceService
	metrics  *metrics.Metrics
	handler  http.Handler

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:     strings.TrimSpace(cfg.API.Bind),
		logger:   logging.NewComponentLogger(logger, "api-server"),
		daemon:   d,
		explain:  api.NewExplainService(d.app.Tracker),
		guidance: api.NewGuidanceService(d.app.Guidance),
		metrics:  d.app.Metrics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.HandleFunc("GET /api/explain/recommendation/{id}", srv.authorized(cfg.API.Token, srv.handleExplainRecommendation))
	mux.HandleFunc("GET /api/explain/synthesis/{id}", srv.authorized(cfg.API.Token, srv.handleExplainSynthesis))
	mux.HandleFunc("GET /api/explain/lineage/{id}", srv.authorized(cfg.API.Token, srv.handleLineage))
	mux.HandleFunc("GET /api/explain/history/{userId}", srv.authorized(cfg.API.Token, srv.handleHistory))
	mux.HandleFunc("POST /api/explain/verify", srv.authorized(cfg.API.Token, srv.handleVerify))
	mux.HandleFunc("POST /api/guidance", srv.authorized(cfg.API.Token, srv.handleGuidance))
	if cfg.Telemetry.MetricsEnabled && srv.metrics != nil {
		mux.Handle("GET /metrics", srv.metrics.Handler())
	}

	srv.handler = withRequestID(otelhttp.NewHandler(srv.instrument(mux), "lumen-api"))
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.listener == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	_ = s.listener.Close()
	s.listener = nil
}

func (s *apiServer) address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.daemon.Status()
	status := "ok"
	if st.Generator == "" {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Status:         status,
		Running:        st.Running,
		PID:            st.PID,
		StartedAt:      api.FormatTime(st.StartedAt),
		LockFilePath:   st.LockFilePath,
		Generator:      st.Generator,
		Providers:      st.Providers,
		LineageBackend: st.LineageBackend,
		CacheBackend:   st.CacheBackend,
	})
}

func (s *apiServer) handleExplainRecommendation(w http.ResponseWriter, r *http.Request) {
	out, err := s.explain.Recommendation(r.Context(), r.PathValue("id"))
	s.respond(w, r, out, err)
}

func (s *apiServer) handleExplainSynthesis(w http.ResponseWriter, r *http.Request) {
	out, err := s.explain.Synthesis(r.Context(), r.PathValue("id"))
	s.respond(w, r, out, err)
}

func (s *apiServer) handleLineage(w http.ResponseWriter, r *http.Request) {
	out, err := s.explain.Lineage(r.Context(), r.PathValue("id"))
	s.respond(w, r, out, err)
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset, err := api.ParsePage(query.Get("limit"), query.Get("offset"))
	if err != nil {
		s.respond(w, r, nil, err)
		return
	}
	out, err := s.explain.History(r.Context(), r.PathValue("userId"), limit, offset)
	s.respond(w, r, out, err)
}

func (s *apiServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyRequest
	// An absent body is an empty request: Verify reports the missing id.
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		s.writeError(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Kind: "validation"})
		return
	}
	out, err := s.explain.Verify(r.Context(), req)
	s.respond(w, r, out, err)
}

func (s *apiServer) handleGuidance(w http.ResponseWriter, r *http.Request) {
	var req api.GuidanceRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Kind: "validation"})
		return
	}
	ctx := logging.WithUserID(r.Context(), req.UserID)
	out, err := s.guidance.Resolve(ctx, req)
	s.respond(w, r.WithContext(ctx), out, err)
}

func (s *apiServer) respond(w http.ResponseWriter, r *http.Request, payload any, err error) {
	if err == nil {
		s.writeJSON(w, http.StatusOK, payload)
		return
	}
	status, body := api.ErrorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldImpact, "client received an error response"),
		)
	}
	s.writeError(w, status, body)
}

var errEmptyBody = errors.New("request body is required")

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, body api.ErrorResponse) {
	s.writeJSON(w, status, body)
}

// instrument records request metrics. It must wrap the mux directly so the
// matched pattern is visible after ServeHTTP returns.
func (s *apiServer) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(r.Method, route, fmt.Sprint(rec.status), time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestID propagates or assigns X-Request-ID and exposes it to loggers.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
