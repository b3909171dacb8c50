package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BushMasterhtps/text-club-sub002/internal/service"
	"github.com/BushMasterhtps/text-club-sub002/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 30 * time.Second
)

type CacheKeyType string

const (
	cacheKeyTeamScoreboard CacheKeyType = "http:team_scoreboard"
	cacheKeyAgentScorecard CacheKeyType = "http:agent_scorecard"
)

// Handlers serves the read-only scoring surface. Scoreboard responses are
// cached with a TTL and singleflight so concurrent managers share one
// computation.
type Handlers struct {
	scoring  ScorecardService
	cache    Cacher
	logger   *zap.Logger
	mets     *metrics.Manager
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(scoring ScorecardService, cache Cacher, logger *zap.Logger, mets *metrics.Manager, ttl time.Duration) *Handlers {
	if scoring == nil {
		panic("nil ScorecardService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		scoring:  scoring,
		cache:    cache,
		logger:   logger.Named("http-handler"),
		mets:     mets,
		cacheTTL: ttl,
	}
}

// Routes registers every handler on mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/scoreboard", h.GetTeamScoreboard)
	mux.HandleFunc("GET /api/v1/scoreboard/window", h.GetWindowScoreboard)
	mux.HandleFunc("GET /api/v1/agents/{id}/scorecard", h.GetAgentScorecard)
	mux.HandleFunc("GET /healthz", h.GetHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.mets.Registry(), promhttp.HandlerOpts{}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// handleError maps service errors onto HTTP statuses.
func (h *Handlers) handleError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusServiceUnavailable, "canceled", "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
		return
	}

	switch {
	case errors.Is(err, service.ErrAgentNotFound):
		h.logger.Info("agent not found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "not_found", "agent not found in roster")
	case errors.Is(err, service.ErrNoAgents):
		h.logger.Info("empty roster", zap.String("op", op))
		writeError(w, http.StatusNotFound, "not_found", "no agents in roster")
	case errors.Is(err, service.ErrInvalidWindow):
		h.logger.Info("invalid window", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_window", err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage_error", "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("%s failed", op))
	}
}

// GetTeamScoreboard handles GET /api/v1/scoreboard.
func (h *Handlers) GetTeamScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	report, err := FindAndCache(ctx, h.cache, &h.sfGroup, string(cacheKeyTeamScoreboard), h.cacheTTL, h.logger,
		func(fetchCtx context.Context) (service.TeamReport, error) {
			return h.scoring.TeamScoreboard(fetchCtx)
		})
	if err != nil {
		h.handleError(ctx, w, "GetTeamScoreboard", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetAgentScorecard handles GET /api/v1/agents/{id}/scorecard.
func (h *Handlers) GetAgentScorecard(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("id")
	if agentID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "agent id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("%s:%s", cacheKeyAgentScorecard, agentID)

	report, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger,
		func(fetchCtx context.Context) (service.AgentReport, error) {
			return h.scoring.AgentScorecard(fetchCtx, agentID)
		})
	if err != nil {
		h.handleError(ctx, w, "GetAgentScorecard", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetWindowScoreboard handles GET /api/v1/scoreboard/window?start=...&end=...
// with RFC3339 boundaries. Ad-hoc windows bypass the cache.
func (h *Handlers) GetWindowScoreboard(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "start must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "end must be an RFC3339 timestamp")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	report, err := h.scoring.WindowScoreboard(ctx, start, end)
	if err != nil {
		h.handleError(ctx, w, "GetWindowScoreboard", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetHealth handles GET /healthz.
func (h *Handlers) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
