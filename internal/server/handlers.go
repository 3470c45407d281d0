package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/geo-scorer/internal/pillars"
	"github.com/jonathan/geo-scorer/internal/pipeline"
	"github.com/jonathan/geo-scorer/internal/scoring"
	"github.com/jonathan/geo-scorer/internal/server/middleware"
	"github.com/jonathan/geo-scorer/internal/types"
)

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and writes it. Validation failures list the
// offending fields; internal errors are logged and not echoed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		s.jsonResponse(w, status, map[string]any{"error": "validation failed", "fields": fields})
		return
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &BadRequestError{Message: "request body is empty"}
		}
		return &BadRequestError{Message: "invalid JSON body", Cause: err}
	}
	return nil
}

// authorizeTier rejects tiers above the caller's entitlement.
func authorizeTier(r *http.Request, tier types.Tier) error {
	p := middleware.PrincipalFrom(r.Context())
	if !p.Tier.Includes(tier) {
		return &ForbiddenTierError{Requested: tier, Entitled: p.Tier}
	}
	return nil
}

func decodeContext(m map[string]any) (*pillars.Context, error) {
	pc, err := pillars.ContextFromMap(m)
	if err != nil {
		return nil, &BadRequestError{Message: "invalid context", Cause: err}
	}
	return pc, nil
}

// parseScoreRequest decodes, validates and authorizes a scoring body.
func (s *Server) parseScoreRequest(w http.ResponseWriter, r *http.Request) (*pipeline.Request, error) {
	var body types.ScoreRequest
	if err := s.decode(w, r, &body); err != nil {
		return nil, err
	}
	body.Normalize()
	if err := body.Validate(); err != nil {
		return nil, err
	}
	tier, err := body.RequestedTier()
	if err != nil {
		return nil, &BadRequestError{Message: "invalid tier", Cause: err}
	}
	if err := authorizeTier(r, tier); err != nil {
		return nil, err
	}
	pc, err := decodeContext(body.Context)
	if err != nil {
		return nil, err
	}
	return &pipeline.Request{
		Content:   body.Content,
		URL:       body.URL,
		Tier:      tier,
		Context:   pc,
		Benchmark: body.Benchmark,
		Suggest:   body.Suggest,
		SkipCache: body.SkipCache,
	}, nil
}

// handleScore returns a full report for the requested tier.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseScoreRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.runner.Run(r.Context(), *req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleScoreStream runs a scoring request and streams progress as SSE.
func (s *Server) handleScoreStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseScoreRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse := NewSSEWriter(w)
	req.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(event.Category, event); err != nil {
			s.logger.Debug("failed to write progress event", "error", err)
		}
	}
	res, err := s.runner.Run(r.Context(), *req)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			s.logger.Error("streamed request failed", "error", err)
			message = "internal error"
		}
		sse.WriteError(status, message)
		return
	}
	sse.WriteComplete(res)
}

// handleQuickScore returns the compact score without recommendations.
func (s *Server) handleQuickScore(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseScoreRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	content, pc, _, err := s.runner.Resolve(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	quick, err := s.runner.Engine().QuickScore(r.Context(), content, pc, req.Tier)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, quick)
}

// handlePartialScore scores a named subset of pillars. Every requested pillar
// must fall within the caller's entitlement.
func (s *Server) handlePartialScore(w http.ResponseWriter, r *http.Request) {
	var body types.PartialScoreRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if err := body.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	keys := body.Keys()
	engine := s.runner.Engine()
	for _, key := range keys {
		tier, ok := engine.PillarTier(key)
		if !ok {
			s.writeError(w, &scoring.UnknownPillarError{Key: key})
			return
		}
		if err := authorizeTier(r, tier); err != nil {
			s.writeError(w, err)
			return
		}
	}
	pc, err := decodeContext(body.Context)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req := &pipeline.Request{Content: body.Content, URL: body.URL, Context: pc}
	content, pc, _, err := s.runner.Resolve(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	reports, err := engine.ScorePartial(r.Context(), content, keys, pc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.PartialScoreResponse{Pillars: reports})
}

type pillarsResponse struct {
	Tier     types.Tier           `json:"tier,omitempty"`
	MaxScore float64              `json:"max_score,omitempty"`
	Pillars  []scoring.PillarInfo `json:"pillars"`
}

// handlePillars lists registered pillars, optionally filtered by ?tier=.
func (s *Server) handlePillars(w http.ResponseWriter, r *http.Request) {
	engine := s.runner.Engine()
	all := engine.Pillars()

	raw := r.URL.Query().Get("tier")
	if raw == "" {
		s.jsonResponse(w, http.StatusOK, pillarsResponse{Pillars: all})
		return
	}
	tier, err := types.ParseTier(raw)
	if err != nil {
		s.writeError(w, &scoring.UnknownTierError{Tier: raw})
		return
	}
	maxScore, err := engine.MaxScore(tier)
	if err != nil {
		s.writeError(w, err)
		return
	}
	active := make([]scoring.PillarInfo, 0, len(all))
	for _, p := range all {
		if tier.Includes(p.Tier) {
			active = append(active, p)
		}
	}
	s.jsonResponse(w, http.StatusOK, pillarsResponse{Tier: tier, MaxScore: maxScore, Pillars: active})
}

type reportResponse struct {
	Fingerprint string                `json:"fingerprint"`
	Tier        types.Tier            `json:"tier"`
	URL         *string               `json:"url,omitempty"`
	ExpiresAt   time.Time             `json:"expires_at"`
	Report      *types.GeoScoreReport `json:"report"`
}

// handleGetReport returns a cached report by fingerprint.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.errorResponse(w, http.StatusNotFound, "report cache is not configured")
		return
	}
	fingerprint := r.PathValue("fingerprint")
	rec, err := s.reports.GetReport(r.Context(), fingerprint)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rec == nil {
		s.errorResponse(w, http.StatusNotFound, "report not found")
		return
	}
	tier := types.Tier(rec.Tier)
	if err := authorizeTier(r, tier); err != nil {
		s.writeError(w, err)
		return
	}
	report, err := rec.Report()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, reportResponse{
		Fingerprint: rec.Fingerprint,
		Tier:        tier,
		URL:         rec.URL,
		ExpiresAt:   rec.ExpiresAt,
		Report:      report,
	})
}

// handleHealth reports liveness and, when configured, cache reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "pillars": len(s.runner.Engine().Pillars())}
	if s.health == nil {
		body["cache"] = "disabled"
		s.jsonResponse(w, http.StatusOK, body)
		return
	}
	if err := s.health.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		body["status"] = "degraded"
		body["cache"] = "unreachable"
		s.jsonResponse(w, http.StatusServiceUnavailable, body)
		return
	}
	body["cache"] = "ok"
	s.jsonResponse(w, http.StatusOK, body)
}
