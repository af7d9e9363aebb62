package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shelfscan/prodex/internal/domain/search/request"
	logpkg "github.com/shelfscan/prodex/internal/logger"
	healthuc "github.com/shelfscan/prodex/internal/usecase/health"
	hybriduc "github.com/shelfscan/prodex/internal/usecase/hybrid"
)

// maxMultiModalQueries bounds the fan-out of one multi-modal request.
const maxMultiModalQueries = 10

// SearchDefaults are the configured fallback filters applied when a
// request omits limit or min_score.
type SearchDefaults struct {
	Limit    int
	MinScore float64
}

// Server exposes the search orchestrator over HTTP.
type Server struct {
	search   *hybriduc.Service
	health   *healthuc.Service
	defaults SearchDefaults
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *hybriduc.Service, health *healthuc.Service,
	defaults SearchDefaults, logger *zap.Logger,
) *Server {
	return &Server{search: search, health: health, defaults: defaults, logger: logger}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Post("/v1/search/multimodal", s.handleSearchMultiModal)
	r.Get("/v1/cache/stats", s.handleCacheStats)
	r.Delete("/v1/cache", s.handleClearCache)
	r.Get("/health", s.handleHealth)
}

// handleSearch handles POST /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var dto queryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		s.reject(w, r, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := s.requestFromDTO(dto)
	if err != nil {
		s.reject(w, r, codeValidationFailed, err.Error())
		return
	}

	res := s.search.Search(r.Context(), req)
	writeJSON(w, http.StatusOK, hybridToDTO(res))
}

// handleSearchMultiModal handles POST /v1/search/multimodal.
func (s *Server) handleSearchMultiModal(w http.ResponseWriter, r *http.Request) {
	var dto multiModalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		s.reject(w, r, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(dto.Queries) == 0 {
		s.reject(w, r, codeValidationFailed, "At least one query is required")
		return
	}
	if len(dto.Queries) > maxMultiModalQueries {
		s.reject(w, r, codeValidationFailed, "Too many queries")
		return
	}

	reqs := make([]request.Request, 0, len(dto.Queries))
	for _, q := range dto.Queries {
		req, err := s.requestFromDTO(q)
		if err != nil {
			s.reject(w, r, codeValidationFailed, err.Error())
			return
		}
		reqs = append(reqs, req)
	}

	opts := hybriduc.Options{MaxResults: dto.Options.MaxResults}
	if dto.Options.Deduplicate != nil && !*dto.Options.Deduplicate {
		opts.DisableDedup = true
	}

	res := s.search.SearchMultiModal(r.Context(), reqs, opts)
	writeJSON(w, http.StatusOK, hybridToDTO(res))
}

// handleCacheStats handles GET /v1/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.search.CacheStats()
	writeJSON(w, http.StatusOK, cacheStatsDTO{
		Size:       stats.Entries,
		TTLSeconds: stats.TTLSeconds,
	})
}

// handleClearCache handles DELETE /v1/cache.
func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	s.search.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	if report.Status != healthuc.Healthy {
		s.logger.Warn("health check not passing", zap.String("status", string(report.Status)))
	}
	writeJSON(w, status, healthResponseDTO{Status: string(report.Status), Checks: checks})
}

// reject logs the rejection against the request-scoped logger and writes
// a 400 with a structured error body.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, code, message string) {
	logpkg.FromContext(r.Context()).Warn("request rejected",
		zap.String("code", code),
		zap.String("reason", message))
	writeError(w, http.StatusBadRequest, code, message)
}

// requestFromDTO validates and converts an inbound query, falling back
// to the configured limit and score floor where the request is silent.
func (s *Server) requestFromDTO(dto queryDTO) (request.Request, error) {
	limit := s.defaults.Limit
	minScore := s.defaults.MinScore
	var dietary map[string]bool
	var excludeAllergens []string
	if dto.Filters != nil {
		dietary = dto.Filters.Dietary
		excludeAllergens = dto.Filters.ExcludeAllergens
		if dto.Filters.Limit != 0 {
			limit = dto.Filters.Limit
		}
		if dto.Filters.MinScore != 0 {
			minScore = dto.Filters.MinScore
		}
	}

	filters, err := request.NewFilters(dietary, excludeAllergens, limit, minScore)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(dto.Barcode, dto.Text, filters), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
