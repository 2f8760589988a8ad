package chi

import (
	"context"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
	logpkg "github.com/kailas-cloud/pilotprefs/internal/logger"
	healthuc "github.com/kailas-cloud/pilotprefs/internal/usecase/health"
	prefuc "github.com/kailas-cloud/pilotprefs/internal/usecase/preference"
)

// PreferenceService is the preference use case as seen by the transport.
type PreferenceService interface {
	Update(ctx context.Context, caller domain.Caller, req prefuc.Request) (prefuc.Result, error)
	Get(ctx context.Context, caller domain.Caller, appID string) (domprofile.Profile, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the callable endpoints.
type Server struct {
	prefs  PreferenceService
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(prefs PreferenceService, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{prefs: prefs, health: health, logger: logger}
}

// Register mounts all routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Post("/updatePilotKnowledge", s.UpdatePilotKnowledge)
	r.Post("/getPilotProfile", s.GetPilotProfile)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UpdatePilotKnowledge handles POST /updatePilotKnowledge.
func (s *Server) UpdatePilotKnowledge(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCallable[prefuc.Request](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusInvalidArgument, "Bad Request")
		return
	}

	res, err := s.prefs.Update(r.Context(), CallerFromContext(r.Context()), req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeResult(w, res)
}

type profileRequest struct {
	AppID string `json:"appId"`
}

type profileResponse struct {
	AppID       string             `json:"appId"`
	Preferences profilePreferences `json:"preferences"`
}

type profilePreferences struct {
	PreferredLocations  []string `json:"preferred_locations"`
	AmenitiesOfInterest []string `json:"amenities_of_interest"`
}

// GetPilotProfile handles POST /getPilotProfile.
func (s *Server) GetPilotProfile(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCallable[profileRequest](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, StatusInvalidArgument, "Bad Request")
		return
	}

	p, err := s.prefs.Get(r.Context(), CallerFromContext(r.Context()), req.AppID)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeResult(w, profileResponse{
		AppID: p.Ref.AppID(),
		Preferences: profilePreferences{
			PreferredLocations:  p.PreferredLocations,
			AmenitiesOfInterest: p.AmenitiesOfInterest,
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx)
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("callable error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, StatusInternal, domain.ErrInternal.Error())
}
