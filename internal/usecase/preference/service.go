package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
	logpkg "github.com/kailas-cloud/pilotprefs/internal/logger"
	"github.com/kailas-cloud/pilotprefs/internal/metrics"
)

// SuccessMessage is returned for every successful update, whether or not anything matched.
const SuccessMessage = "User preferences updated successfully."

// Request is the callable payload. The caller identity is never part of it.
type Request struct {
	Message string `json:"message" validate:"required"`
	AppID   string `json:"appId" validate:"required"`
}

// Result is the callable success payload.
type Result struct {
	Result string `json:"result"`
}

// Service extracts preferences from messages and merges them into the caller's profile.
type Service struct {
	repo      ProfileRepository
	extractor Extractor
	validate  *validator.Validate
}

// New creates a preference service.
func New(repo ProfileRepository, extractor Extractor) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Update validates req, extracts preferences and union-appends them onto the caller's own profile.
// Performs at most one store write. Nothing matched is a successful no-op.
func (s *Service) Update(ctx context.Context, caller domain.Caller, req Request) (Result, error) {
	if !caller.Authenticated() {
		return Result{}, domain.ErrUnauthenticated
	}
	if err := s.validate.Struct(req); err != nil {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, describeValidation(err))
	}

	ref, err := domprofile.NewRef(req.AppID, caller.UID)
	if err != nil {
		return Result{}, err
	}

	prefs := s.extractor.Extract(req.Message)
	metrics.PreferenceMatchesTotal.WithLabelValues("location").Add(float64(len(prefs.Locations)))
	metrics.PreferenceMatchesTotal.WithLabelValues("amenity").Add(float64(len(prefs.Amenities)))

	log := logpkg.FromContext(ctx)
	if prefs.Empty() {
		metrics.ProfileWritesTotal.WithLabelValues("skipped").Inc()
		log.Debug("no preferences matched", zap.String("app_id", ref.AppID()))
		return Result{Result: SuccessMessage}, nil
	}

	if err := s.repo.UnionPreferences(ctx, ref, prefs); err != nil {
		return Result{}, fmt.Errorf("%w: update profile: %w", domain.ErrInternal, err)
	}

	log.Info("preferences merged",
		zap.String("app_id", ref.AppID()),
		zap.Strings("locations", prefs.Locations),
		zap.Strings("amenities", prefs.Amenities),
	)
	return Result{Result: SuccessMessage}, nil
}

// Get returns the caller's own profile preferences within appID.
func (s *Service) Get(ctx context.Context, caller domain.Caller, appID string) (domprofile.Profile, error) {
	if !caller.Authenticated() {
		return domprofile.Profile{}, domain.ErrUnauthenticated
	}
	ref, err := domprofile.NewRef(appID, caller.UID)
	if err != nil {
		return domprofile.Profile{}, err
	}

	p, err := s.repo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domprofile.Profile{}, err
		}
		return domprofile.Profile{}, fmt.Errorf("%w: get profile: %w", domain.ErrInternal, err)
	}
	return p, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field()
	}
	return fmt.Sprintf("missing %v", fields)
}
