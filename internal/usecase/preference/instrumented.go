package preference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
	"github.com/kailas-cloud/pilotprefs/internal/metrics"
)

// InstrumentedRepository wraps a ProfileRepository with write metrics and error logging.
type InstrumentedRepository struct {
	inner  ProfileRepository
	logger *zap.Logger
}

// NewInstrumentedRepository wraps inner.
func NewInstrumentedRepository(inner ProfileRepository, logger *zap.Logger) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, logger: logger}
}

// UnionPreferences delegates to the inner repository and records the outcome.
func (r *InstrumentedRepository) UnionPreferences(
	ctx context.Context, ref domprofile.Ref, prefs preference.Preferences,
) error {
	start := time.Now()
	err := r.inner.UnionPreferences(ctx, ref, prefs)
	duration := time.Since(start)

	metrics.ProfileWriteDuration.Observe(duration.Seconds())
	if err != nil {
		metrics.ProfileWritesTotal.WithLabelValues("error").Inc()
		r.logger.Error("Profile update failed",
			zap.String("app_id", ref.AppID()),
			zap.String("path", ref.Path()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("union preferences: %w", err)
	}

	metrics.ProfileWritesTotal.WithLabelValues("written").Inc()
	return nil
}

// Get delegates to the inner repository.
func (r *InstrumentedRepository) Get(ctx context.Context, ref domprofile.Ref) (domprofile.Profile, error) {
	return r.inner.Get(ctx, ref) //nolint:wrapcheck // pass-through
}
