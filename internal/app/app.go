// Package app wires configuration, storage, services and transports together.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pilotprefs/internal/config"
	"github.com/kailas-cloud/pilotprefs/internal/db"
	dbGoredis "github.com/kailas-cloud/pilotprefs/internal/db/goredis"
	dbRedis "github.com/kailas-cloud/pilotprefs/internal/db/redis"
	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	"github.com/kailas-cloud/pilotprefs/internal/metrics"
	profilerepo "github.com/kailas-cloud/pilotprefs/internal/repository/profile"
	chiTransport "github.com/kailas-cloud/pilotprefs/internal/transport/chi"
	"github.com/kailas-cloud/pilotprefs/internal/transport/firebase"
	"github.com/kailas-cloud/pilotprefs/internal/transport/pubsub"
	healthuc "github.com/kailas-cloud/pilotprefs/internal/usecase/health"
	prefuc "github.com/kailas-cloud/pilotprefs/internal/usecase/preference"
)

// App is a fully wired pilotprefs instance.
type App struct {
	Store       db.Store
	Preferences *prefuc.Service
	Health      *healthuc.Service
	Handler     http.Handler
	Events      *pubsub.Handler
}

// NewStore opens the document store selected by cfg.Driver.
func NewStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	case "goredis":
		s, err := dbGoredis.NewStore(dbGoredis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("goredis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Option customises New.
type Option func(*options)

type options struct {
	verifier chiTransport.TokenVerifier
}

// WithTokenVerifier replaces the Firebase ID token verifier.
func WithTokenVerifier(v chiTransport.TokenVerifier) Option {
	return func(o *options) { o.verifier = v }
}

// New builds services and transports on top of an open store.
func New(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mode, err := preference.ParseMatchMode(cfg.Extraction.MatchMode)
	if err != nil {
		return nil, fmt.Errorf("extraction: %w", err)
	}

	callers, err := newCallerResolver(ctx, cfg.Auth, o)
	if err != nil {
		return nil, err
	}

	metrics.RegisterPreferenceMetrics()

	extractor := preference.NewExtractor(preference.DefaultVocabulary(), mode)
	repo := prefuc.NewInstrumentedRepository(profilerepo.New(store, cfg.Database.KeyPrefix), logger)
	prefSvc := prefuc.New(repo, extractor)
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(prefSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.GatewayKeys()))
	r.Use(chiTransport.CallerMiddleware(callers))
	r.Use(chiTransport.RateLimitMiddleware(chiTransport.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	r.Use(metrics.Middleware())
	server.Register(r)

	logger.Info("Preference service ready",
		zap.String("match_mode", string(mode)),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Float64("rate_limit_rps", cfg.RateLimit.RPS),
	)

	return &App{
		Store:       store,
		Preferences: prefSvc,
		Health:      healthSvc,
		Handler:     r,
		Events:      pubsub.NewHandler(prefSvc, logger),
	}, nil
}

// newCallerResolver picks where the caller identity comes from.
func newCallerResolver(ctx context.Context, cfg config.AuthConfig, o options) (chiTransport.CallerResolver, error) {
	switch cfg.Mode {
	case config.AuthModeFirebase:
		if len(cfg.GatewayKeys()) > 0 {
			return nil, fmt.Errorf("auth: api_keys cannot be combined with mode %q", cfg.Mode)
		}
		v := o.verifier
		if v == nil {
			fv, err := firebase.NewVerifier(ctx, cfg.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("auth: %w", err)
			}
			v = fv
		}
		return chiTransport.NewIDTokenResolver(v), nil
	case config.AuthModeHeader:
		if len(cfg.GatewayKeys()) == 0 {
			return nil, fmt.Errorf("auth: mode %q requires api_keys", cfg.Mode)
		}
		return chiTransport.NewTrustedHeaderResolver(cfg.CallerHeader), nil
	default:
		return nil, fmt.Errorf("auth: unknown mode %q", cfg.Mode)
	}
}

// Close releases the store.
func (a *App) Close() {
	a.Store.Close()
}
