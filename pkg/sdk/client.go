package pilotprefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/pilotprefs/internal/db"
	dbGoredis "github.com/kailas-cloud/pilotprefs/internal/db/goredis"
	dbRedis "github.com/kailas-cloud/pilotprefs/internal/db/redis"
	"github.com/kailas-cloud/pilotprefs/internal/domain"
	"github.com/kailas-cloud/pilotprefs/internal/domain/preference"
	domprofile "github.com/kailas-cloud/pilotprefs/internal/domain/profile"
	profilerepo "github.com/kailas-cloud/pilotprefs/internal/repository/profile"
	healthuc "github.com/kailas-cloud/pilotprefs/internal/usecase/health"
	prefuc "github.com/kailas-cloud/pilotprefs/internal/usecase/preference"
)

const defaultReadinessTimeout = 10 * time.Second

// preferenceUseCase is swapped out in tests.
type preferenceUseCase interface {
	Update(ctx context.Context, caller domain.Caller, req prefuc.Request) (prefuc.Result, error)
	Get(ctx context.Context, caller domain.Caller, appID string) (domprofile.Profile, error)
}

// Client is the pilotprefs SDK entry point.
type Client struct {
	store     db.Store
	prefSvc   preferenceUseCase
	extractor *preference.Extractor
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{matchMode: MatchPhrase}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("pilotprefs: database address required (use WithValkey, WithRedis or WithGoRedis)")
	}
	if _, err := preference.ParseMatchMode(string(cfg.matchMode)); err != nil {
		return nil, fmt.Errorf("pilotprefs: %w", err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("pilotprefs: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pilotprefs: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "goredis":
		s, err := dbGoredis.NewStore(dbGoredis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pilotprefs: create goredis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pilotprefs: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	mode := cfg.matchMode
	if mode == "" {
		mode = MatchPhrase
	}
	extractor := preference.NewExtractor(preference.DefaultVocabulary(), mode)
	repo := profilerepo.New(store, cfg.keyPrefix)

	return &Client{
		store:     store,
		prefSvc:   prefuc.New(repo, extractor),
		extractor: extractor,
		healthSvc: healthuc.New(store),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Extract returns the vocabulary terms in message without touching the store.
func (c *Client) Extract(message string) Preferences {
	p := c.extractor.Extract(message)
	return Preferences{Locations: p.Locations, Amenities: p.Amenities}
}

// UpdatePreferences merges the preferences found in message into callerID's profile within appID.
// A message without vocabulary terms succeeds without writing.
func (c *Client) UpdatePreferences(ctx context.Context, callerID, appID, message string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("update_preferences", start, err) }()

	_, err = c.prefSvc.Update(ctx, domain.Caller{UID: callerID}, prefuc.Request{Message: message, AppID: appID})
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}

// Profile returns the preference view of callerID's profile within appID.
func (c *Client) Profile(ctx context.Context, callerID, appID string) (_ Profile, err error) {
	start := time.Now()
	defer func() { c.obs.observe("profile", start, err) }()

	p, err := c.prefSvc.Get(ctx, domain.Caller{UID: callerID}, appID)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return Profile{
		AppID:               p.Ref.AppID(),
		CallerID:            p.Ref.CallerID(),
		PreferredLocations:  p.PreferredLocations,
		AmenitiesOfInterest: p.AmenitiesOfInterest,
	}, nil
}
