package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pilotprefs/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	clientName   = "pilotprefs"
	pollInterval = 100 * time.Millisecond
)

// Config holds connection parameters for the profile store.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// Store keeps user profiles as RedisJSON documents, one key per profile,
// on Valkey or Redis 8+ with the JSON module loaded.
type Store struct {
	client rueidis.Client
}

// NewStore connects a rueidis client for profile documents.
func NewStore(cfg Config) (*Store, error) {
	opt, err := clientOption(cfg)
	if err != nil {
		return nil, err
	}
	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect profile store: %w", err)
	}
	return &Store{client: client}, nil
}

// clientOption maps Config onto rueidis options. Profiles are rewritten on
// every update, so client-side caching is disabled.
func clientOption(cfg Config) (rueidis.ClientOption, error) {
	if len(cfg.Addrs) == 0 {
		return rueidis.ClientOption{}, errors.New("addrs is required")
	}
	return rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   clientName,
		DisableCache: true,
		AlwaysRESP2:  true, // JSON.GET and EVAL replies decoded as RESP2 strings and integers
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings right away and then every pollInterval until the store
// answers or timeout expires. The last ping error is kept in the timeout error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("profile store not ready: %w", errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
