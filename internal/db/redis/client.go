// Package redis implements db.Store on rueidis for Redis 8+/Redis Stack and
// for Valkey with valkey-search.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecscope/internal/db"
)

var _ db.Store = (*Store)(nil)

// Flavor selects server-specific command shapes.
type Flavor string

const (
	// FlavorRedis has FT.AGGREGATE cursors, bare "*" queries and INDEXMISSING.
	FlavorRedis Flavor = "redis"
	// FlavorValkey lists match-all queries with SCAN and pages scans with LIMIT.
	FlavorValkey Flavor = "valkey"
)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	Flavor   Flavor // default FlavorRedis
}

func (c Config) clientOption() rueidis.ClientOption {
	return rueidis.ClientOption{
		InitAddress:  c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		SelectDB:     c.DB,
		DisableCache: true,
		// reply parsing assumes RESP2 arrays
		AlwaysRESP2: true,
	}
}

// Store talks to one server or cluster.
type Store struct {
	client rueidis.Client
	flavor Flavor
}

// NewStore connects lazily; use WaitForReady to block until the server answers.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	switch cfg.Flavor {
	case "":
		cfg.Flavor = FlavorRedis
	case FlavorRedis, FlavorValkey:
	default:
		return nil, fmt.Errorf("redis: unknown flavor %q", cfg.Flavor)
	}

	client, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client, flavor: cfg.Flavor}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return wrap(db.OpPing, s.do(ctx, s.b().Ping().Build()).Error())
}

func (s *Store) Close() { s.client.Close() }

const (
	readyFirstWait = 50 * time.Millisecond
	readyMaxWait   = time.Second
)

// WaitForReady pings with exponential backoff until the server answers or
// timeout passes. The last ping error is reported on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyFirstWait
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis: not ready after %s: %w", timeout, errors.Join(ctx.Err(), err))
		case <-time.After(wait):
		}
		wait = min(wait*2, readyMaxWait)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder { return s.client.B() }
