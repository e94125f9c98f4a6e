package vecscope

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/db/redis"
	"github.com/kailas-cloud/vecscope/internal/domain"
)

// Option configures a Client.
type Option func(*settings)

type settings struct {
	flavor   redis.Flavor
	addrs    []string
	password string

	keyPrefix string
	readiness time.Duration
	templates Templates

	logger   *zap.Logger
	registry prometheus.Registerer
}

func newSettings(opts []Option) *settings {
	s := &settings{
		keyPrefix: domain.DefaultKeyPrefix,
		readiness: 10 * time.Second,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// connection checks what New needs before dialing.
func (s *settings) connection() error {
	if len(s.addrs) == 0 {
		return errors.New("vecscope: database address required (use WithValkey or WithRedis)")
	}
	return nil
}

// WithRedis targets Redis 8+ or Redis Stack.
func WithRedis(addr, password string) Option { return backend(redis.FlavorRedis, addr, password) }

// WithValkey targets Valkey with the search module.
func WithValkey(addr, password string) Option { return backend(redis.FlavorValkey, addr, password) }

func backend(f redis.Flavor, addr, password string) Option {
	return func(s *settings) {
		s.flavor, s.addrs, s.password = f, []string{addr}, password
	}
}

// WithAddrs sets several seed nodes. Use it after WithRedis or WithValkey,
// which reset the list to their single address.
func WithAddrs(addrs ...string) Option {
	return func(s *settings) { s.addrs = append([]string(nil), addrs...) }
}

// WithKeyPrefix namespaces document keys and index names. Default "vecscope:";
// an empty prefix keeps the default.
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithTemplates shares one template library across every model.
func WithTemplates(t Templates) Option {
	return func(s *settings) { s.templates = t }
}

// WithReadinessTimeout bounds how long New waits for the server (10s).
func WithReadinessTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.readiness = d
		}
	}
}

// WithLogger logs executor calls. Nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPrometheus registers executor metrics on reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registry = reg }
}
