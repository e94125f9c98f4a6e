package vecscope

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/db"
	dbRedis "github.com/kailas-cloud/vecscope/internal/db/redis"
	collectionrepo "github.com/kailas-cloud/vecscope/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/vecscope/internal/repository/document"
	searchrepo "github.com/kailas-cloud/vecscope/internal/repository/search"
	searchuc "github.com/kailas-cloud/vecscope/internal/usecase/search"
)

// Client is the vecscope entry point. It owns the connection and is shared by models.
type Client struct {
	store       db.Store
	search      *searchuc.Service
	collections *collectionrepo.Repo
	documents   *documentrepo.Repo
	templates   Templates
	logger      *zap.Logger
}

// New dials the backend and waits until it answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newSettings(opts)
	if err := cfg.connection(); err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
		Flavor:   cfg.flavor,
	})
	if err != nil {
		return nil, fmt.Errorf("vecscope: create %s store: %w", cfg.flavor, err)
	}
	if err := store.WaitForReady(ctx, cfg.readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("vecscope: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

// NewWithStore wires a client over an already connected store, which the
// client then owns.
func NewWithStore(store db.Store, opts ...Option) (*Client, error) {
	return wireClient(store, newSettings(opts))
}

func wireClient(store db.Store, cfg *settings) (*Client, error) {
	if cfg.registry != nil {
		if err := registerMetrics(cfg.registry); err != nil {
			return nil, err
		}
	}

	exec := searchuc.NewInstrumentedExecutor(searchrepo.New(store, cfg.keyPrefix), cfg.logger)
	return &Client{
		store:       store,
		search:      searchuc.New(exec),
		collections: collectionrepo.New(store, cfg.keyPrefix),
		documents:   documentrepo.New(store, cfg.keyPrefix),
		templates:   cfg.templates,
		logger:      cfg.logger,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Templates returns the client-wide template collaborator, or nil.
func (c *Client) Templates() Templates {
	return c.templates
}
