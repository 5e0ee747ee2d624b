package assoc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/syssam/assoc/dialect"
)

// Client is the instance manager and navigation dispatcher of a registry
// bound to a storage driver.
type Client struct {
	config
	reg *Registry
	drv dialect.Driver
	// tx is set on clients bound to a transaction.
	tx *txState
}

// config holds the client options.
type config struct {
	log      *slog.Logger
	cache    Cache
	cacheTTL time.Duration
	// gen is shared by the client and its transaction clients.
	gen *generation
}

// Option configures the client.
type Option func(*config)

// WithLogger sets the logger of the client. Writes, navigation changes and
// schema synchronization are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithCache enables caching of row reads. Writes through the client
// invalidate the cached reads of the tables they touch, and a read that
// overlaps an invalidation is not cached. Writes made by other processes or
// by clients not derived from this one are not seen by the cache; share the
// cache only between such writers with a TTL.
func WithCache(cache Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithCacheTTL sets the expiration of cached reads. The default is 0, cached
// reads live until invalidated.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) { c.cacheTTL = ttl }
}

// NewClient returns a client of the registry that stores instances through
// drv.
func NewClient(reg *Registry, drv dialect.Driver, opts ...Option) *Client {
	cfg := config{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cache != nil {
		cfg.gen = &generation{}
	}
	return &Client{config: cfg, reg: reg, drv: drv}
}

// Registry returns the registry of the client.
func (c *Client) Registry() *Registry { return c.reg }

// Driver returns the storage driver of the client.
func (c *Client) Driver() dialect.Driver { return c.drv }

// Close closes the storage driver.
func (c *Client) Close() error {
	if c.tx != nil {
		return errors.New("assoc: cannot close a transaction client, use Commit or Rollback")
	}
	return c.drv.Close()
}

// checkType fails if the entity type is not part of the client registry.
func (c *Client) checkType(typ *EntityType) error {
	if typ == nil || typ.reg != c.reg {
		return NewValidationError("entity", fmt.Errorf("unknown entity type %v", typ))
	}
	return nil
}

// storageError maps the storage sentinels to the core error taxonomy and
// wraps other failures with the operation context.
func storageError(label, op string, id int64, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dialect.ErrConstraint):
		return NewConstraintError(fmt.Sprintf("%s %s: %v", op, label, err), err)
	case errors.Is(err, dialect.ErrNotFound):
		return NewNotFoundError(label, id)
	}
	return &MutationError{Entity: label, Op: op, Err: err}
}
