package assoc

import (
	"context"
	"fmt"
	"slices"
)

// SyncOption configures a schema synchronization.
type SyncOption func(*syncConfig)

type syncConfig struct {
	recreate bool
}

// WithRecreate drops the join tables and the entity tables before creating
// them again. All stored rows are lost.
func WithRecreate() SyncOption {
	return func(c *syncConfig) { c.recreate = true }
}

// Sync creates the entity tables, referenced tables first, then the join
// tables of the resolved layout. Tables that already exist are kept.
func (c *Client) Sync(ctx context.Context, opts ...SyncOption) error {
	cfg := &syncConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	l := c.reg.Layout()
	if cfg.recreate {
		for _, t := range l.JoinTables {
			if err := c.drv.DropTable(ctx, t.Name); err != nil {
				return fmt.Errorf("assoc: dropping join table %q: %w", t.Name, err)
			}
		}
		for _, t := range slices.Backward(l.Tables) {
			if err := c.drv.DropTable(ctx, t.Name); err != nil {
				return fmt.Errorf("assoc: dropping table %q: %w", t.Name, err)
			}
		}
	}
	for _, t := range l.Tables {
		if err := c.drv.CreateTable(ctx, t); err != nil {
			return fmt.Errorf("assoc: creating table %q: %w", t.Name, err)
		}
	}
	for _, t := range l.JoinTables {
		if err := c.drv.CreateJoinTable(ctx, t); err != nil {
			return fmt.Errorf("assoc: creating join table %q: %w", t.Name, err)
		}
	}
	if c.cache != nil && c.tx == nil {
		if err := c.cache.Clear(ctx); err != nil {
			c.log.WarnContext(ctx, "assoc: cache clear", "error", err)
		}
	}
	c.log.DebugContext(ctx, "assoc: sync", "tables", len(l.Tables), "join_tables", len(l.JoinTables), "recreate", cfg.recreate)
	return nil
}
