package assoc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/assoc/dialect"
)

// Tx is a transactional client. Its embedded Client issues every operation
// inside the storage transaction.
type Tx struct {
	*Client
}

// txState is shared by the clients bound to one transaction.
type txState struct {
	tx dialect.Tx
	mu sync.Mutex
	// undo restores the in-memory state of instances changed in the
	// transaction if it rolls back.
	undo []func()
}

// Tx starts a storage transaction and returns a client bound to it.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if c.tx != nil {
		return nil, ErrTxStarted
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("assoc: starting a transaction: %w", err)
	}
	return &Tx{
		Client: &Client{config: c.config, reg: c.reg, drv: tx, tx: &txState{tx: tx}},
	}, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	if err := tx.tx.tx.Commit(); err != nil {
		tx.tx.restore()
		return err
	}
	tx.tx.mu.Lock()
	tx.tx.undo = nil
	tx.tx.mu.Unlock()
	if tx.cache != nil {
		tx.gen.bump(func() {
			if err := tx.cache.Clear(context.Background()); err != nil {
				tx.log.Warn("assoc: cache clear", "error", err)
			}
		})
	}
	return nil
}

// Rollback rolls back the transaction and restores the in-memory state of
// the instances it changed.
func (tx *Tx) Rollback() error {
	defer tx.tx.restore()
	return tx.tx.tx.Rollback()
}

// WithTx runs fn within a transaction.
// If fn returns an error, the transaction is rolled back.
// If fn panics, the transaction is rolled back and the panic is re-raised.
// Otherwise, the transaction is committed.
// Called on a client already bound to a transaction, fn runs in that
// transaction.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if c.tx != nil {
		return fn(c)
	}
	tx, err := c.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx.Client); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(fmt.Errorf("%w: rolling back transaction", err), &RollbackError{Err: rerr})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// onRollback registers fn to restore in-memory state if the transaction of
// the client rolls back. It is a nop outside of a transaction.
func (c *Client) onRollback(fn func()) {
	if c.tx == nil {
		return
	}
	c.tx.mu.Lock()
	defer c.tx.mu.Unlock()
	c.tx.undo = append(c.tx.undo, fn)
}

func (s *txState) restore() {
	s.mu.Lock()
	undo := s.undo
	s.undo = nil
	s.mu.Unlock()
	for _, fn := range slices.Backward(undo) {
		fn()
	}
}
