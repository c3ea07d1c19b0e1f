/*
 * Copyright 2026 brunodmn.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brunodmn/egret/errs"
	"github.com/uptrace/bun"
)

// TxObserver receives transaction lifecycle events for external monitoring.
type TxObserver interface {
	TxStarted(ctx context.Context, attempt int)
	TxCommitted(ctx context.Context, attempt int)
	TxRolledBack(ctx context.Context, attempt int, cause error)
	TxRetried(ctx context.Context, attempt int, backoff time.Duration, cause error)
}

// NopTxObserver ignores all events.
type NopTxObserver struct{}

func (NopTxObserver) TxStarted(context.Context, int)                       {}
func (NopTxObserver) TxCommitted(context.Context, int)                     {}
func (NopTxObserver) TxRolledBack(context.Context, int, error)             {}
func (NopTxObserver) TxRetried(context.Context, int, time.Duration, error) {}

type txCtxKey struct{}

// txState travels in the context of one execution context. Nested Run calls
// find it and push savepoints instead of opening a second transaction.
type txState struct {
	tx    bun.Tx
	depth int
}

// TxManager executes units of work inside a transactional boundary with
// savepoint nesting and automatic retry of transient concurrency conflicts.
// The boundary is carried in the context and is never shared across
// concurrent callers.
type TxManager struct {
	db       *bun.DB
	cfg      TxConfig
	logger   Logger
	observer TxObserver
}

// NewTxManager builds a transaction manager over the given Bun handle.
func NewTxManager(db *bun.DB, cfg TxConfig, logger Logger, observer TxObserver) *TxManager {
	if logger == nil {
		logger = NewDefaultLogger(LogLevelInfo)
	}
	if observer == nil {
		observer = NopTxObserver{}
	}
	return &TxManager{db: db, cfg: cfg, logger: logger, observer: observer}
}

// DB returns the storage handle bound to ctx: the ambient transaction when
// called inside Run, the raw pool otherwise.
func (m *TxManager) DB(ctx context.Context) bun.IDB {
	if state, ok := ctx.Value(txCtxKey{}).(*txState); ok {
		return state.tx
	}
	return m.db
}

// InTx reports whether ctx carries an active transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey{}).(*txState)
	return ok
}

// Run executes fn inside a transactional boundary. The outermost call opens
// a transaction; nested calls push a savepoint, so composed operations never
// need to know whether they own the boundary. Transient concurrency
// conflicts retry the whole outermost transaction with exponential backoff;
// a failure inside a savepoint first unwinds to the outer boundary.
func (m *TxManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if state, ok := ctx.Value(txCtxKey{}).(*txState); ok {
		return m.runSavepoint(ctx, state, fn)
	}
	return m.runOutermost(ctx, fn)
}

func (m *TxManager) runOutermost(ctx context.Context, fn func(ctx context.Context) error) error {
	var deadline time.Time
	if m.cfg.Timeout > 0 {
		deadline = time.Now().Add(m.cfg.Timeout)
	}

	attempts := m.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	backoff := m.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Millisecond * 50
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := m.attempt(ctx, deadline, attempt, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		// never let the backoff sleep overrun the transaction deadline
		if !deadline.IsZero() && time.Now().Add(backoff).After(deadline) {
			m.logger.Warn("aborting transaction retries, deadline too close",
				"attempt", attempt, "backoff", backoff)
			return &errs.RetryExhaustedError{Attempts: attempt, Cause: err}
		}

		m.observer.TxRetried(ctx, attempt, backoff, err)
		m.logger.Debug("retrying transaction after transient conflict",
			"attempt", attempt, "backoff", backoff, "error", err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if m.cfg.RetryBackoffMax > 0 && backoff > m.cfg.RetryBackoffMax {
			backoff = m.cfg.RetryBackoffMax
		}
	}
	return &errs.RetryExhaustedError{Attempts: attempts, Cause: lastErr}
}

func (m *TxManager) attempt(ctx context.Context, deadline time.Time, attempt int, fn func(ctx context.Context) error) (err error) {
	attemptCtx := ctx
	cancel := func() {}
	if !deadline.IsZero() {
		attemptCtx, cancel = context.WithDeadline(ctx, deadline)
	}
	defer cancel()

	tx, err := m.db.BeginTx(attemptCtx, nil)
	if err != nil {
		return m.mapAttemptErr(ctx, attemptCtx, err)
	}

	state := &txState{tx: tx}
	runCtx := context.WithValue(attemptCtx, txCtxKey{}, state)
	m.observer.TxStarted(ctx, attempt)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			m.observer.TxRolledBack(ctx, attempt, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	if err = fn(runCtx); err != nil {
		_ = tx.Rollback()
		m.observer.TxRolledBack(ctx, attempt, err)
		return m.mapAttemptErr(ctx, attemptCtx, err)
	}

	if err = tx.Commit(); err != nil {
		_ = tx.Rollback()
		m.observer.TxRolledBack(ctx, attempt, err)
		return m.mapAttemptErr(ctx, attemptCtx, err)
	}
	m.observer.TxCommitted(ctx, attempt)
	return nil
}

// mapAttemptErr turns an expired attempt deadline into TransactionTimeout.
// Cancellation of the caller's own context propagates unchanged.
func (m *TxManager) mapAttemptErr(parent, attemptCtx context.Context, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return &errs.TimeoutError{Limit: m.cfg.Timeout}
	}
	return err
}

func (m *TxManager) runSavepoint(ctx context.Context, state *txState, fn func(ctx context.Context) error) error {
	state.depth++
	name := fmt.Sprintf("egret_sp_%d", state.depth)
	defer func() { state.depth-- }()

	if _, err := state.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		if _, rbErr := state.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback to %s failed (%v) after: %w", name, rbErr, err)
		}
		return err
	}
	if _, err := state.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return err
	}
	return nil
}
