package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

// TxRunner owns the transactional boundary for every mutating workflow.
// It is constructed once at startup and injected; nothing in the codebase
// reaches for a package-level handle.
type TxRunner struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTxRunner wraps a database handle with transaction management.
func NewTxRunner(db *sqlx.DB, logger *zap.Logger) *TxRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxRunner{db: db, logger: logger}
}

// WithTx runs fn inside a read-committed transaction. The transaction is
// committed when fn returns nil and rolled back when fn returns an error or
// panics. Guard reads inside fn are expected to lock the rows they act on
// (SELECT ... FOR UPDATE) so that concurrent writers serialize.
func (r *TxRunner) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, "failed to open transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("rollback after panic failed", zap.Any("panic", p), zap.Error(rbErr))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			r.logger.Error("transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to commit transaction")
	}
	return nil
}

// Ping reports whether the underlying store is reachable.
func (r *TxRunner) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close drains the pool. Called during graceful shutdown after the HTTP
// server has stopped accepting work, so in-flight transactions finish first.
func (r *TxRunner) Close() error {
	return r.db.Close()
}
