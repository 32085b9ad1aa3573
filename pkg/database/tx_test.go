package database

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

func newRunnerMock(t *testing.T) (*TxRunner, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	runner := NewTxRunner(sqlx.NewDb(db, "sqlmock"), zap.NewNop())
	return runner, mock, func() { db.Close() }
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	runner, mock, cleanup := newRunnerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := runner.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(context.Background(), "UPDATE documents SET status = $1", "approved")
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	runner, mock, cleanup := newRunnerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := runner.WithTx(context.Background(), func(tx *sqlx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	runner, mock, cleanup := newRunnerMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = runner.WithTx(context.Background(), func(tx *sqlx.Tx) error {
			panic("mid-transaction failure")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxSurfacesBeginFailureAsUnavailable(t *testing.T) {
	runner, mock, cleanup := newRunnerMock(t)
	defer cleanup()

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := runner.WithTx(context.Background(), func(tx *sqlx.Tx) error { return nil })
	require.Error(t, err)
	require.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
