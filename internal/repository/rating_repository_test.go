package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

func TestRatingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WithArgs(int64(7), int64(11), 4.5, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rating := &models.Rating{DocumentID: 7, UserID: 11, Value: 4.5}
	require.NoError(t, repo.Create(context.Background(), db, rating))
	require.False(t, rating.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryCreateMapsUniqueViolationToConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ratings")).
		WillReturnError(&pq.Error{Code: pq.ErrorCode(pqUniqueViolation)})

	err := repo.Create(context.Background(), db, &models.Rating{DocumentID: 7, UserID: 11, Value: 4.5})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryUpdateReportsAffectedRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET value = $3, updated_at = NOW() WHERE document_id = $1 AND user_id = $2")).
		WithArgs(int64(7), int64(11), 2.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Update(context.Background(), db, 7, 11, 2.0)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryDeleteReportsZeroWhenMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE document_id = $1 AND user_id = $2")).
		WithArgs(int64(7), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Delete(context.Background(), db, 7, 11)
	require.NoError(t, err)
	require.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryRecomputeAggregateUpserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS cnt, COALESCE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cnt", "avg"}).AddRow(2, 4.25))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rating_aggregates (document_id, average) VALUES ($1, $2)")).
		WithArgs(int64(7), 4.25).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecomputeAggregate(context.Background(), db, 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryRecomputeAggregateDeletesWhenEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS cnt, COALESCE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"cnt", "avg"}).AddRow(0, 0.0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rating_aggregates WHERE document_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecomputeAggregate(context.Background(), db, 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryGetAggregate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT document_id, average FROM rating_aggregates WHERE document_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"document_id", "average"}).AddRow(7, 4.25))

	agg, err := repo.GetAggregate(context.Background(), 7)
	require.NoError(t, err)
	require.InDelta(t, 4.25, agg.Average, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}
