package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/servicedesk/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMySQL(t *testing.T) (*MySQLSubmissionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLSubmissionRepository(sqlx.NewDb(db, "mysql")), mock
}

var submissionColumns = []string{"id", "name", "contact_number", "service", "description", "created_at"}

func TestMySQLSubmissionRepository_Insert(t *testing.T) {
	repo, mock := newMockMySQL(t)
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO service_requests").
		WithArgs("Jane Doe", "+1-555-0100", "Web Development", "Build a site").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`SELECT created_at FROM service_requests WHERE Id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectCommit()

	sub := &model.Submission{
		FullName:           "Jane Doe",
		ContactNumber:      "+1-555-0100",
		ServiceType:        "Web Development",
		ProjectDescription: "Build a site",
	}
	require.NoError(t, repo.Insert(context.Background(), sub))

	assert.Equal(t, int64(7), sub.ID)
	assert.True(t, sub.CreatedAt.Equal(createdAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSubmissionRepository_Insert_RollsBackOnExecError(t *testing.T) {
	repo, mock := newMockMySQL(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO service_requests").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	sub := &model.Submission{FullName: "a", ContactNumber: "b", ServiceType: "c", ProjectDescription: "d"}
	err := repo.Insert(context.Background(), sub)

	require.Error(t, err)
	assert.Zero(t, sub.ID, "id must not be assigned when the insert fails")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSubmissionRepository_List_OrdersNewestFirst(t *testing.T) {
	repo, mock := newMockMySQL(t)
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(`ORDER BY created_at DESC, Id DESC`).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow(int64(2), "B", "2", "svc", "desc", t2).
			AddRow(int64(1), "A", "1", "svc", "desc", t1))

	subs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, int64(2), subs[0].ID)
	assert.Equal(t, "A", subs[1].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSubmissionRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newMockMySQL(t)

	mock.ExpectQuery(`WHERE Id = \?`).
		WithArgs(int64(999999)).
		WillReturnRows(sqlmock.NewRows(submissionColumns))

	_, err := repo.FindByID(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLSubmissionRepository_FindByID_Found(t *testing.T) {
	repo, mock := newMockMySQL(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE Id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow(int64(3), "Jane Doe", "+1-555-0100", "Web Development", "Build a site", now))

	sub, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Web Development", sub.ServiceType)
	assert.Equal(t, "Build a site", sub.ProjectDescription)
}

func TestMySQLSubmissionRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockMySQL(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS service_requests").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
