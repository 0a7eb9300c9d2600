package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
)

func TestWithTxCommits(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointment SET status").
		WithArgs("AC", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithTx(context.Background(), func(repos *repository.Repositories) error {
		return repos.Appointments.UpdateStatus(context.Background(), 10, model.AppointmentStatusActive)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointment SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO has_appointment").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := store.WithTx(context.Background(), func(repos *repository.Repositories) error {
		if err := repos.Appointments.UpdateStatus(context.Background(), 10, model.AppointmentStatusActive); err != nil {
			return err
		}
		return repos.Assignments.Create(context.Background(), &model.Assignment{AppointmentID: 11, DoctorID: 5})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.WithTx(context.Background(), func(*repository.Repositories) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryReadOnlyRunsInReadOnlyTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("SET TRANSACTION READ ONLY").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("SELECT name FROM doctor").
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Grey").AddRow(nil))
	mock.ExpectRollback()

	table, err := store.QueryReadOnly(context.Background(), "SELECT name FROM doctor")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, table.Columns)
	assert.Equal(t, [][]string{{"Grey"}, {""}}, table.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryReadOnlyRollsBackRejectedStatement(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("SET TRANSACTION READ ONLY").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("select 1; drop table appointment").
		WillReturnError(errors.New("cannot insert multiple commands into a prepared statement"))
	mock.ExpectRollback()

	_, err := store.QueryReadOnly(context.Background(), "select 1; drop table appointment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare query")
	assert.NoError(t, mock.ExpectationsWereMet())
}
