package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

var apptCols = []string{"appnt_id", "adate", "time_slot", "status"}

func TestAppointmentGet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM appointment a WHERE a.appnt_id = \\$1").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(apptCols).AddRow(10, day, "09:00-10:00", "AV"))

	appt, err := repo.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, appt.ID)
	assert.Equal(t, "2024-05-01", appt.DateString())
	assert.Equal(t, model.AppointmentStatusAvailable, appt.Status)
}

func TestAppointmentGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))

	mock.ExpectQuery("SELECT .* FROM appointment").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(apptCols))

	_, err := repo.Get(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAppointmentGetForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))

	mock.ExpectQuery("SELECT .* FROM appointment a WHERE a.appnt_id = \\$1 FOR UPDATE").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(apptCols).AddRow(10, time.Now(), "09:00-10:00", "AC"))

	appt, err := repo.GetForUpdate(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusActive, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentUpdateStatusMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))

	mock.ExpectExec("UPDATE appointment SET status").
		WithArgs("AC", 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 42, model.AppointmentStatusActive)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestAppointmentListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	mock.ExpectQuery("h.doctor_id = \\$1 AND a.adate >= \\$2 AND a.adate <= \\$3 AND a.status::text = ANY\\(\\$4\\)").
		WithArgs(5, start, end, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(apptCols).
			AddRow(1, start, "08:00-09:00", "AC").
			AddRow(2, start, "09:00-10:00", "AV"))

	list, err := repo.List(context.Background(), &model.AppointmentFilters{
		DoctorID:  5,
		StartDate: start,
		EndDate:   end,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusActive, model.AppointmentStatusAvailable},
	})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentListAvailableByDepartment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository(NewExecutor(db, nil))
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("JOIN department dp").
		WithArgs("Cardiology", day).
		WillReturnRows(sqlmock.NewRows(append(apptCols, "doctor_id", "doctor_name")).
			AddRow(3, day, "10:00-11:00", "AV", 5, "Grey"))

	list, err := repo.ListAvailableByDepartment(context.Background(), "Cardiology", day)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].DoctorID)
	assert.Equal(t, "Grey", list[0].DoctorName)
	assert.Equal(t, 3, list[0].ID)
}
