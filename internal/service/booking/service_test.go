package booking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/repotest"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	d := store.Data()

	d.Doctors[5] = &model.Doctor{ID: 5, Name: "Meredith Grey", Specialty: "Surgery", DepartmentID: 1}
	d.Patients[1] = &model.Patient{ID: 1, Name: "Ann Lee", Gender: model.GenderFemale, Age: 40, NumberOfAppointments: 2}
	d.Patients[7] = &model.Patient{ID: 7, Name: "Bo Chen", Gender: model.GenderMale, Age: 31}

	d.Appointments[10] = &model.Appointment{ID: 10, Date: day, TimeSlot: "09:00-10:00", Status: model.AppointmentStatusAvailable}
	d.Appointments[11] = &model.Appointment{ID: 11, Date: day, TimeSlot: "10:00-11:00", Status: model.AppointmentStatusActive}
	d.Appointments[12] = &model.Appointment{ID: 12, Date: day, TimeSlot: "11:00-12:00", Status: model.AppointmentStatusWaitlisted}
	d.Appointments[13] = &model.Appointment{ID: 13, Date: day, TimeSlot: "12:00-13:00", Status: model.AppointmentStatusPending}
	d.Appointments[20] = &model.Appointment{ID: 20, Date: day, TimeSlot: "14:00-15:00", Status: model.AppointmentStatusAvailable}

	for _, id := range []int{11, 12, 13, 20} {
		d.Assignments = append(d.Assignments, model.Assignment{AppointmentID: id, DoctorID: 5})
	}
	// Appointment 10 is deliberately not assigned to doctor 5.
	d.Assignments = append(d.Assignments, model.Assignment{AppointmentID: 10, DoctorID: 6})

	svc := NewService(store, validator.New(), metrics.New("test"), logger.Nop())
	return svc, store
}

func existing(id int) PatientSource {
	return PatientSourceFunc(func(context.Context) (*PatientChoice, error) {
		return &PatientChoice{ExistingID: id}, nil
	})
}

func newPatient(req *model.CreatePatientRequest) PatientSource {
	return PatientSourceFunc(func(context.Context) (*PatientChoice, error) {
		return &PatientChoice{New: req}, nil
	})
}

func neverAsked(t *testing.T) PatientSource {
	return PatientSourceFunc(func(context.Context) (*PatientChoice, error) {
		t.Fatal("patient must not be requested")
		return nil, nil
	})
}

func TestBookAvailableActivatesInPlace(t *testing.T) {
	svc, store := setup(t)
	before := len(store.Data().Appointments)

	res, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, existing(1))
	require.NoError(t, err)

	assert.Equal(t, OutcomeActivated, res.Outcome)
	assert.Equal(t, 20, res.Appointment.ID)
	assert.Equal(t, model.AppointmentStatusActive, res.Appointment.Status)

	d := store.Data()
	assert.Equal(t, model.AppointmentStatusActive, d.Appointments[20].Status)
	assert.Len(t, d.Appointments, before)
	assert.Equal(t, 3, d.Patients[1].NumberOfAppointments)

	require.Len(t, d.Outbox, 1)
	assert.Equal(t, model.EventAppointmentBooked, d.Outbox[0].EventType)
	require.Len(t, d.Audit, 1)
	assert.Equal(t, model.AuditActionBook, d.Audit[0].Action)
	assert.Equal(t, "20", d.Audit[0].EntityID)
}

func TestBookActiveCreatesWaitlistedClone(t *testing.T) {
	svc, store := setup(t)
	assignmentsBefore := len(store.Data().Assignments)

	res, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 11}, existing(7))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWaitlisted, res.Outcome)
	assert.Equal(t, 21, res.Appointment.ID, "new id is max+1")
	assert.Equal(t, model.AppointmentStatusWaitlisted, res.Appointment.Status)
	assert.Equal(t, day, res.Appointment.Date)
	assert.Equal(t, "10:00-11:00", res.Appointment.TimeSlot)

	d := store.Data()
	assert.Equal(t, model.AppointmentStatusActive, d.Appointments[11].Status, "original stays active")
	require.Contains(t, d.Appointments, 21)
	assert.Equal(t, model.AppointmentStatusWaitlisted, d.Appointments[21].Status)
	require.Len(t, d.Assignments, assignmentsBefore+1)
	assert.Equal(t, model.Assignment{AppointmentID: 21, DoctorID: 5}, d.Assignments[len(d.Assignments)-1])

	require.Len(t, d.Outbox, 1)
	assert.Equal(t, model.EventAppointmentWaitlisted, d.Outbox[0].EventType)
	var payload model.BookingEvent
	require.NoError(t, json.Unmarshal(d.Outbox[0].Payload, &payload))
	assert.Equal(t, 21, payload.AppointmentID)
	assert.Equal(t, 11, payload.OriginalAppointmentID)
	assert.Equal(t, 7, payload.PatientID)
	assert.Equal(t, "2024-06-03", payload.Date)
}

func TestBookRejectsUnbookableStatuses(t *testing.T) {
	for _, id := range []int{12, 13} {
		svc, store := setup(t)
		snapshot := *store.Data().Appointments[id]

		_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: id}, neverAsked(t))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotAvailable))
		assert.Contains(t, err.Error(), "not available")

		d := store.Data()
		assert.Equal(t, snapshot, *d.Appointments[id])
		assert.Len(t, d.Appointments, 5)
		assert.Empty(t, d.Outbox)
		assert.Zero(t, store.Commits)
	}
}

func TestBookWithoutAssignmentIsNotFound(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 10}, neverAsked(t))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, model.AppointmentStatusAvailable, store.Data().Appointments[10].Status)
}

func TestBookNewPatientGetsNextID(t *testing.T) {
	svc, store := setup(t)

	res, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, newPatient(&model.CreatePatientRequest{
		Name: "Cara Diaz", Gender: "F", Age: 25, Address: "9 Elm St",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8, res.Patient.ID)
	assert.Equal(t, 1, res.Patient.NumberOfAppointments)

	p := store.Data().Patients[8]
	require.NotNil(t, p)
	assert.Equal(t, "Cara Diaz", p.Name)
	assert.Equal(t, 1, p.NumberOfAppointments)
	assert.Len(t, store.Data().Audit, 2)
}

func TestBookNewPatientInvalid(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, newPatient(&model.CreatePatientRequest{
		Name: "Cara Diaz", Gender: "X", Age: 25,
	}))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	assert.Len(t, store.Data().Patients, 2)
	assert.Equal(t, model.AppointmentStatusAvailable, store.Data().Appointments[20].Status)
}

func TestBookUnknownExistingPatient(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, existing(99))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, model.AppointmentStatusAvailable, store.Data().Appointments[20].Status)
}

func TestBookRollsBackWhenAssignmentInsertFails(t *testing.T) {
	svc, store := setup(t)
	store.Fail["assignments.create"] = errors.New("insert failed")

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 11}, newPatient(&model.CreatePatientRequest{
		Name: "Cara Diaz", Gender: "F", Age: 25,
	}))
	require.Error(t, err)

	d := store.Data()
	assert.NotContains(t, d.Appointments, 21, "waitlisted appointment must be rolled back")
	assert.NotContains(t, d.Patients, 8, "new patient must be rolled back")
	assert.Equal(t, 2, d.Patients[1].NumberOfAppointments)
	assert.Empty(t, d.Outbox)
	assert.Empty(t, d.Audit)
}

func TestBookRollsBackWhenOutboxFails(t *testing.T) {
	svc, store := setup(t)
	store.Fail["outbox.create"] = errors.New("outbox down")

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, existing(1))
	require.Error(t, err)
	assert.Equal(t, model.AppointmentStatusAvailable, store.Data().Appointments[20].Status)
	assert.Equal(t, 2, store.Data().Patients[1].NumberOfAppointments)
}

func TestBookValidatesRequest(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 0, AppointmentID: 20}, neverAsked(t))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestBookPatientSourceError(t *testing.T) {
	svc, store := setup(t)
	cancelled := PatientSourceFunc(func(context.Context) (*PatientChoice, error) {
		return nil, errors.New("input closed")
	})

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}, cancelled)
	require.Error(t, err)
	assert.Zero(t, store.Commits)
}

func TestBookTwiceActivatesThenWaitlists(t *testing.T) {
	svc, store := setup(t)
	req := &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20}

	first, err := svc.Book(context.Background(), req, existing(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeActivated, first.Outcome)

	second, err := svc.Book(context.Background(), req, existing(7))
	require.NoError(t, err)
	assert.Equal(t, OutcomeWaitlisted, second.Outcome)
	assert.Equal(t, 21, second.Appointment.ID)
	assert.Equal(t, 2, store.Commits)
}

// changeStatusThenChoose simulates another session changing the slot while
// the patient is being chosen.
func changeStatusThenChoose(store *repotest.Store, apptID int, status model.AppointmentStatus, patientID int) PatientSource {
	return PatientSourceFunc(func(context.Context) (*PatientChoice, error) {
		store.Data().Appointments[apptID].Status = status
		return &PatientChoice{ExistingID: patientID}, nil
	})
}

func TestBookRejectsSlotThatBecamePending(t *testing.T) {
	svc, store := setup(t)

	_, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20},
		changeStatusThenChoose(store, 20, model.AppointmentStatusPending, 1))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotAvailable))

	d := store.Data()
	assert.Zero(t, store.Commits)
	assert.Equal(t, 2, d.Patients[1].NumberOfAppointments)
	assert.Equal(t, model.AppointmentStatusPending, d.Appointments[20].Status)
	assert.Len(t, d.Appointments, 5)
	assert.Empty(t, d.Outbox)
	assert.Empty(t, d.Audit)
}

func TestBookWaitlistsSlotThatBecameActive(t *testing.T) {
	svc, store := setup(t)

	res, err := svc.Book(context.Background(), &model.BookAppointmentRequest{DoctorID: 5, AppointmentID: 20},
		changeStatusThenChoose(store, 20, model.AppointmentStatusActive, 1))
	require.NoError(t, err)

	assert.Equal(t, OutcomeWaitlisted, res.Outcome)
	assert.Equal(t, 21, res.Appointment.ID)
	assert.Equal(t, "14:00-15:00", res.Appointment.TimeSlot)

	d := store.Data()
	assert.Equal(t, 1, store.Commits)
	assert.Equal(t, model.AppointmentStatusActive, d.Appointments[20].Status)
	assert.Equal(t, model.AppointmentStatusWaitlisted, d.Appointments[21].Status)
	assert.Equal(t, 3, d.Patients[1].NumberOfAppointments)
	require.Len(t, d.Outbox, 1)
	assert.Equal(t, model.EventAppointmentWaitlisted, d.Outbox[0].EventType)
}
