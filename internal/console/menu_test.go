package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository/repotest"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/appointment"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/booking"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/doctor"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/patient"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/report"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

var menuDay = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func runMenu(t *testing.T, input ...string) (*repotest.Store, string) {
	t.Helper()
	store := repotest.NewStore()
	d := store.Data()
	d.Departments[1] = &model.Department{ID: 1, Name: "Surgery", HospitalID: 1}
	d.Doctors[5] = &model.Doctor{ID: 5, Name: "Meredith Grey", Specialty: "General", DepartmentID: 1}
	d.Patients[1] = &model.Patient{ID: 1, Name: "Ann Lee", Gender: model.GenderFemale, Age: 40}
	d.Appointments[10] = &model.Appointment{ID: 10, Date: menuDay, TimeSlot: "09:00-10:00", Status: model.AppointmentStatusAvailable}
	d.Assignments = append(d.Assignments, model.Assignment{AppointmentID: 10, DoctorID: 5})

	v := validator.New()
	svc := Services{
		Doctors:      doctor.NewService(store, v),
		Patients:     patient.NewService(store, v),
		Appointments: appointment.NewService(store, v),
		Booking:      booking.NewService(store, v, metrics.New("test"), logger.Nop()),
		Reports:      report.NewService(store.Repos().Reports, nil, v),
	}

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	require.NoError(t, NewMenu(in, &out, svc, v, logger.Nop()).Run(context.Background()))
	return store, out.String()
}

func TestMenuExit(t *testing.T) {
	_, out := runMenu(t, "9")
	assert.Contains(t, out, "MAIN MENU")
	assert.Contains(t, out, "9. < EXIT")
}

func TestMenuEndOfInputExits(t *testing.T) {
	_, out := runMenu(t, "1", "Derek")
	assert.Contains(t, out, "Enter Specialty: ")
}

func TestMenuInvalidChoice(t *testing.T) {
	_, out := runMenu(t, "0", "x", "9")
	assert.Contains(t, out, "between 1 and 9")
	assert.Contains(t, out, "Your input is invalid!")
}

func TestMenuAddDoctor(t *testing.T) {
	store, out := runMenu(t, "1", "Derek Shepherd", "Neurology", "1", "9")

	assert.Contains(t, out, "New Doctor: ID: 6")
	require.Contains(t, store.Data().Doctors, 6)
	assert.Equal(t, "Neurology", store.Data().Doctors[6].Specialty)
}

func TestMenuAddPatient(t *testing.T) {
	store, out := runMenu(t, "2", "Bo Chen", "M", "31", "12 Main St", "0", "9")

	assert.Contains(t, out, "New Patient: ID: 2")
	assert.Equal(t, "Bo Chen", store.Data().Patients[2].Name)
}

func TestMenuAddAppointment(t *testing.T) {
	store, out := runMenu(t, "3", "2024-06-04", "10:00-11:00", "5", "9")

	assert.Contains(t, out, "New Appointment: ID: 11")
	assert.Equal(t, model.AppointmentStatusAvailable, store.Data().Appointments[11].Status)
}

func TestMenuAddAppointmentUnknownDoctorContinues(t *testing.T) {
	_, out := runMenu(t, "3", "2024-06-04", "10:00-11:00", "77", "9")

	assert.Contains(t, out, "Error:")
	assert.Equal(t, 2, strings.Count(out, "MAIN MENU"))
}

func TestMenuBookThenWaitlist(t *testing.T) {
	store, out := runMenu(t,
		"4", "5", "10", "y", "1", "y",
		"4", "5", "10", "y", "1", "y",
		"9")

	assert.Contains(t, out, "Appointment booked for patient 1.")
	assert.Contains(t, out, "added to the waitlist")
	d := store.Data()
	assert.Equal(t, model.AppointmentStatusActive, d.Appointments[10].Status)
	assert.Equal(t, model.AppointmentStatusWaitlisted, d.Appointments[11].Status)
	assert.Equal(t, 2, d.Patients[1].NumberOfAppointments)
}

func TestMenuBookUnassignedAppointment(t *testing.T) {
	_, out := runMenu(t, "4", "5", "99", "9")

	assert.Contains(t, out, "Error:")
	assert.NotContains(t, out, "existing patient")
}

func TestMenuListDoctorAppointments(t *testing.T) {
	_, out := runMenu(t, "5", "5", "2024-06-01", "2024-06-30", "9")

	assert.Contains(t, out, "09:00-10:00")
	assert.Contains(t, out, "(1 rows)")
}

func TestMenuListDepartmentAppointments(t *testing.T) {
	_, out := runMenu(t, "6", "Surgery", "2024-06-03", "9")

	assert.Contains(t, out, "Meredith Grey")
}

func TestMenuReports(t *testing.T) {
	_, out := runMenu(t, "7", "8", "av", "9")

	assert.Contains(t, out, "Meredith Grey")
	assert.Contains(t, out, "AV")
}
