package postgres

import (
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
)

type appointmentRepository struct {
	exec *Executor
}

type assignmentRepository struct {
	exec *Executor
}

type doctorRepository struct {
	exec *Executor
}

type patientRepository struct {
	exec *Executor
}

type reportRepository struct {
	exec *Executor
}

type outboxRepository struct {
	exec *Executor
}

type auditRepository struct {
	exec *Executor
}

func NewAppointmentRepository(exec *Executor) repository.AppointmentRepository {
	return &appointmentRepository{exec: exec}
}

func NewAssignmentRepository(exec *Executor) repository.AssignmentRepository {
	return &assignmentRepository{exec: exec}
}

func NewDoctorRepository(exec *Executor) repository.DoctorRepository {
	return &doctorRepository{exec: exec}
}

func NewPatientRepository(exec *Executor) repository.PatientRepository {
	return &patientRepository{exec: exec}
}

func NewReportRepository(exec *Executor) repository.ReportRepository {
	return &reportRepository{exec: exec}
}

func NewOutboxRepository(exec *Executor) repository.OutboxRepository {
	return &outboxRepository{exec: exec}
}

func NewAuditRepository(exec *Executor) repository.AuditRepository {
	return &auditRepository{exec: exec}
}

// newRepositories binds every repository to exec. inTx enables the table
// lock taken by the id sequence, which Postgres only allows in a transaction.
func newRepositories(exec *Executor, inTx bool) *repository.Repositories {
	return &repository.Repositories{
		IDs:          NewIDSequence(exec, inTx),
		Appointments: NewAppointmentRepository(exec),
		Assignments:  NewAssignmentRepository(exec),
		Doctors:      NewDoctorRepository(exec),
		Patients:     NewPatientRepository(exec),
		Reports:      NewReportRepository(exec),
		Outbox:       NewOutboxRepository(exec),
		Audit:        NewAuditRepository(exec),
	}
}
