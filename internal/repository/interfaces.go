package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
)

// Table identifies a table whose integer ids are handed out by IDSequence.
type Table string

const (
	TableDoctor      Table = "doctor"
	TablePatient     Table = "patient"
	TableAppointment Table = "appointment"
)

// All repository interfaces in one file
type (
	// IDSequence hands out the next integer id of a table.
	IDSequence interface {
		Next(ctx context.Context, table Table) (int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int) (*model.Appointment, error)
		// GetForUpdate locks the row until the surrounding transaction ends.
		GetForUpdate(ctx context.Context, id int) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id int, status model.AppointmentStatus) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]*model.DoctorAppointment, error)
	}

	AssignmentRepository interface {
		Exists(ctx context.Context, doctorID, appointmentID int) (bool, error)
		Create(ctx context.Context, assignment *model.Assignment) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id int) (*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int) (*model.Patient, error)
		IncrementAppointments(ctx context.Context, id int) error
	}

	ReportRepository interface {
		StatusCountsPerDoctor(ctx context.Context) ([]*model.StatusCount, error)
		PatientCountsPerDoctor(ctx context.Context, status model.AppointmentStatus) ([]*model.PatientCount, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock must run inside a transaction.
		GetPendingEventsWithLock(ctx context.Context, limit int, maxRetries int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
	}
)

// Repositories groups every repository bound to one connection or
// transaction.
type Repositories struct {
	IDs          IDSequence
	Appointments AppointmentRepository
	Assignments  AssignmentRepository
	Doctors      DoctorRepository
	Patients     PatientRepository
	Reports      ReportRepository
	Outbox       OutboxRepository
	Audit        AuditRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() *Repositories
	// WithTx runs fn with repositories bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(repos *Repositories) error) error
}
