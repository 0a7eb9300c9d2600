// Package repotest provides an in-memory repository.Store for service tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

// Search is a row of the searches table linking a patient to an appointment.
type Search struct {
	HospitalID    int
	PatientID     int
	AppointmentID int
}

// Data is the full content of the store. Tests seed it directly.
type Data struct {
	Departments  map[int]*model.Department
	Doctors      map[int]*model.Doctor
	Patients     map[int]*model.Patient
	Appointments map[int]*model.Appointment
	Assignments  []model.Assignment
	Searches     []Search
	Outbox       []*model.OutboxEvent
	Audit        []*model.AuditLog
}

func newData() *Data {
	return &Data{
		Departments:  map[int]*model.Department{},
		Doctors:      map[int]*model.Doctor{},
		Patients:     map[int]*model.Patient{},
		Appointments: map[int]*model.Appointment{},
	}
}

func (d *Data) clone() *Data {
	c := newData()
	for k, v := range d.Departments {
		cp := *v
		c.Departments[k] = &cp
	}
	for k, v := range d.Doctors {
		cp := *v
		c.Doctors[k] = &cp
	}
	for k, v := range d.Patients {
		cp := *v
		c.Patients[k] = &cp
	}
	for k, v := range d.Appointments {
		cp := *v
		c.Appointments[k] = &cp
	}
	c.Assignments = append(c.Assignments, d.Assignments...)
	c.Searches = append(c.Searches, d.Searches...)
	for _, e := range d.Outbox {
		cp := *e
		c.Outbox = append(c.Outbox, &cp)
	}
	for _, a := range d.Audit {
		cp := *a
		c.Audit = append(c.Audit, &cp)
	}
	return c
}

// Store keeps everything in memory. WithTx works on a copy of the data and
// swaps it in only when fn succeeds, so a failed unit of work leaves no
// trace.
type Store struct {
	mu   sync.Mutex
	data *Data

	// Fail makes the named operation return the error, e.g.
	// "assignments.create" or "outbox.create".
	Fail map[string]error
	// Commits counts successful WithTx calls.
	Commits int
}

func NewStore() *Store {
	return &Store{data: newData(), Fail: map[string]error{}}
}

// Data returns the committed data. Callers may seed it before use.
func (s *Store) Data() *Data {
	return s.data
}

func (s *Store) Repos() *repository.Repositories {
	return s.reposFor(s.data)
}

func (s *Store) WithTx(ctx context.Context, fn func(*repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(s.reposFor(tx)); err != nil {
		return err
	}
	*s.data = *tx
	s.Commits++
	return nil
}

func (s *Store) fail(op string) error {
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

func (s *Store) reposFor(d *Data) *repository.Repositories {
	r := &repos{store: s, data: d}
	return &repository.Repositories{
		IDs:          r,
		Appointments: appointments{r},
		Assignments:  assignments{r},
		Doctors:      doctors{r},
		Patients:     patients{r},
		Reports:      reports{r},
		Outbox:       outbox{r},
		Audit:        audit{r},
	}
}

type repos struct {
	store *Store
	data  *Data
}

func (r *repos) Next(ctx context.Context, table repository.Table) (int, error) {
	if err := r.store.fail("ids.next"); err != nil {
		return 0, err
	}
	max := 0
	switch table {
	case repository.TableDoctor:
		for id := range r.data.Doctors {
			if id > max {
				max = id
			}
		}
	case repository.TablePatient:
		for id := range r.data.Patients {
			if id > max {
				max = id
			}
		}
	case repository.TableAppointment:
		for id := range r.data.Appointments {
			if id > max {
				max = id
			}
		}
	default:
		return 0, fmt.Errorf("no id sequence for table %q", table)
	}
	return max + 1, nil
}

type appointments struct{ *repos }

func (r appointments) Create(ctx context.Context, a *model.Appointment) error {
	if err := r.store.fail("appointments.create"); err != nil {
		return err
	}
	if _, ok := r.data.Appointments[a.ID]; ok {
		return fmt.Errorf("duplicate appointment %d", a.ID)
	}
	cp := *a
	r.data.Appointments[a.ID] = &cp
	return nil
}

func (r appointments) Get(ctx context.Context, id int) (*model.Appointment, error) {
	a, ok := r.data.Appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (r appointments) GetForUpdate(ctx context.Context, id int) (*model.Appointment, error) {
	return r.Get(ctx, id)
}

func (r appointments) UpdateStatus(ctx context.Context, id int, status model.AppointmentStatus) error {
	if err := r.store.fail("appointments.update_status"); err != nil {
		return err
	}
	a, ok := r.data.Appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Status = status
	return nil
}

func (r appointments) List(ctx context.Context, f *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := []*model.Appointment{}
	seen := map[int]bool{}
	for _, as := range r.data.Assignments {
		if f != nil && f.DoctorID > 0 && as.DoctorID != f.DoctorID {
			continue
		}
		a, ok := r.data.Appointments[as.AppointmentID]
		if !ok || seen[a.ID] {
			continue
		}
		if f != nil {
			if !f.StartDate.IsZero() && a.Date.Before(f.StartDate) {
				continue
			}
			if !f.EndDate.IsZero() && a.Date.After(f.EndDate) {
				continue
			}
			if len(f.Statuses) > 0 && !hasStatus(f.Statuses, a.Status) {
				continue
			}
		}
		seen[a.ID] = true
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r appointments) ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]*model.DoctorAppointment, error) {
	out := []*model.DoctorAppointment{}
	for _, as := range r.data.Assignments {
		doc, ok := r.data.Doctors[as.DoctorID]
		if !ok {
			continue
		}
		dept, ok := r.data.Departments[doc.DepartmentID]
		if !ok || dept.Name != department {
			continue
		}
		a, ok := r.data.Appointments[as.AppointmentID]
		if !ok || !a.Date.Equal(date) || a.Status != model.AppointmentStatusAvailable {
			continue
		}
		out = append(out, &model.DoctorAppointment{Appointment: *a, DoctorID: doc.ID, DoctorName: doc.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TimeSlot != out[j].TimeSlot {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].DoctorID < out[j].DoctorID
	})
	return out, nil
}

func hasStatus(list []model.AppointmentStatus, s model.AppointmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type assignments struct{ *repos }

func (r assignments) Exists(ctx context.Context, doctorID, appointmentID int) (bool, error) {
	for _, as := range r.data.Assignments {
		if as.DoctorID == doctorID && as.AppointmentID == appointmentID {
			return true, nil
		}
	}
	return false, nil
}

func (r assignments) Create(ctx context.Context, a *model.Assignment) error {
	if err := r.store.fail("assignments.create"); err != nil {
		return err
	}
	r.data.Assignments = append(r.data.Assignments, *a)
	return nil
}

type doctors struct{ *repos }

func (r doctors) Create(ctx context.Context, d *model.Doctor) error {
	if err := r.store.fail("doctors.create"); err != nil {
		return err
	}
	if _, ok := r.data.Doctors[d.ID]; ok {
		return fmt.Errorf("duplicate doctor %d", d.ID)
	}
	cp := *d
	r.data.Doctors[d.ID] = &cp
	return nil
}

func (r doctors) Get(ctx context.Context, id int) (*model.Doctor, error) {
	d, ok := r.data.Doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	cp := *d
	return &cp, nil
}

type patients struct{ *repos }

func (r patients) Create(ctx context.Context, p *model.Patient) error {
	if err := r.store.fail("patients.create"); err != nil {
		return err
	}
	if _, ok := r.data.Patients[p.ID]; ok {
		return fmt.Errorf("duplicate patient %d", p.ID)
	}
	cp := *p
	r.data.Patients[p.ID] = &cp
	return nil
}

func (r patients) Get(ctx context.Context, id int) (*model.Patient, error) {
	p, ok := r.data.Patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r patients) IncrementAppointments(ctx context.Context, id int) error {
	p, ok := r.data.Patients[id]
	if !ok {
		return apperrors.NotFound("patient", nil)
	}
	p.NumberOfAppointments++
	return nil
}

type reports struct{ *repos }

func (r reports) StatusCountsPerDoctor(ctx context.Context) ([]*model.StatusCount, error) {
	type key struct {
		doctor int
		status model.AppointmentStatus
	}
	counts := map[key]int{}
	for _, as := range r.data.Assignments {
		a, ok := r.data.Appointments[as.AppointmentID]
		if !ok || a.Status == "" {
			continue
		}
		counts[key{as.DoctorID, a.Status}]++
	}

	out := []*model.StatusCount{}
	for k, n := range counts {
		name := ""
		if d, ok := r.data.Doctors[k.doctor]; ok {
			name = d.Name
		}
		out = append(out, &model.StatusCount{DoctorID: k.doctor, DoctorName: name, Status: k.status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].DoctorID != out[j].DoctorID {
			return out[i].DoctorID < out[j].DoctorID
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func (r reports) PatientCountsPerDoctor(ctx context.Context, status model.AppointmentStatus) ([]*model.PatientCount, error) {
	patientsByDoctor := map[int]map[int]bool{}
	for _, as := range r.data.Assignments {
		a, ok := r.data.Appointments[as.AppointmentID]
		if !ok || a.Status != status {
			continue
		}
		for _, s := range r.data.Searches {
			if s.AppointmentID != a.ID {
				continue
			}
			if patientsByDoctor[as.DoctorID] == nil {
				patientsByDoctor[as.DoctorID] = map[int]bool{}
			}
			patientsByDoctor[as.DoctorID][s.PatientID] = true
		}
	}

	out := []*model.PatientCount{}
	for doc, set := range patientsByDoctor {
		name := ""
		if d, ok := r.data.Doctors[doc]; ok {
			name = d.Name
		}
		out = append(out, &model.PatientCount{DoctorID: doc, DoctorName: name, Patients: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Patients != out[j].Patients {
			return out[i].Patients > out[j].Patients
		}
		return out[i].DoctorID < out[j].DoctorID
	})
	return out, nil
}

type outbox struct{ *repos }

func (r outbox) Create(ctx context.Context, e *model.OutboxEvent) error {
	if err := r.store.fail("outbox.create"); err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	e.Status = model.OutboxStatusPending
	cp := *e
	r.data.Outbox = append(r.data.Outbox, &cp)
	return nil
}

func (r outbox) GetPendingEventsWithLock(ctx context.Context, limit int, maxRetries int) ([]*model.OutboxEvent, error) {
	if err := r.store.fail("outbox.pending"); err != nil {
		return nil, err
	}
	out := []*model.OutboxEvent{}
	for _, e := range r.data.Outbox {
		if len(out) >= limit {
			break
		}
		if (e.Status == model.OutboxStatusPending || e.Status == model.OutboxStatusFailed) && e.RetryCount < maxRetries {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r outbox) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	for _, e := range r.data.Outbox {
		if e.ID != id {
			continue
		}
		now := time.Now().UTC()
		e.Status = status
		e.ErrorMessage = errMsg
		e.UpdatedAt = now
		if status == model.OutboxStatusFailed {
			e.RetryCount++
		}
		if status == model.OutboxStatusProcessed {
			e.ProcessedAt = &now
		}
		return nil
	}
	return apperrors.NotFound("outbox event", nil)
}

func (r outbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	kept := r.data.Outbox[:0]
	var deleted int64
	for _, e := range r.data.Outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.data.Outbox = kept
	return deleted, nil
}

type audit struct{ *repos }

func (r audit) Create(ctx context.Context, l *model.AuditLog) error {
	if err := r.store.fail("audit.create"); err != nil {
		return err
	}
	cp := *l
	r.data.Audit = append(r.data.Audit, &cp)
	return nil
}
