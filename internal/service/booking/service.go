// Package booking books a patient onto a doctor's appointment.
//
// An available (AV) appointment becomes active (AC) in place. Booking an
// appointment that is already active clones it into a new waitlisted (WL)
// appointment for the same doctor, date and time slot. Pending (PA) and
// waitlisted appointments cannot be booked.
package booking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/audit"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/event"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/logger"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/metrics"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

type Outcome string

const (
	OutcomeActivated  Outcome = "activated"
	OutcomeWaitlisted Outcome = "waitlisted"
)

// PatientChoice identifies who the booking is for: an existing patient by
// id, or a new patient to be created.
type PatientChoice struct {
	ExistingID int
	New        *model.CreatePatientRequest
}

// PatientSource supplies the patient once the appointment is known to be
// bookable.
type PatientSource interface {
	ChoosePatient(ctx context.Context) (*PatientChoice, error)
}

// PatientSourceFunc adapts a function to PatientSource.
type PatientSourceFunc func(ctx context.Context) (*PatientChoice, error)

func (f PatientSourceFunc) ChoosePatient(ctx context.Context) (*PatientChoice, error) {
	return f(ctx)
}

type Result struct {
	Appointment *model.Appointment
	Patient     *model.Patient
	Outcome     Outcome
}

type Service struct {
	store     repository.Store
	validator validator.Validator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(store repository.Store, v validator.Validator, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, validator: v, metrics: m, logger: log}
}

// Book runs the booking workflow. Every write happens in one transaction;
// the appointment is locked and its status checked again before anything
// is written.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest, source PatientSource) (*Result, error) {
	if err := s.validator.Validate(req); err != nil {
		s.reject("invalid")
		return nil, err
	}

	repos := s.store.Repos()

	exists, err := repos.Assignments.Exists(ctx, req.DoctorID, req.AppointmentID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !exists {
		s.reject("not_found")
		return nil, apperrors.NotFound("appointment", fmt.Errorf("doctor %d has no appointment %d", req.DoctorID, req.AppointmentID))
	}

	appt, err := repos.Appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			s.reject("not_found")
		}
		return nil, err
	}
	if !appt.Status.Bookable() {
		s.reject("not_available")
		return nil, notAvailable(appt)
	}

	choice, err := source.ChoosePatient(ctx)
	if err != nil {
		return nil, err
	}
	if choice == nil || (choice.New == nil && choice.ExistingID <= 0) {
		s.reject("invalid")
		return nil, apperrors.BadRequest("patient is required", nil)
	}
	if choice.New != nil {
		if err := s.validator.Validate(choice.New); err != nil {
			s.reject("invalid")
			return nil, err
		}
	}

	var result *Result
	err = s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		var txErr error
		result, txErr = s.book(ctx, tx, req.DoctorID, req.AppointmentID, choice)
		return txErr
	})
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrNotAvailable:
			s.reject("not_available")
		case apperrors.ErrNotFound:
			s.reject("not_found")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Bookings.WithLabelValues(string(result.Outcome)).Inc()
	}
	s.logger.Info("appointment booked",
		"doctor_id", req.DoctorID,
		"appnt_id", result.Appointment.ID,
		"patient_id", result.Patient.ID,
		"outcome", string(result.Outcome),
	)
	return result, nil
}

func (s *Service) book(ctx context.Context, tx *repository.Repositories, doctorID, appointmentID int, choice *PatientChoice) (*Result, error) {
	appt, err := tx.Appointments.GetForUpdate(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.Status.Bookable() {
		return nil, notAvailable(appt)
	}

	patient, err := s.resolvePatient(ctx, tx, choice)
	if err != nil {
		return nil, err
	}
	if err := tx.Patients.IncrementAppointments(ctx, patient.ID); err != nil {
		return nil, err
	}
	patient.NumberOfAppointments++

	result := &Result{Patient: patient}
	eventType := model.EventAppointmentBooked

	switch appt.Status {
	case model.AppointmentStatusAvailable:
		if err := tx.Appointments.UpdateStatus(ctx, appt.ID, model.AppointmentStatusActive); err != nil {
			return nil, err
		}
		appt.Status = model.AppointmentStatusActive
		result.Appointment = appt
		result.Outcome = OutcomeActivated

	case model.AppointmentStatusActive:
		id, err := tx.IDs.Next(ctx, repository.TableAppointment)
		if err != nil {
			return nil, err
		}
		waitlisted := &model.Appointment{
			ID:       id,
			Date:     appt.Date,
			TimeSlot: appt.TimeSlot,
			Status:   model.AppointmentStatusWaitlisted,
		}
		if err := tx.Appointments.Create(ctx, waitlisted); err != nil {
			return nil, err
		}
		if err := tx.Assignments.Create(ctx, &model.Assignment{AppointmentID: id, DoctorID: doctorID}); err != nil {
			return nil, err
		}
		result.Appointment = waitlisted
		result.Outcome = OutcomeWaitlisted
		eventType = model.EventAppointmentWaitlisted
	}

	payload := &model.BookingEvent{
		DoctorID:              doctorID,
		AppointmentID:         result.Appointment.ID,
		OriginalAppointmentID: appt.ID,
		PatientID:             patient.ID,
		Date:                  result.Appointment.DateString(),
		TimeSlot:              result.Appointment.TimeSlot,
		Status:                result.Appointment.Status,
	}
	if _, err := event.NewEventService(tx.Outbox).Emit(ctx, eventType, payload); err != nil {
		return nil, err
	}
	if err := audit.NewService(tx.Audit).Log(ctx, model.AuditActionBook, model.AuditEntityAppointment,
		strconv.Itoa(result.Appointment.ID), payload); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) resolvePatient(ctx context.Context, tx *repository.Repositories, choice *PatientChoice) (*model.Patient, error) {
	if choice.New == nil {
		return tx.Patients.Get(ctx, choice.ExistingID)
	}

	id, err := tx.IDs.Next(ctx, repository.TablePatient)
	if err != nil {
		return nil, err
	}
	patient := choice.New.ToPatient(id)
	if err := tx.Patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	if err := audit.NewService(tx.Audit).Log(ctx, model.AuditActionCreate, model.AuditEntityPatient, strconv.Itoa(id), patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.BookingRejections.WithLabelValues(reason).Inc()
	}
}

func notAvailable(appt *model.Appointment) error {
	return apperrors.NotAvailable("appointment", fmt.Errorf("appointment %d is %s", appt.ID, appt.Status.Label()))
}
