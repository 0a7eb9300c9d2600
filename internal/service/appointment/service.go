package appointment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
	"github.com/the1323/cs166-project-the033-hbai013/internal/service/audit"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/validator"
)

type Service struct {
	store     repository.Store
	validator validator.Validator
}

func NewService(store repository.Store, v validator.Validator) *Service {
	return &Service{store: store, validator: v}
}

// CreateAppointment adds an available slot and assigns it to the doctor.
// The doctor must exist.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	date, err := validator.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("adate must be a date in YYYY-MM-DD form", err)
	}

	var apt *model.Appointment
	err = s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Doctors.Get(ctx, req.DoctorID); err != nil {
			return err
		}
		id, err := tx.IDs.Next(ctx, repository.TableAppointment)
		if err != nil {
			return err
		}
		apt = &model.Appointment{
			ID:       id,
			Date:     date,
			TimeSlot: req.TimeSlot,
			Status:   model.AppointmentStatusAvailable,
		}
		if err := tx.Appointments.Create(ctx, apt); err != nil {
			return err
		}
		if err := tx.Assignments.Create(ctx, &model.Assignment{AppointmentID: id, DoctorID: req.DoctorID}); err != nil {
			return err
		}
		return audit.NewService(tx.Audit).Log(ctx, model.AuditActionCreate, model.AuditEntityAppointment, strconv.Itoa(id), apt)
	})
	if err != nil {
		if apperrors.CodeOf(err) != 0 {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return apt, nil
}

// ListForDoctor returns the doctor's active and available appointments in
// the inclusive date range.
func (s *Service) ListForDoctor(ctx context.Context, req *model.ListDoctorAppointmentsRequest) ([]*model.Appointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	start, err := validator.ParseDate(req.StartDate)
	if err != nil {
		return nil, apperrors.BadRequest("start_date must be a date in YYYY-MM-DD form", err)
	}
	end, err := validator.ParseDate(req.EndDate)
	if err != nil {
		return nil, apperrors.BadRequest("end_date must be a date in YYYY-MM-DD form", err)
	}
	if end.Before(start) {
		return nil, apperrors.BadRequest("end_date must not be before start_date", nil)
	}

	return s.store.Repos().Appointments.List(ctx, &model.AppointmentFilters{
		DoctorID:  req.DoctorID,
		StartDate: start,
		EndDate:   end,
		Statuses:  []model.AppointmentStatus{model.AppointmentStatusActive, model.AppointmentStatusAvailable},
	})
}

// ListAvailableForDepartment returns the AV appointments of every doctor in
// the department on the given day.
func (s *Service) ListAvailableForDepartment(ctx context.Context, req *model.ListDepartmentAppointmentsRequest) ([]*model.DoctorAppointment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	date, err := validator.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("adate must be a date in YYYY-MM-DD form", err)
	}
	return s.store.Repos().Appointments.ListAvailableByDepartment(ctx, req.Department, date)
}
