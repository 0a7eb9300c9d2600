package doctor

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

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var doctor *model.Doctor
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		id, err := tx.IDs.Next(ctx, repository.TableDoctor)
		if err != nil {
			return err
		}
		doctor = &model.Doctor{
			ID:           id,
			Name:         req.Name,
			Specialty:    req.Specialty,
			DepartmentID: req.DepartmentID,
		}
		if err := tx.Doctors.Create(ctx, doctor); err != nil {
			return err
		}
		return audit.NewService(tx.Audit).Log(ctx, model.AuditActionCreate, model.AuditEntityDoctor, strconv.Itoa(id), doctor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int) (*model.Doctor, error) {
	if id <= 0 {
		return nil, apperrors.BadRequest("doctor id must be greater than 0", nil)
	}
	return s.store.Repos().Doctors.Get(ctx, id)
}
