package patient

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

// CreatePatient inserts the patient under the next free id.
func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var patient *model.Patient
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		id, err := tx.IDs.Next(ctx, repository.TablePatient)
		if err != nil {
			return err
		}
		patient = req.ToPatient(id)
		if err := tx.Patients.Create(ctx, patient); err != nil {
			return err
		}
		return audit.NewService(tx.Audit).Log(ctx, model.AuditActionCreate, model.AuditEntityPatient, strconv.Itoa(id), patient)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int) (*model.Patient, error) {
	if id <= 0 {
		return nil, apperrors.BadRequest("patient id must be greater than 0", nil)
	}
	return s.store.Repos().Patients.Get(ctx, id)
}
