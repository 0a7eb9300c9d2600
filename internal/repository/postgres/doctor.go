package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctor (doctor_id, name, specialty, did)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.exec.ExecuteUpdate(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Specialty,
		doctor.DepartmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id int) (*model.Doctor, error) {
	query := `
		SELECT doctor_id, COALESCE(name, '') AS name, COALESCE(specialty, '') AS specialty, did
		FROM doctor
		WHERE doctor_id = $1
	`
	var doctor model.Doctor
	if err := r.exec.Get(ctx, &doctor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}
