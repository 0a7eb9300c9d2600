package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patient (patient_id, name, gtype, age, address, number_of_appts)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.exec.ExecuteUpdate(ctx, query,
		patient.ID,
		patient.Name,
		string(patient.Gender),
		patient.Age,
		patient.Address,
		patient.NumberOfAppointments,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int) (*model.Patient, error) {
	query := `
		SELECT patient_id, name, gtype::text AS gtype, age,
			   COALESCE(address, '') AS address,
			   COALESCE(number_of_appts, 0) AS number_of_appts
		FROM patient
		WHERE patient_id = $1
	`
	var patient model.Patient
	if err := r.exec.Get(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) IncrementAppointments(ctx context.Context, id int) error {
	query := `
		UPDATE patient
		SET number_of_appts = COALESCE(number_of_appts, 0) + 1
		WHERE patient_id = $1
	`
	rows, err := r.exec.ExecuteUpdate(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}
