package postgres

import (
	"context"
	"fmt"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
)

func (r *assignmentRepository) Exists(ctx context.Context, doctorID, appointmentID int) (bool, error) {
	query := `SELECT 1 FROM has_appointment WHERE doctor_id = $1 AND appt_id = $2`

	count, err := r.exec.ExecuteQuery(ctx, query, doctorID, appointmentID)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	query := `INSERT INTO has_appointment (appt_id, doctor_id) VALUES ($1, $2)`

	if _, err := r.exec.ExecuteUpdate(ctx, query, assignment.AppointmentID, assignment.DoctorID); err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}
