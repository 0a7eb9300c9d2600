package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
)

const appointmentColumns = `a.appnt_id, a.adate, COALESCE(a.time_slot, '') AS time_slot, COALESCE(a.status::text, '') AS status`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointment (appnt_id, adate, time_slot, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.exec.ExecuteUpdate(ctx, query,
		appointment.ID,
		appointment.Date,
		appointment.TimeSlot,
		string(appointment.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int) (*model.Appointment, error) {
	return r.get(ctx, id, "")
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, id int) (*model.Appointment, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *appointmentRepository) get(ctx context.Context, id int, suffix string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointment a WHERE a.appnt_id = $1` + suffix

	var appointment model.Appointment
	if err := r.exec.Get(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int, status model.AppointmentStatus) error {
	query := `UPDATE appointment SET status = $1 WHERE appnt_id = $2`

	rows, err := r.exec.ExecuteUpdate(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointment a
		JOIN has_appointment h ON h.appt_id = a.appnt_id
		WHERE 1 = 1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID > 0 {
			query += fmt.Sprintf(" AND h.doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND a.adate >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND a.adate <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
		if len(filters.Statuses) > 0 {
			statuses := make([]string, len(filters.Statuses))
			for i, s := range filters.Statuses {
				statuses[i] = string(s)
			}
			query += fmt.Sprintf(" AND a.status::text = ANY($%d)", argCount)
			args = append(args, pq.Array(statuses))
			argCount++
		}
	}

	query += " ORDER BY a.adate ASC, a.time_slot ASC, a.appnt_id ASC"

	appointments := []*model.Appointment{}
	if err := r.exec.Select(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListAvailableByDepartment(ctx context.Context, department string, date time.Time) ([]*model.DoctorAppointment, error) {
	query := `
		SELECT ` + appointmentColumns + `, d.doctor_id, d.name AS doctor_name
		FROM appointment a
		JOIN has_appointment h ON h.appt_id = a.appnt_id
		JOIN doctor d ON d.doctor_id = h.doctor_id
		JOIN department dp ON dp.dept_id = d.did
		WHERE dp.name = $1 AND a.adate = $2 AND a.status = 'AV'
		ORDER BY a.time_slot ASC, d.doctor_id ASC
	`
	appointments := []*model.DoctorAppointment{}
	if err := r.exec.Select(ctx, &appointments, query, department, date); err != nil {
		return nil, fmt.Errorf("failed to list department appointments: %w", err)
	}
	return appointments, nil
}
