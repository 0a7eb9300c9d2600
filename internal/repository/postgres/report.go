package postgres

import (
	"context"
	"fmt"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
)

func (r *reportRepository) StatusCountsPerDoctor(ctx context.Context) ([]*model.StatusCount, error) {
	query := `
		SELECT d.doctor_id, COALESCE(d.name, '') AS doctor_name, a.status::text AS status, COUNT(*) AS count
		FROM doctor d
		JOIN has_appointment h ON h.doctor_id = d.doctor_id
		JOIN appointment a ON a.appnt_id = h.appt_id
		WHERE a.status IS NOT NULL
		GROUP BY d.doctor_id, d.name, a.status
		ORDER BY count DESC, d.doctor_id ASC, status ASC
	`
	counts := []*model.StatusCount{}
	if err := r.exec.Select(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count appointments per doctor: %w", err)
	}
	return counts, nil
}

// PatientCountsPerDoctor counts distinct patients per doctor whose
// appointments have the given status. Patients reach appointments through
// the searches table.
func (r *reportRepository) PatientCountsPerDoctor(ctx context.Context, status model.AppointmentStatus) ([]*model.PatientCount, error) {
	query := `
		SELECT d.doctor_id, COALESCE(d.name, '') AS doctor_name, COUNT(DISTINCT s.pid) AS patients
		FROM doctor d
		JOIN has_appointment h ON h.doctor_id = d.doctor_id
		JOIN appointment a ON a.appnt_id = h.appt_id
		JOIN searches s ON s.aid = a.appnt_id
		WHERE a.status = $1
		GROUP BY d.doctor_id, d.name
		ORDER BY patients DESC, d.doctor_id ASC
	`
	counts := []*model.PatientCount{}
	if err := r.exec.Select(ctx, &counts, query, string(status)); err != nil {
		return nil, fmt.Errorf("failed to count patients per doctor: %w", err)
	}
	return counts, nil
}
