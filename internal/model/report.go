package model

// StatusCount is one row of the per-doctor appointment status report.
type StatusCount struct {
	DoctorID   int               `db:"doctor_id" json:"doctor_id"`
	DoctorName string            `db:"doctor_name" json:"doctor_name"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Count      int               `db:"count" json:"count"`
}

// PatientCount is the number of patients a doctor has with a given status.
type PatientCount struct {
	DoctorID   int    `db:"doctor_id" json:"doctor_id"`
	DoctorName string `db:"doctor_name" json:"doctor_name"`
	Patients   int    `db:"patients" json:"patients"`
}
