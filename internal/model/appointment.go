package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusAvailable  AppointmentStatus = "AV"
	AppointmentStatusActive     AppointmentStatus = "AC"
	AppointmentStatusWaitlisted AppointmentStatus = "WL"
	AppointmentStatusPending    AppointmentStatus = "PA"
)

// Bookable reports whether a new booking may be made against the slot.
func (s AppointmentStatus) Bookable() bool {
	return s == AppointmentStatusAvailable || s == AppointmentStatusActive
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusAvailable, AppointmentStatusActive, AppointmentStatusWaitlisted, AppointmentStatusPending:
		return true
	}
	return false
}

func (s AppointmentStatus) Label() string {
	switch s {
	case AppointmentStatusAvailable:
		return "available"
	case AppointmentStatusActive:
		return "active"
	case AppointmentStatusWaitlisted:
		return "waitlisted"
	case AppointmentStatusPending:
		return "pending"
	}
	return "unknown"
}

type Appointment struct {
	ID       int               `db:"appnt_id" json:"appnt_id"`
	Date     time.Time         `db:"adate" json:"adate"`
	TimeSlot string            `db:"time_slot" json:"time_slot"`
	Status   AppointmentStatus `db:"status" json:"status"`
}

// DateString formats the appointment date the way users type it.
func (a *Appointment) DateString() string {
	return a.Date.Format("2006-01-02")
}

// Assignment links a doctor to an appointment they are responsible for
// (the has_appointment table).
type Assignment struct {
	AppointmentID int `db:"appt_id" json:"appt_id"`
	DoctorID      int `db:"doctor_id" json:"doctor_id"`
}

type CreateAppointmentRequest struct {
	Date     string `json:"adate" validate:"required,apptdate"`
	TimeSlot string `json:"time_slot" validate:"required,timeslot"`
	DoctorID int    `json:"doctor_id" validate:"gt=0"`
}

type BookAppointmentRequest struct {
	DoctorID      int `json:"doctor_id" validate:"gt=0"`
	AppointmentID int `json:"appnt_id" validate:"gt=0"`
}

type ListDoctorAppointmentsRequest struct {
	DoctorID  int    `json:"doctor_id" validate:"gt=0"`
	StartDate string `json:"start_date" validate:"required,apptdate"`
	EndDate   string `json:"end_date" validate:"required,apptdate"`
}

type ListDepartmentAppointmentsRequest struct {
	Department string `json:"department" validate:"required,max=32"`
	Date       string `json:"adate" validate:"required,apptdate"`
}

type AppointmentFilters struct {
	DoctorID  int
	StartDate time.Time
	EndDate   time.Time
	Statuses  []AppointmentStatus
}

// DoctorAppointment is an appointment together with its assigned doctor.
type DoctorAppointment struct {
	Appointment
	DoctorID   int    `db:"doctor_id" json:"doctor_id"`
	DoctorName string `db:"doctor_name" json:"doctor_name"`
}
