package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types written by the booking workflow.
const (
	EventAppointmentBooked     = "appointment.booked"
	EventAppointmentWaitlisted = "appointment.waitlisted"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// BookingEvent is the payload of both booking event types.
type BookingEvent struct {
	DoctorID              int               `json:"doctor_id"`
	AppointmentID         int               `json:"appnt_id"`
	OriginalAppointmentID int               `json:"original_appnt_id"`
	PatientID             int               `json:"patient_id"`
	Date                  string            `json:"adate"`
	TimeSlot              string            `json:"time_slot"`
	Status                AppointmentStatus `json:"status"`
}
