package models

import "time"

// Booking and appointment statuses as reported by the provider backend.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// PaymentMethod identifies how the patient pays for the appointment.
// Only cash-at-clinic is currently accepted by the backend; the wizard keeps
// the field so that the payment step stays a pass-through until more methods
// exist.
type PaymentMethod string

const PaymentCash PaymentMethod = "cash"

// BookingRequest is the payload submitted to create an appointment.
type BookingRequest struct {
	DoctorID         string           `json:"doctor_id"`
	ConsultationType ConsultationType `json:"consultation_type"`
	StartsAt         time.Time        `json:"starts_at"`
	PaymentMethod    PaymentMethod    `json:"payment_method"`
	Notes            string           `json:"notes,omitempty"`
}

// BookingConfirmation is returned by the backend on successful submission.
type BookingConfirmation struct {
	AppointmentID    string `json:"appointment_id"`
	ConfirmationCode string `json:"confirmation_code"`
}

// Appointment is an existing appointment of a patient.
type Appointment struct {
	ID               string           `json:"id"`
	DoctorID         string           `json:"doctor_id"`
	DoctorName       string           `json:"doctor_name"`
	Specialty        string           `json:"specialty,omitempty"`
	ConsultationType ConsultationType `json:"consultation_type"`
	StartsAt         time.Time        `json:"starts_at"`
	EndsAt           time.Time        `json:"ends_at"`
	Status           string           `json:"status"`
	Notes            string           `json:"notes,omitempty"`
}
