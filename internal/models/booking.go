package models

import "time"

// CreateBookingRequest is the payload sent to the booking API when a draft is submitted.
type CreateBookingRequest struct {
	ServiceID     string `json:"service_id" validate:"required"`
	PetID         string `json:"pet_id"`
	EmployeeID    string `json:"employee_id"`
	ScheduledDate string `json:"scheduled_date" validate:"datetime=2006-01-02"`
	StartTime     string `json:"start_time" validate:"datetime=15:04"`
	CustomerNotes string `json:"customer_notes" validate:"max=1000"`
}

// BookingConfirmation is what the booking API returns for a created booking.
type BookingConfirmation struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	ServiceID     string    `json:"service_id"`
	PetID         string    `json:"pet_id"`
	EmployeeID    string    `json:"employee_id"`
	ScheduledDate string    `json:"scheduled_date"`
	StartTime     string    `json:"start_time"`
	CreatedAt     time.Time `json:"created_at"`
}
