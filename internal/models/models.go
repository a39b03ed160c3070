package models

import "time"

// BookingDraft is the in-progress selection of one booking flow.
// A nil pointer means the field has not been chosen yet.
type BookingDraft struct {
	ServiceID     string  `json:"service_id"`
	PetID         *string `json:"pet_id"`
	EmployeeID    *string `json:"employee_id"`
	ScheduledDate *string `json:"scheduled_date"` // yyyy-MM-dd
	StartTime     *string `json:"start_time"`     // HH:mm
	CustomerNotes string  `json:"customer_notes"`
}

// NewBookingDraft returns the initial draft for a service.
func NewBookingDraft(serviceID string) BookingDraft {
	return BookingDraft{ServiceID: serviceID}
}

// Clone returns a copy that shares no pointers with d.
func (d BookingDraft) Clone() BookingDraft {
	d.PetID = cloneString(d.PetID)
	d.EmployeeID = cloneString(d.EmployeeID)
	d.ScheduledDate = cloneString(d.ScheduledDate)
	d.StartTime = cloneString(d.StartTime)
	return d
}

// CompleteBookingDraft is a draft whose selections are all present.
type CompleteBookingDraft struct {
	ServiceID     string
	PetID         string
	EmployeeID    string
	ScheduledDate string
	StartTime     string
	CustomerNotes string
}

// Request maps the draft onto the booking API payload field for field.
func (c CompleteBookingDraft) Request() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:     c.ServiceID,
		PetID:         c.PetID,
		EmployeeID:    c.EmployeeID,
		ScheduledDate: c.ScheduledDate,
		StartTime:     c.StartTime,
		CustomerNotes: c.CustomerNotes,
	}
}

// DraftState is the persisted form of one booking flow.
type DraftState struct {
	SessionID  string       `json:"session_id"`
	CustomerID string       `json:"customer_id"`
	Step       BookingStep  `json:"step"`
	Draft      BookingDraft `json:"draft"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
