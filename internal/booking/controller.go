package booking

import (
	"context"
	"errors"

	"pawcare/internal/models"
	"pawcare/internal/validation"
)

// BookingCreator issues the booking creation call.
type BookingCreator interface {
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingConfirmation, error)
}

// SubmitResult is returned by a successful submission.
type SubmitResult struct {
	Booking *models.BookingConfirmation `json:"booking"`
	// Navigate tells the caller to leave the booking flow.
	Navigate bool `json:"navigate"`
}

// Controller owns one booking flow: the current step and the draft.
// It is not safe for concurrent use.
type Controller struct {
	step  models.BookingStep
	draft models.BookingDraft
}

// NewController starts a flow for serviceID at the first step.
func NewController(serviceID string) *Controller {
	return &Controller{
		step:  models.StepSelectPet,
		draft: models.NewBookingDraft(serviceID),
	}
}

// Restore rebuilds a controller from persisted state. Unknown steps fall back
// to select_pet and downstream selections without their prerequisite are dropped.
func Restore(step models.BookingStep, draft models.BookingDraft) *Controller {
	if !ValidStep(step) {
		step = models.StepSelectPet
	}
	d := draft.Clone()
	if d.EmployeeID == nil {
		d.ScheduledDate = nil
		d.StartTime = nil
	}
	if d.ScheduledDate == nil {
		d.StartTime = nil
	}
	return &Controller{step: step, draft: d}
}

func (c *Controller) Step() models.BookingStep {
	return c.step
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() models.BookingDraft {
	return c.draft.Clone()
}

func (c *Controller) SelectPet(petID string) {
	c.draft.PetID = models.StringPtr(petID)
}

// SelectEmployee sets the employee and clears date and time, since availability
// is per employee.
func (c *Controller) SelectEmployee(employeeID string) {
	c.draft.EmployeeID = models.StringPtr(employeeID)
	c.draft.ScheduledDate = nil
	c.draft.StartTime = nil
}

// SelectScheduledDate sets the date and clears the time slot.
func (c *Controller) SelectScheduledDate(date string) {
	c.draft.ScheduledDate = models.StringPtr(date)
	c.draft.StartTime = nil
}

func (c *Controller) SelectStartTime(startTime string) {
	c.draft.StartTime = models.StringPtr(startTime)
}

func (c *Controller) UpdateCustomerNotes(notes string) {
	c.draft.CustomerNotes = notes
}

// GoToNextStep advances when the current step's guard passes and reports
// whether the step changed.
func (c *Controller) GoToNextStep() bool {
	if !CanProceedToNextStep(c.step, c.draft) {
		return false
	}
	next := steps[c.step].next
	moved := next != c.step
	c.step = next
	return moved
}

// GoToPreviousStep moves one step back. Selections are kept.
func (c *Controller) GoToPreviousStep() bool {
	t, ok := steps[c.step]
	if !ok {
		c.step = models.StepSelectPet
		return true
	}
	moved := t.prev != c.step
	c.step = t.prev
	return moved
}

func (c *Controller) CanGoNext() bool {
	return CanProceedToNextStep(c.step, c.draft)
}

func (c *Controller) CanGoBack() bool {
	return c.step != models.StepSelectPet
}

func (c *Controller) IsLastStep() bool {
	return c.step == models.StepConfirm
}

// ResetDraft restores the initial draft for the same service and returns to select_pet.
func (c *Controller) ResetDraft() {
	c.draft = models.NewBookingDraft(c.draft.ServiceID)
	c.step = models.StepSelectPet
}

// Submit sends the completed draft to creator. An incomplete draft returns
// ErrIncompleteDraft without calling creator. On success the flow is reset; on
// failure state is left as it was.
func (c *Controller) Submit(ctx context.Context, creator BookingCreator) (*SubmitResult, error) {
	complete, ok := CompleteDraft(c.draft)
	if !ok {
		return nil, ErrIncompleteDraft
	}

	req := complete.Request()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	confirmation, err := creator.CreateBooking(ctx, req)
	if err != nil {
		return nil, &SubmissionError{Message: userMessage(err), Err: err}
	}

	c.ResetDraft()
	return &SubmitResult{Booking: confirmation, Navigate: true}, nil
}

// userMessager is implemented by remote errors that carry a server-reported message.
type userMessager interface {
	UserMessage() string
}

func userMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
