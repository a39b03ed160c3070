package booking

import "pawcare/internal/models"

type transition struct {
	next models.BookingStep
	prev models.BookingStep
}

// steps is the wizard's transition table. Forward from confirm and back from
// select_pet stay in place.
var steps = map[models.BookingStep]transition{
	models.StepSelectPet:      {next: models.StepSelectEmployee, prev: models.StepSelectPet},
	models.StepSelectEmployee: {next: models.StepSelectDateTime, prev: models.StepSelectPet},
	models.StepSelectDateTime: {next: models.StepConfirm, prev: models.StepSelectEmployee},
	models.StepConfirm:        {next: models.StepConfirm, prev: models.StepSelectDateTime},
}

// Steps lists the wizard steps in order.
func Steps() []models.BookingStep {
	return []models.BookingStep{
		models.StepSelectPet,
		models.StepSelectEmployee,
		models.StepSelectDateTime,
		models.StepConfirm,
	}
}

// ValidStep reports whether s is a known step.
func ValidStep(s models.BookingStep) bool {
	_, ok := steps[s]
	return ok
}

// CanProceedToNextStep is the forward guard of step for the given draft.
func CanProceedToNextStep(step models.BookingStep, draft models.BookingDraft) bool {
	switch step {
	case models.StepSelectPet:
		return draft.PetID != nil
	case models.StepSelectEmployee:
		return draft.EmployeeID != nil
	case models.StepSelectDateTime:
		return draft.ScheduledDate != nil && draft.StartTime != nil
	case models.StepConfirm:
		return true
	default:
		return false
	}
}

// IsCompleteCreateBookingDraft reports whether every selection required for submission is present.
func IsCompleteCreateBookingDraft(draft models.BookingDraft) bool {
	return draft.PetID != nil &&
		draft.EmployeeID != nil &&
		draft.ScheduledDate != nil &&
		draft.StartTime != nil
}

// CompleteDraft narrows draft to a CompleteBookingDraft.
func CompleteDraft(draft models.BookingDraft) (models.CompleteBookingDraft, bool) {
	if !IsCompleteCreateBookingDraft(draft) {
		return models.CompleteBookingDraft{}, false
	}
	return models.CompleteBookingDraft{
		ServiceID:     draft.ServiceID,
		PetID:         *draft.PetID,
		EmployeeID:    *draft.EmployeeID,
		ScheduledDate: *draft.ScheduledDate,
		StartTime:     *draft.StartTime,
		CustomerNotes: draft.CustomerNotes,
	}, true
}
