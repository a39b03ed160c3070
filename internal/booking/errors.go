package booking

import (
	"errors"
	"fmt"
)

var ErrIncompleteDraft = errors.New("booking draft is incomplete: pet, employee, date and time are required")

// SubmissionError is returned when the booking API rejects a submission.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("create booking: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
