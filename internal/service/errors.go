package service

import "errors"

var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrRateLimited     = errors.New("too many booking attempts, try again later")
	ErrInvalidDate     = errors.New("scheduled date must be YYYY-MM-DD")
	ErrPastDate        = errors.New("cannot book in the past")
	ErrDateTooFar      = errors.New("date is too far in the future")
)
