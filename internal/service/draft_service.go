package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pawcare/internal/booking"
	"pawcare/internal/calendar"
	"pawcare/internal/domain"
	"pawcare/internal/events"
	"pawcare/internal/metrics"
	"pawcare/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options tune DraftService behavior.
type Options struct {
	MaxBookingDays int
	SubmitLimit    int
	SubmitWindow   time.Duration
	Summary        booking.SummaryFormat
}

// DraftService runs booking flows keyed by session. Each operation loads the
// flow, applies one controller call under the session lock and persists it.
type DraftService struct {
	repo     domain.DraftRepository
	catalog  domain.Catalog
	eventBus domain.EventPublisher
	opts     Options
	logger   *zerolog.Logger
	now      func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock is dropped from the map once nobody holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewDraftService(repo domain.DraftRepository, catalog domain.Catalog, eventBus domain.EventPublisher, opts Options, logger *zerolog.Logger) *DraftService {
	if opts.MaxBookingDays <= 0 {
		opts.MaxBookingDays = models.DefaultMaxBookingDays
	}
	defaults := booking.DefaultSummaryFormat()
	if opts.Summary.CurrencySymbol == "" {
		opts.Summary.CurrencySymbol = defaults.CurrencySymbol
	}
	if opts.Summary.DateLayout == "" {
		opts.Summary.DateLayout = defaults.DateLayout
	}
	return &DraftService{
		repo:     repo,
		catalog:  catalog,
		eventBus: eventBus,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sessionLock),
	}
}

func (s *DraftService) lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.locksMu.Unlock()
	}
}

// Start opens a new booking flow for customerID and serviceID.
func (s *DraftService) Start(ctx context.Context, customerID, serviceID string) (*View, error) {
	c := booking.NewController(serviceID)
	state := &models.DraftState{
		SessionID:  uuid.NewString(),
		CustomerID: customerID,
	}
	if err := s.save(ctx, state, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", state.SessionID).
		Str("customer_id", customerID).
		Str("service_id", serviceID).
		Msg("booking flow started")
	s.publish(events.EventDraftStarted, state, "", "")

	return s.View(ctx, state.SessionID)
}

func (s *DraftService) SelectPet(ctx context.Context, sessionID, petID string) (*View, error) {
	return s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.SelectPet(petID)
		return nil
	})
}

func (s *DraftService) SelectEmployee(ctx context.Context, sessionID, employeeID string) (*View, error) {
	return s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.SelectEmployee(employeeID)
		return nil
	})
}

// SelectScheduledDate rejects dates outside the booking window before touching the draft.
func (s *DraftService) SelectScheduledDate(ctx context.Context, sessionID, date string) (*View, error) {
	if err := s.ValidateBookingDate(date); err != nil {
		return nil, err
	}
	return s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.SelectScheduledDate(date)
		return nil
	})
}

func (s *DraftService) SelectStartTime(ctx context.Context, sessionID, startTime string) (*View, error) {
	return s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.SelectStartTime(startTime)
		return nil
	})
}

func (s *DraftService) UpdateCustomerNotes(ctx context.Context, sessionID, notes string) (*View, error) {
	return s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.UpdateCustomerNotes(notes)
		return nil
	})
}

// Next advances the flow and reports whether the guard let it move.
func (s *DraftService) Next(ctx context.Context, sessionID string) (bool, *View, error) {
	var advanced bool
	view, err := s.apply(ctx, sessionID, func(c *booking.Controller) error {
		from := c.Step()
		advanced = c.GoToNextStep()
		if advanced {
			metrics.IncStepTransition(string(from), string(c.Step()))
		} else if !c.IsLastStep() {
			metrics.IncGuardRejection(string(from))
		}
		return nil
	})
	return advanced, view, err
}

// Back moves one step back and reports whether the step changed.
func (s *DraftService) Back(ctx context.Context, sessionID string) (bool, *View, error) {
	var moved bool
	view, err := s.apply(ctx, sessionID, func(c *booking.Controller) error {
		from := c.Step()
		moved = c.GoToPreviousStep()
		if moved {
			metrics.IncStepTransition(string(from), string(c.Step()))
		}
		return nil
	})
	return moved, view, err
}

func (s *DraftService) Reset(ctx context.Context, sessionID string) (*View, error) {
	view, err := s.apply(ctx, sessionID, func(c *booking.Controller) error {
		c.ResetDraft()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(events.EventDraftReset, &models.DraftState{SessionID: sessionID, CustomerID: view.CustomerID, Draft: view.Draft}, "", "")
	return view, nil
}

// Cancel drops the flow.
func (s *DraftService) Cancel(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDraft(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete draft")
		return err
	}

	s.publish(events.EventDraftCancelled, state, "", "")
	return nil
}

// Submit sends the draft to the catalog once. Failures leave the flow as it was;
// success resets it to the first step.
func (s *DraftService) Submit(ctx context.Context, sessionID string) (*booking.SubmitResult, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Incomplete drafts never reach the catalog and do not count against the limit.
	if !booking.IsCompleteCreateBookingDraft(state.Draft) {
		metrics.IncSubmission("incomplete")
		return nil, booking.ErrIncompleteDraft
	}

	if s.opts.SubmitLimit > 0 {
		allowed, err := s.repo.CheckRateLimit(ctx, "submit:"+state.CustomerID, s.opts.SubmitLimit, s.opts.SubmitWindow)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("submit rate limit check failed")
		} else if !allowed {
			metrics.IncSubmission("throttled")
			return nil, ErrRateLimited
		}
	}

	c := booking.Restore(state.Step, state.Draft)
	submitted := c.Draft()

	result, err := c.Submit(ctx, s.catalog)
	if err != nil {
		var subErr *booking.SubmissionError
		switch {
		case errors.As(err, &subErr):
			metrics.IncSubmission("rejected")
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("booking submission failed")
			rejected := *state
			rejected.Draft = submitted
			s.publish(events.EventBookingRejected, &rejected, "", subErr.Message)
		case errors.Is(err, booking.ErrIncompleteDraft):
			metrics.IncSubmission("incomplete")
		default:
			metrics.IncSubmission("invalid")
		}
		return nil, err
	}

	if err := s.save(ctx, state, c); err != nil {
		// The booking exists remotely; only the local reset was lost.
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to reset draft after submission")
	}

	metrics.IncSubmission("created")
	s.logger.Info().
		Str("session_id", sessionID).
		Str("booking_id", bookingID(result)).
		Msg("booking submitted")

	submittedState := *state
	submittedState.Draft = submitted
	s.publish(events.EventBookingSubmitted, &submittedState, bookingID(result), "")

	return result, nil
}

// ValidateBookingDate checks the YYYY-MM-DD date against the booking window.
func (s *DraftService) ValidateBookingDate(date string) error {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return ErrInvalidDate
	}

	window := calendar.NewWindow(s.now(), s.opts.MaxBookingDays)
	if d.Before(window.From) {
		return ErrPastDate
	}
	if d.After(window.To) {
		return ErrDateTooFar
	}
	return nil
}

func (s *DraftService) apply(ctx context.Context, sessionID string, fn func(c *booking.Controller) error) (*View, error) {
	if err := s.applyLocked(ctx, sessionID, fn); err != nil {
		return nil, err
	}
	return s.View(ctx, sessionID)
}

func (s *DraftService) applyLocked(ctx context.Context, sessionID string, fn func(c *booking.Controller) error) error {
	unlock := s.lock(sessionID)
	defer unlock()

	state, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	c := booking.Restore(state.Step, state.Draft)
	if err := fn(c); err != nil {
		return err
	}
	return s.save(ctx, state, c)
}

func (s *DraftService) load(ctx context.Context, sessionID string) (*models.DraftState, error) {
	state, err := s.repo.GetDraft(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to load draft")
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

func (s *DraftService) save(ctx context.Context, state *models.DraftState, c *booking.Controller) error {
	state.Step = c.Step()
	state.Draft = c.Draft()
	state.UpdatedAt = s.now()
	if err := s.repo.SaveDraft(ctx, state); err != nil {
		s.logger.Error().Err(err).Str("session_id", state.SessionID).Msg("failed to save draft")
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *DraftService) publish(eventType string, state *models.DraftState, bookingID, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.DraftEventPayload{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		ServiceID:  state.Draft.ServiceID,
		BookingID:  bookingID,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if state.Draft.PetID != nil {
		payload.PetID = *state.Draft.PetID
	}
	if state.Draft.EmployeeID != nil {
		payload.EmployeeID = *state.Draft.EmployeeID
	}
	if state.Draft.ScheduledDate != nil {
		payload.ScheduledDate = *state.Draft.ScheduledDate
	}
	if state.Draft.StartTime != nil {
		payload.StartTime = *state.Draft.StartTime
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("session_id", state.SessionID).Msg("publish event error")
	}
}

func bookingID(result *booking.SubmitResult) string {
	if result == nil || result.Booking == nil {
		return ""
	}
	return result.Booking.ID
}
