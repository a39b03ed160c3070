package service

import (
	"context"
	"sync"
	"time"

	"pawcare/internal/booking"
	"pawcare/internal/calendar"
	"pawcare/internal/metrics"
	"pawcare/internal/models"
)

// QueryView is the client-facing form of one fetch.
type QueryView[T any] struct {
	Status booking.QueryStatus `json:"status"`
	Data   T                   `json:"data"`
	Error  string              `json:"error,omitempty"`
}

func queryView[K comparable, T any](q booking.Query[K, T]) QueryView[T] {
	return QueryView[T]{Status: q.Status, Data: q.Data, Error: q.Message()}
}

// View is everything a client needs to render the current step.
type View struct {
	SessionID  string                       `json:"session_id"`
	CustomerID string                       `json:"customer_id"`
	Step       models.BookingStep           `json:"step"`
	Draft      models.BookingDraft          `json:"draft"`
	CanGoNext  bool                         `json:"can_go_next"`
	CanGoBack  bool                         `json:"can_go_back"`
	IsLastStep bool                         `json:"is_last_step"`
	Summary    booking.Summary              `json:"summary"`
	Service    QueryView[*models.Service]   `json:"service"`
	Pets       QueryView[[]models.Pet]      `json:"pets"`
	Employees  QueryView[[]models.Employee] `json:"employees"`
	Slots      QueryView[[]models.Slot]     `json:"slots"`
	Calendar   *calendar.Month              `json:"calendar,omitempty"`
}

type fetched struct {
	service   booking.Query[string, *models.Service]
	pets      booking.Query[string, []models.Pet]
	employees booking.Query[booking.EmployeesKey, []models.Employee]
	slots     booking.Query[booking.SlotsKey, []models.Slot]
}

// View assembles the current step. Catalog calls run without the session lock;
// results whose parameters no longer match the draft are dropped.
func (s *DraftService) View(ctx context.Context, sessionID string) (*View, error) {
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := s.fetch(ctx, state)

	current, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.assemble(current, res), nil
}

func (s *DraftService) fetch(ctx context.Context, state *models.DraftState) fetched {
	c := booking.Restore(state.Step, state.Draft)
	serviceID := state.Draft.ServiceID

	var (
		res fetched
		wg  sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		svc, err := s.catalog.GetService(ctx, serviceID)
		res.service = booking.Resolved(serviceID, svc, err)
	}()
	go func() {
		defer wg.Done()
		pets, err := s.catalog.GetUserPets(ctx, state.CustomerID)
		res.pets = booking.Resolved(state.CustomerID, pets, err)
	}()

	// The confirm step resolves its summary from the same employee and slot data.
	if key, ok := c.EmployeesKey(); ok && (c.ShouldFetchEmployees() || c.IsLastStep()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			employees, err := s.catalog.GetBookableEmployees(ctx, key.ServiceID, key.PetID)
			res.employees = booking.Resolved(key, employees, err)
		}()
	}
	if key, ok := c.SlotsKey(); ok && (c.ShouldFetchSlots() || c.IsLastStep()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots, err := s.catalog.GetAvailableSlots(ctx, key.ServiceID, key.EmployeeID, key.Date)
			res.slots = booking.Resolved(key, slots, err)
		}()
	}

	wg.Wait()

	for _, status := range []booking.QueryStatus{res.service.Status, res.pets.Status, res.employees.Status, res.slots.Status} {
		if status == booking.QueryFailed {
			s.logger.Warn().Str("session_id", state.SessionID).Msg("catalog fetch failed")
			break
		}
	}
	return res
}

func (s *DraftService) assemble(state *models.DraftState, res fetched) *View {
	c := booking.Restore(state.Step, state.Draft)
	draft := c.Draft()

	service := res.service.For(draft.ServiceID, true)
	pets := res.pets.For(state.CustomerID, true)

	empKey, empOK := c.EmployeesKey()
	employees := res.employees.For(empKey, empOK)
	if res.employees.Status != "" && employees.Status == booking.QueryIdle {
		metrics.IncStaleResult("employees")
	}

	slotKey, slotOK := c.SlotsKey()
	slots := res.slots.For(slotKey, slotOK)
	if res.slots.Status != "" && slots.Status == booking.QueryIdle {
		metrics.IncStaleResult("slots")
	}

	view := &View{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Step:       c.Step(),
		Draft:      draft,
		CanGoNext:  c.CanGoNext(),
		CanGoBack:  c.CanGoBack(),
		IsLastStep: c.IsLastStep(),
		Summary:    booking.Summarize(draft, service.Data, pets.Data, employees.Data, slots.Data, s.opts.Summary),
		Service:    queryView(service),
		Pets:       queryView(pets),
	}

	if c.ShouldFetchEmployees() {
		view.Employees = queryView(employees)
	} else {
		view.Employees = QueryView[[]models.Employee]{Status: booking.QueryIdle}
	}
	if c.ShouldFetchSlots() {
		view.Slots = queryView(slots)
	} else {
		view.Slots = QueryView[[]models.Slot]{Status: booking.QueryIdle}
	}

	if c.Step() == models.StepSelectDateTime {
		month := s.calendarMonth(draft)
		view.Calendar = &month
	}
	return view
}

func (s *DraftService) calendarMonth(draft models.BookingDraft) calendar.Month {
	ref := s.now()
	if draft.ScheduledDate != nil {
		if d, err := time.Parse(models.DateLayout, *draft.ScheduledDate); err == nil {
			ref = d
		}
	}
	window := calendar.NewWindow(s.now(), s.opts.MaxBookingDays)
	return calendar.MonthMatrix(ref.Year(), ref.Month(), window)
}
