package booking

import "pawcare/internal/models"

// EmployeesKey identifies one bookable-employees request.
type EmployeesKey struct {
	ServiceID string
	PetID     string
}

// SlotsKey identifies one available-slots request.
type SlotsKey struct {
	ServiceID  string
	EmployeeID string
	Date       string
}

// ShouldFetchEmployees is true once service and pet are chosen and the flow is
// on the employee step.
func (c *Controller) ShouldFetchEmployees() bool {
	return c.draft.ServiceID != "" && c.draft.PetID != nil && c.step == models.StepSelectEmployee
}

// ShouldFetchSlots is true once employee and date are chosen and the flow is on
// the datetime step.
func (c *Controller) ShouldFetchSlots() bool {
	return c.draft.EmployeeID != nil && c.draft.ScheduledDate != nil && c.step == models.StepSelectDateTime
}

// EmployeesKey returns the parameters for the employees request of the current draft.
func (c *Controller) EmployeesKey() (EmployeesKey, bool) {
	if c.draft.PetID == nil {
		return EmployeesKey{}, false
	}
	return EmployeesKey{ServiceID: c.draft.ServiceID, PetID: *c.draft.PetID}, true
}

// SlotsKey returns the parameters for the slots request of the current draft.
func (c *Controller) SlotsKey() (SlotsKey, bool) {
	if c.draft.EmployeeID == nil || c.draft.ScheduledDate == nil {
		return SlotsKey{}, false
	}
	return SlotsKey{
		ServiceID:  c.draft.ServiceID,
		EmployeeID: *c.draft.EmployeeID,
		Date:       *c.draft.ScheduledDate,
	}, true
}

type QueryStatus string

const (
	QueryIdle   QueryStatus = "idle"
	QueryReady  QueryStatus = "ready"
	QueryFailed QueryStatus = "failed"
)

// Query is the outcome of one fetch, tagged with the parameters it was issued for.
type Query[K comparable, V any] struct {
	Key    K
	Status QueryStatus
	Data   V
	Err    error
}

// Resolved builds a Query from a fetch result.
func Resolved[K comparable, V any](key K, data V, err error) Query[K, V] {
	if err != nil {
		return Query[K, V]{Key: key, Status: QueryFailed, Err: err}
	}
	return Query[K, V]{Key: key, Status: QueryReady, Data: data}
}

// For returns q when it was issued for key and an idle query otherwise, so a
// response for parameters the draft no longer holds is never shown.
func (q Query[K, V]) For(key K, ok bool) Query[K, V] {
	if !ok || q.Status == "" || q.Key != key {
		return Query[K, V]{Key: key, Status: QueryIdle}
	}
	return q
}

// Message is the error text of a failed query.
func (q Query[K, V]) Message() string {
	if q.Err == nil {
		return ""
	}
	return q.Err.Error()
}
