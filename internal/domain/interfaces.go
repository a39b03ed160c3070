package domain

import (
	"context"
	"time"

	"pawcare/internal/models"
)

type DraftRepository interface {
	GetDraft(ctx context.Context, sessionID string) (*models.DraftState, error)
	SaveDraft(ctx context.Context, state *models.DraftState) error
	DeleteDraft(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Catalog is the marketplace data layer the booking flow reads from and submits to.
type Catalog interface {
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	GetUserPets(ctx context.Context, customerID string) ([]models.Pet, error)
	GetBookableEmployees(ctx context.Context, serviceID, petID string) ([]models.Employee, error)
	GetAvailableSlots(ctx context.Context, serviceID, employeeID, date string) ([]models.Slot, error)
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingConfirmation, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
