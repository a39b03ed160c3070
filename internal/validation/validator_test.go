package validation

import (
	"errors"
	"testing"

	"pawcare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CreateBookingRequest(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := models.CreateBookingRequest{
			ServiceID:     "s1",
			PetID:         "p1",
			EmployeeID:    "e1",
			ScheduledDate: "2025-06-01",
			StartTime:     "09:00",
		}
		assert.Nil(t, Validate(req))
		assert.NoError(t, Struct(req))
	})

	t.Run("BadFormats", func(t *testing.T) {
		req := models.CreateBookingRequest{
			ServiceID:     "s1",
			ScheduledDate: "01/06/2025",
			StartTime:     "9am",
		}
		fields := Validate(req)
		require.NotNil(t, fields)
		assert.Contains(t, fields, "scheduled_date")
		assert.Contains(t, fields, "start_time")
		assert.NotContains(t, fields, "pet_id")
	})

	t.Run("MissingService", func(t *testing.T) {
		err := Struct(models.CreateBookingRequest{ScheduledDate: "2025-06-01", StartTime: "09:00"})
		require.Error(t, err)

		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "This field is required", verr.Fields["service_id"])
		assert.Contains(t, err.Error(), "service_id")
	})
}
