package booking

import (
	"fmt"
	"time"

	"pawcare/internal/models"

	"github.com/dustin/go-humanize"
)

// SummaryFormat controls display strings of a Summary.
type SummaryFormat struct {
	CurrencySymbol string
	DateLayout     string
}

// DefaultSummaryFormat is used when no format is configured.
func DefaultSummaryFormat() SummaryFormat {
	return SummaryFormat{
		CurrencySymbol: models.DefaultCurrencySymbol,
		DateLayout:     models.DefaultSummaryDateLayout,
	}
}

// Summary is the read-only confirmation view of a draft.
type Summary struct {
	Service         *models.Service  `json:"service,omitempty"`
	Pet             *models.Pet      `json:"pet,omitempty"`
	Employee        *models.Employee `json:"employee,omitempty"`
	Slot            *models.Slot     `json:"slot,omitempty"`
	DateText        string           `json:"date_text"`
	TimeText        string           `json:"time_text"`
	Price           float64          `json:"price"`
	PriceText       string           `json:"price_text"`
	DurationMinutes int              `json:"duration_minutes"`
	DurationText    string           `json:"duration_text"`
	CustomerNotes   string           `json:"customer_notes"`
}

// Summarize projects draft onto the supplied reference data. It never fetches
// and never fails: entities that cannot be resolved stay nil.
func Summarize(
	draft models.BookingDraft,
	service *models.Service,
	pets []models.Pet,
	employees []models.Employee,
	slots []models.Slot,
	format SummaryFormat,
) Summary {
	s := Summary{CustomerNotes: draft.CustomerNotes}

	if service != nil && service.ID == draft.ServiceID {
		svc := *service
		s.Service = &svc
		s.Price = svc.Price
		s.PriceText = formatPrice(svc.Price, format.CurrencySymbol)
		s.DurationMinutes = svc.Duration
		if svc.Duration > 0 {
			s.DurationText = fmt.Sprintf("%d min", svc.Duration)
		}
	}

	if draft.PetID != nil {
		for i := range pets {
			if pets[i].ID == *draft.PetID {
				pet := pets[i]
				s.Pet = &pet
				break
			}
		}
	}

	if draft.EmployeeID != nil {
		for i := range employees {
			if employees[i].ID == *draft.EmployeeID {
				emp := employees[i]
				s.Employee = &emp
				break
			}
		}
	}

	if draft.ScheduledDate != nil {
		s.DateText = formatDate(*draft.ScheduledDate, format.DateLayout)
	}

	if draft.StartTime != nil {
		for i := range slots {
			if slots[i].StartTime == *draft.StartTime {
				slot := slots[i]
				s.Slot = &slot
				break
			}
		}
		s.TimeText = formatTimeRange(*draft.StartTime, s.Slot, s.DurationMinutes)
	}

	return s
}

func formatPrice(price float64, symbol string) string {
	return symbol + humanize.FormatFloat("#,###.##", price)
}

func formatDate(date, layout string) string {
	if layout == "" {
		layout = models.DefaultSummaryDateLayout
	}
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(layout)
}

func formatTimeRange(start string, slot *models.Slot, durationMinutes int) string {
	if slot != nil && slot.EndTime != "" {
		return start + "-" + slot.EndTime
	}
	if durationMinutes <= 0 {
		return start
	}
	t, err := time.Parse(models.TimeLayout, start)
	if err != nil {
		return start
	}
	return start + "-" + t.Add(time.Duration(durationMinutes)*time.Minute).Format(models.TimeLayout)
}
