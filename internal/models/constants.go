package models

// BookingStep is one stage of the booking wizard.
type BookingStep string

const (
	StepSelectPet      BookingStep = "select_pet"
	StepSelectEmployee BookingStep = "select_employee"
	StepSelectDateTime BookingStep = "select_datetime"
	StepConfirm        BookingStep = "confirm"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

const (
	// DefaultDraftTTL время жизни черновика в хранилище
	DefaultDraftTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultMaxBookingDays горизонт записи вперёд
	DefaultMaxBookingDays = 60

	// CatalogCacheTTL время жизни кэша ответов каталога
	CatalogCacheTTL = 60 // секунды

	// DefaultCurrencySymbol префикс цены в сводке
	DefaultCurrencySymbol = "$"

	// DefaultSummaryDateLayout формат даты в сводке
	DefaultSummaryDateLayout = "Monday, 02 Jan 2006"
)
