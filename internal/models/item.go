package models

type Service struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Duration int      `json:"duration"` // minutes
	Images   []string `json:"images"`
}

type Pet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Image string `json:"image"`
}

type Employee struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	Rating      float64  `json:"rating"`
	Specialties []string `json:"specialties"`
}

// Slot is a bookable interval of one employee on one date.
type Slot struct {
	StartTime string `json:"start_time"` // HH:mm
	EndTime   string `json:"end_time"`   // HH:mm
	Available bool   `json:"available"`
}
