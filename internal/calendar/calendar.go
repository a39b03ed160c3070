package calendar

import (
	"time"

	"pawcare/internal/models"
)

// Day is one cell of a month grid.
type Day struct {
	Date       string `json:"date"` // YYYY-MM-DD
	Day        int    `json:"day"`
	InMonth    bool   `json:"in_month"`
	Selectable bool   `json:"selectable"`
}

// Month is a Monday-first grid of whole weeks covering one month.
type Month struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Weeks [][]Day `json:"weeks"`
}

// Window bounds the dates a customer may book, inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow returns the booking window starting on the day of now and lasting maxDays.
func NewWindow(now time.Time, maxDays int) Window {
	from := startOfDay(now)
	return Window{From: from, To: from.AddDate(0, 0, maxDays)}
}

// Contains reports whether date falls inside the window.
func (w Window) Contains(date time.Time) bool {
	d := startOfDay(date)
	return !d.Before(w.From) && !d.After(w.To)
}

// WeekRange returns Monday and Sunday of the week containing date.
func WeekRange(date time.Time) (time.Time, time.Time) {
	d := startOfDay(date)
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// MonthMatrix builds the grid for year/month. Leading and trailing cells come
// from the adjacent months and have InMonth=false. Selectable marks in-month
// days inside window.
func MonthMatrix(year int, month time.Month, window Window) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start, _ := WeekRange(first)
	_, end := WeekRange(last)

	m := Month{Year: year, Month: int(month)}
	week := make([]Day, 0, 7)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		inMonth := d.Month() == month
		week = append(week, Day{
			Date:       d.Format(models.DateLayout),
			Day:        d.Day(),
			InMonth:    inMonth,
			Selectable: inMonth && window.Contains(d),
		})
		if len(week) == 7 {
			m.Weeks = append(m.Weeks, week)
			week = make([]Day, 0, 7)
		}
	}
	return m
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
