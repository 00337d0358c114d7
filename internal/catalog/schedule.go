package catalog

import (
	"slices"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	DefaultTimeSlot = "18:30"
	BookingWindow   = 14
)

var timeSlots = []string{"06:30", "07:30", "09:00", "12:30", "17:30", "18:30", "19:30"}

// TimeSlots returns the daily start times a class can be booked at.
func TimeSlots() []string {
	return slices.Clone(timeSlots)
}

func IsTimeSlot(s string) bool {
	return slices.Contains(timeSlots, s)
}

// UpcomingDays returns n consecutive calendar days starting with the day of from.
func UpcomingDays(from time.Time, n int) []time.Time {
	if n < 0 {
		n = 0
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
