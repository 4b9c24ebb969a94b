package domain

import "time"

// Slot is a derived candidate start time inside a barber's working window.
// It is recomputed on every availability query and never stored.
type Slot struct {
	StartTime       time.Time
	DurationMinutes int
	Available       bool
}

// EndTime returns the exclusive end of the slot
func (s *Slot) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
