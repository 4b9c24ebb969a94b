package domain

// Service represents a bookable barbershop service
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
}

// IsBookable returns true if the service can be offered for new bookings
func (s *Service) IsBookable() bool {
	return s.Active && s.DurationMinutes > 0
}
