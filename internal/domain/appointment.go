package domain

import "time"

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "BOOKED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// transitions lists the allowed target states for every source state.
// COMPLETED and CANCELLED are terminal.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusBooked: {StatusCompleted, StatusCancelled},
}

// Appointment represents a client's reservation of a barber for one service
type Appointment struct {
	ID        int64
	BarberID  int64
	ServiceID int64
	ClientID  int64
	StartTime time.Time
	// DurationMinutes is copied from the service at creation so later
	// service edits do not move existing reservations
	DurationMinutes int
	Status          AppointmentStatus
	Note            *string

	CompletedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime returns the exclusive end of the reserved interval
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Occupies returns true if the appointment holds its interval on the barber's agenda
func (a *Appointment) Occupies() bool {
	return a.Status.Occupies()
}

// Occupies returns true for statuses that reserve time
func (s AppointmentStatus) Occupies() bool {
	return s == StatusBooked || s == StatusCompleted
}

// IsTerminal returns true if no transition out of the status exists
func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo returns true if the lifecycle allows moving from s to target
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid returns true for known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// AppointmentFilter фильтр для выборки записей
type AppointmentFilter struct {
	BarberID  *int64
	ClientID  *int64
	ServiceID *int64
	// From/To ограничивают выборку записями, чей интервал пересекается с [From, To)
	From     *time.Time
	To       *time.Time
	Statuses []AppointmentStatus // пусто - любые статусы
	// ForUpdate блокирует выбранные строки, если запрос выполняется в транзакции
	ForUpdate bool
	// NewestFirst сортирует по убыванию времени начала
	NewestFirst bool
}

// OccupyingStatuses статусы, занимающие время мастера
var OccupyingStatuses = []AppointmentStatus{
	StatusBooked,
	StatusCompleted,
}
