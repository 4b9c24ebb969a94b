package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// MemoryRepository хранилище записей в памяти процесса
// Проверка пересечения и вставка выполняются под одним мьютексом,
// поэтому инвариант "нет пересечений у мастера" держится без БД.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*domain.Appointment
	now    func() time.Time
}

// NewMemoryRepository создает пустое хранилище записей в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[int64]*domain.Appointment),
		now:   time.Now,
	}
}

// Create сохраняет запись, если её интервал не пересекается с активными записями мастера
func (r *MemoryRepository) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appt.Occupies() {
		for _, existing := range r.items {
			if existing.BarberID != appt.BarberID || !existing.Occupies() {
				continue
			}
			if existing.StartTime.Before(appt.EndTime()) && appt.StartTime.Before(existing.EndTime()) {
				return nil, ErrSlotTaken
			}
		}
	}

	r.nextID++
	now := r.now().In(appt.StartTime.Location())

	stored := clone(appt)
	stored.ID = r.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.items[stored.ID] = stored

	appt.ID = stored.ID
	appt.CreatedAt = now
	appt.UpdatedAt = now

	return appt, nil
}

// GetByID получает запись по ID
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return clone(appt), nil
}

// GetWithFilter получает записи по фильтру с той же семантикой, что и Repository.GetWithFilter
// ForUpdate игнорируется: сериализация создания обеспечивается мьютексом в Create
func (r *MemoryRepository) GetWithFilter(_ context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, appt := range r.items {
		if matches(appt, filter) {
			result = append(result, clone(appt))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if filter.NewestFirst {
			a, b = b, a
		}
		if a.StartTime.Equal(b.StartTime) {
			return a.ID < b.ID
		}
		return a.StartTime.Before(b.StartTime)
	})

	return result, nil
}

// UpdateStatus атомарно переводит запись из статуса from в статус to
func (r *MemoryRepository) UpdateStatus(
	_ context.Context,
	id int64,
	from domain.AppointmentStatus,
	to domain.AppointmentStatus,
	at time.Time,
) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != from {
		return nil, ErrStatusChanged
	}

	appt.Status = to
	appt.UpdatedAt = at
	switch to {
	case domain.StatusCompleted:
		completedAt := at
		appt.CompletedAt = &completedAt
	case domain.StatusCancelled:
		cancelledAt := at
		appt.CancelledAt = &cancelledAt
	}

	return clone(appt), nil
}

func matches(appt *domain.Appointment, filter domain.AppointmentFilter) bool {
	if filter.BarberID != nil && appt.BarberID != *filter.BarberID {
		return false
	}
	if filter.ClientID != nil && appt.ClientID != *filter.ClientID {
		return false
	}
	if filter.ServiceID != nil && appt.ServiceID != *filter.ServiceID {
		return false
	}
	if filter.To != nil && !appt.StartTime.Before(*filter.To) {
		return false
	}
	if filter.From != nil && !appt.EndTime().After(*filter.From) {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if appt.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clone(appt *domain.Appointment) *domain.Appointment {
	c := *appt
	if appt.Note != nil {
		note := *appt.Note
		c.Note = &note
	}
	if appt.CompletedAt != nil {
		completedAt := *appt.CompletedAt
		c.CompletedAt = &completedAt
	}
	if appt.CancelledAt != nil {
		cancelledAt := *appt.CancelledAt
		c.CancelledAt = &cancelledAt
	}
	return &c
}
