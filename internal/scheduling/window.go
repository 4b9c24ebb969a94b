package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

var (
	// ErrNoWorkingHours возвращается, когда у мастера не настроены рабочие часы на дату
	ErrNoWorkingHours = errors.New("scheduling: barber has no working hours on this date")

	// ErrInvalidWorkingHours возвращается, когда рабочие часы мастера не парсятся
	ErrInvalidWorkingHours = errors.New("scheduling: invalid working hours")
)

// Window рабочее окно мастера на конкретную дату, полуинтервал [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindow вычисляет рабочее окно мастера на день date (в часовом поясе date)
// Отсутствие рабочих часов - ошибка, значения по умолчанию не подставляются
func ResolveWindow(barber *domain.Barber, date time.Time) (Window, error) {
	if !barber.HasWorkingHours() {
		return Window{}, ErrNoWorkingHours
	}

	start, err := barber.WorkStart.On(date)
	if err != nil {
		return Window{}, fmt.Errorf("%w: workStart: %v", ErrInvalidWorkingHours, err)
	}

	end, err := barber.WorkEnd.On(date)
	if err != nil {
		return Window{}, fmt.Errorf("%w: workEnd: %v", ErrInvalidWorkingHours, err)
	}

	return Window{Start: start, End: end}, nil
}

// Contains проверяет, что интервал [t, t+duration) целиком лежит в окне
func (w Window) Contains(t time.Time, durationMinutes int) bool {
	end := t.Add(time.Duration(durationMinutes) * time.Minute)
	return !t.Before(w.Start) && !end.After(w.End)
}

// DayBounds возвращает полуинтервал [начало дня, начало следующего дня) для date
func DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}
