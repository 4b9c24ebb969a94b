package scheduling

import (
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// ComputeAvailability размечает все слоты окна.
// Слот доступен, если он не пересекается с занятостью и начинается строго после now.
// Возвращаются и недоступные слоты, чтобы клиент мог показать полную сетку.
func ComputeAvailability(w Window, durationMinutes int, occupancy Occupancy, now time.Time) []domain.Slot {
	starts := GenerateSlots(w.Start, w.End, durationMinutes)

	slots := make([]domain.Slot, len(starts))
	for i, start := range starts {
		free := !occupancy.Conflicts(NewInterval(start, durationMinutes))

		slots[i] = domain.Slot{
			StartTime:       start,
			DurationMinutes: durationMinutes,
			Available:       free && start.After(now),
		}
	}

	return slots
}
