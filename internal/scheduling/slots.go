package scheduling

import "time"

// GenerateSlots возвращает упорядоченные начала слотов длительностью durationMinutes
// с шагом, равным длительности: t >= workStart и t+duration <= workEnd.
// Некорректные входные данные дают пустой результат, а не ошибку.
func GenerateSlots(workStart, workEnd time.Time, durationMinutes int) []time.Time {
	slots := make([]time.Time, 0)

	if durationMinutes <= 0 || !workEnd.After(workStart) {
		return slots
	}

	step := time.Duration(durationMinutes) * time.Minute
	for t := workStart; !t.Add(step).After(workEnd); t = t.Add(step) {
		slots = append(slots, t)
	}

	return slots
}

// IsOnGrid проверяет, что t - одно из начал, которые выдал бы GenerateSlots для окна
func IsOnGrid(w Window, durationMinutes int, t time.Time) bool {
	if durationMinutes <= 0 || !w.Contains(t, durationMinutes) {
		return false
	}

	step := time.Duration(durationMinutes) * time.Minute
	return t.Sub(w.Start)%step == 0
}
