package scheduling

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// Interval полуинтервал времени [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval создает интервал длительностью durationMinutes от start
func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps проверяет пересечение полуинтервалов: a1 < b2 && b1 < a2.
// Интервалы, которые только касаются концами, не пересекаются.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Occupancy занятые интервалы мастера на дату
type Occupancy struct {
	intervals []Interval
}

// BuildOccupancy строит занятость мастера barberID на день date из списка записей.
// Учитываются только BOOKED и COMPLETED; CANCELLED никогда не занимает время.
// Индекс строится заново на каждый запрос.
func BuildOccupancy(barberID int64, date time.Time, appointments []*domain.Appointment) Occupancy {
	dayStart, dayEnd := DayBounds(date)
	day := Interval{Start: dayStart, End: dayEnd}

	intervals := make([]Interval, 0, len(appointments))
	for _, a := range appointments {
		if a == nil || a.BarberID != barberID || !a.Occupies() {
			continue
		}

		iv := Interval{Start: a.StartTime, End: a.EndTime()}
		if !iv.Overlaps(day) {
			continue
		}
		intervals = append(intervals, iv)
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	return Occupancy{intervals: intervals}
}

// Conflicts проверяет, пересекается ли iv хотя бы с одним занятым интервалом
func (o Occupancy) Conflicts(iv Interval) bool {
	for _, busy := range o.intervals {
		if !busy.Start.Before(iv.End) {
			// Интервалы отсортированы по началу, дальше пересечений нет
			return false
		}
		if busy.Overlaps(iv) {
			return true
		}
	}
	return false
}

// Intervals возвращает копию занятых интервалов в порядке начала
func (o Occupancy) Intervals() []Interval {
	out := make([]Interval, len(o.intervals))
	copy(out, o.intervals)
	return out
}
