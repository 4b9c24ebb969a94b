package catalog

import (
	"context"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// StaticDirectory справочник, заданный в конфигурации
// Используется при локальном запуске без внешнего каталога.
type StaticDirectory struct {
	barbers  map[int64]Barber
	services map[int64]Service
}

// NewStaticDirectory создает справочник из списков мастеров и услуг
func NewStaticDirectory(barbers []Barber, services []Service) *StaticDirectory {
	d := &StaticDirectory{
		barbers:  make(map[int64]Barber, len(barbers)),
		services: make(map[int64]Service, len(services)),
	}
	for _, b := range barbers {
		d.barbers[b.ID] = b
	}
	for _, s := range services {
		d.services[s.ID] = s
	}
	return d
}

// GetBarber получает мастера по ID
func (d *StaticDirectory) GetBarber(_ context.Context, barberID int64) (*domain.Barber, error) {
	b, ok := d.barbers[barberID]
	if !ok {
		return nil, ErrBarberNotFound
	}
	return b.ToDomain(), nil
}

// GetService получает услугу по ID
func (d *StaticDirectory) GetService(_ context.Context, serviceID int64) (*domain.Service, error) {
	s, ok := d.services[serviceID]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return s.ToDomain(), nil
}
