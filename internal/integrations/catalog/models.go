package catalog

import (
	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/pkg/types"
)

// Barber модель мастера из справочника
type Barber struct {
	ID        int64  `json:"id" toml:"id"`
	Name      string `json:"name" toml:"name"`
	WorkStart string `json:"work_start" toml:"work_start"` // HH:MM, пусто - часы не настроены
	WorkEnd   string `json:"work_end" toml:"work_end"`
	Active    bool   `json:"active" toml:"active"`
}

// ToDomain конвертирует модель справочника в доменную
func (b *Barber) ToDomain() *domain.Barber {
	return &domain.Barber{
		ID:        b.ID,
		Name:      b.Name,
		WorkStart: types.TimeString(b.WorkStart),
		WorkEnd:   types.TimeString(b.WorkEnd),
		Active:    b.Active,
	}
}

// Service модель услуги из справочника
type Service struct {
	ID              int64   `json:"id" toml:"id"`
	Name            string  `json:"name" toml:"name"`
	DurationMinutes int     `json:"duration_minutes" toml:"duration_minutes"`
	Price           float64 `json:"price" toml:"price"`
	Active          bool    `json:"active" toml:"active"`
}

// ToDomain конвертирует модель справочника в доменную
func (s *Service) ToDomain() *domain.Service {
	return &domain.Service{
		ID:              s.ID,
		Name:            s.Name,
		DurationMinutes: s.DurationMinutes,
		Price:           s.Price,
		Active:          s.Active,
	}
}
