package get_availability

import (
	"time"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// Request модель запроса на получение слотов мастера
type Request struct {
	BarberID  int64
	ServiceID int64
	Date      time.Time // Календарная дата, время суток и часовой пояс игнорируются
}

// Response модель ответа со всеми слотами рабочего окна
type Response struct {
	Date      time.Time
	BarberID  int64
	ServiceID int64
	Slots     []domain.Slot
}
