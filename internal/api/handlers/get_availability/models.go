package get_availability

import (
	"time"

	getAvailability "github.com/m04kA/SMC-BarberScheduling/internal/usecase/get_availability"
)

// SlotResponse HTTP response model
type SlotResponse struct {
	StartTime       string `json:"startTime"` // RFC 3339, можно передать как есть в POST /appointments
	DurationMinutes int    `json:"durationMinutes"`
	Available       bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) []SlotResponse {
	slots := make([]SlotResponse, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = SlotResponse{
			StartTime:       s.StartTime.Format(time.RFC3339),
			DurationMinutes: s.DurationMinutes,
			Available:       s.Available,
		}
	}
	return slots
}
