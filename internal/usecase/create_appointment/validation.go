package create_appointment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BarberID <= 0 {
		return fmt.Errorf("%w: barberId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientId must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.Note != nil && utf8.RuneCountInString(*req.Note) > domain.MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, domain.MaxNoteLength)
	}

	return nil
}

// normalizeNote обрезает пробелы; пустая заметка не сохраняется
func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
