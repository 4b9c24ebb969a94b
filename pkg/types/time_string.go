package types

import (
	"errors"
	"fmt"
	"time"
)

// TimeFormat формат времени суток HH:MM
const TimeFormat = "15:04"

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString время суток с точностью до минуты в формате "HH:MM"
type TimeString string

// NewTimeStringFromString парсит строку "HH:MM" с валидацией
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат "HH:MM"
func (t TimeString) Validate() error {
	if len(t) != len(TimeFormat) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	if _, err := time.Parse(TimeFormat, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут от полуночи
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(TimeFormat, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// On возвращает момент времени t в календарный день date (в часовом поясе date)
func (t TimeString) On(date time.Time) (time.Time, error) {
	minutes, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location()), nil
}
