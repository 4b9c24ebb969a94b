package lock

import "context"

// Locker блокировка "один писатель на мастера"
// Acquire ждёт не дольше, чем живёт ctx, и возвращает функцию освобождения.
type Locker interface {
	Acquire(ctx context.Context, barberID int64) (release func(), err error)
}

type Logger interface {
	Warn(format string, v ...interface{})
}
