package lock

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку мастера не удалось получить до истечения контекста
	ErrLockTimeout = errors.New("lock: acquire timeout")

	// ErrLockBackend возвращается при недоступности хранилища блокировок
	ErrLockBackend = errors.New("lock: backend unavailable")
)
