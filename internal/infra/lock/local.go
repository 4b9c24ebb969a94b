package lock

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LocalLocker блокировка мастеров в пределах одного процесса
// Для каждого мастера держится семафор весом 1; запись удаляется, когда на неё никто не ссылается.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[int64]*localEntry
}

type localEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// NewLocalLocker создает блокировку в памяти процесса
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{entries: make(map[int64]*localEntry)}
}

// Acquire захватывает блокировку мастера barberID
func (l *LocalLocker) Acquire(ctx context.Context, barberID int64) (func(), error) {
	e := l.ref(barberID)

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.unref(barberID, e)
		return nil, fmt.Errorf("%w: barber=%d: %v", ErrLockTimeout, barberID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			l.unref(barberID, e)
		})
	}, nil
}

func (l *LocalLocker) ref(barberID int64) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[barberID]
	if !ok {
		e = &localEntry{sem: semaphore.NewWeighted(1)}
		l.entries[barberID] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(barberID int64, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, barberID)
	}
}

// size количество мастеров с активными или ожидающими блокировками
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
