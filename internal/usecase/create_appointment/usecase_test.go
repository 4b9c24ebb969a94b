package create_appointment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/infra/lock"
	"github.com/m04kA/SMC-BarberScheduling/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	"github.com/m04kA/SMC-BarberScheduling/internal/usecase/get_availability"
	"github.com/m04kA/SMC-BarberScheduling/pkg/logger"
	"github.com/m04kA/SMC-BarberScheduling/pkg/ptr"
	"github.com/m04kA/SMC-BarberScheduling/pkg/txmanager"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type recorder struct {
	mu       sync.Mutex
	outcomes []string
	waits    int
}

func (r *recorder) ObserveBooking(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) ObserveArbitrationWait(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits++
}

type failingLocker struct{}

func (failingLocker) Acquire(context.Context, int64) (func(), error) {
	return nil, lock.ErrLockBackend
}

type serializationTx struct{}

func (serializationTx) DoSerializable(context.Context, func(ctx context.Context) error) error {
	return txmanager.ErrSerialization
}

var date = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newDirectory() *catalog.StaticDirectory {
	return catalog.NewStaticDirectory(
		[]catalog.Barber{
			{ID: 1, Name: "Joao", WorkStart: "09:00", WorkEnd: "10:00", Active: true},
			{ID: 2, Name: "Pedro", Active: true},
			{ID: 3, Name: "Ana", WorkStart: "09:00", WorkEnd: "18:00", Active: false},
		},
		[]catalog.Service{
			{ID: 10, Name: "Corte", DurationMinutes: 30, Active: true},
			{ID: 11, Name: "Barba", DurationMinutes: 20, Active: false},
			{ID: 12, Name: "Pezinho", DurationMinutes: 20, Active: true},
		},
	)
}

type fixture struct {
	repo    *appointment.MemoryRepository
	metrics *recorder
	uc      *UseCase
}

func newFixture(now time.Time) *fixture {
	repo := appointment.NewMemoryRepository()
	rec := &recorder{}
	uc := NewUseCase(
		repo,
		newDirectory(),
		txmanager.NewNoop(),
		lock.NewLocalLocker(),
		rec,
		fixedTime{now: now},
		Config{Location: time.UTC, ArbitrationTimeout: time.Second},
		logger.NewNop(),
	)
	return &fixture{repo: repo, metrics: rec, uc: uc}
}

func request(start time.Time) *Request {
	return &Request{BarberID: 1, ServiceID: 10, ClientID: 7, StartTime: start}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(at(8, 0))

	req := request(at(9, 30))
	req.Note = ptr.Ptr("  degradê  ")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, domain.StatusBooked, resp.Status)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, at(9, 30), resp.StartTime)
	require.NotNil(t, resp.Note)
	assert.Equal(t, "degradê", *resp.Note)

	stored, err := f.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, stored.Status)
	assert.Equal(t, []string{outcomeCreated}, f.metrics.outcomes)
	assert.Equal(t, 1, f.metrics.waits)
}

func TestExecute_Preconditions(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"missing client", &Request{BarberID: 1, ServiceID: 10, StartTime: at(9, 0)}, ErrInvalidInput},
		{"missing start", &Request{BarberID: 1, ServiceID: 10, ClientID: 7}, ErrInvalidInput},
		{"note too long", &Request{BarberID: 1, ServiceID: 10, ClientID: 7, StartTime: at(9, 0),
			Note: ptr.Ptr(strings.Repeat("a", domain.MaxNoteLength+1))}, ErrInvalidInput},
		{"unknown service", &Request{BarberID: 1, ServiceID: 99, ClientID: 7, StartTime: at(9, 0)}, ErrInactiveOrUnknownService},
		{"inactive service", &Request{BarberID: 1, ServiceID: 11, ClientID: 7, StartTime: at(9, 0)}, ErrInactiveOrUnknownService},
		// Неактивная услуга проверяется раньше рабочего окна и прошедшего времени
		{"inactive service before hours", &Request{BarberID: 1, ServiceID: 11, ClientID: 7, StartTime: at(7, 0)}, ErrInactiveOrUnknownService},
		{"unknown barber", &Request{BarberID: 99, ServiceID: 10, ClientID: 7, StartTime: at(9, 0)}, ErrOutsideWorkingHours},
		{"inactive barber", &Request{BarberID: 3, ServiceID: 10, ClientID: 7, StartTime: at(9, 0)}, ErrOutsideWorkingHours},
		{"barber without hours", &Request{BarberID: 2, ServiceID: 10, ClientID: 7, StartTime: at(9, 0)}, ErrOutsideWorkingHours},
		{"before window", request(at(8, 30)), ErrOutsideWorkingHours},
		{"ends after window", request(at(9, 45)), ErrOutsideWorkingHours},
		{"off grid", request(at(9, 15)), ErrOutsideWorkingHours},
		// Рабочее окно проверяется раньше прошедшего времени
		{"outside hours and past", request(at(7, 0)), ErrOutsideWorkingHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(at(8, 0))
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_PastTime(t *testing.T) {
	f := newFixture(at(9, 30))

	_, err := f.uc.Execute(context.Background(), request(at(9, 0)))
	assert.ErrorIs(t, err, ErrPastTime)

	// Начало ровно в текущий момент - тоже прошлое
	_, err = f.uc.Execute(context.Background(), request(at(9, 30)))
	assert.ErrorIs(t, err, ErrPastTime)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_SlotTaken(t *testing.T) {
	f := newFixture(at(8, 0))
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request(at(9, 0)))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request(at(9, 0)))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Смежный интервал не пересекается
	_, err = f.uc.Execute(ctx, request(at(9, 30)))
	assert.NoError(t, err)

	assert.Equal(t, []string{outcomeCreated, outcomeSlotTaken, outcomeCreated}, f.metrics.outcomes)
}

func TestExecute_OverlapWithLongerAppointment(t *testing.T) {
	f := newFixture(at(8, 0))
	ctx := context.Background()

	// Запись другой услуги, созданная в обход сетки, занимает 09:15-10:00
	_, err := f.repo.Create(ctx, &domain.Appointment{
		BarberID: 1, ServiceID: 12, ClientID: 3, StartTime: at(9, 15), DurationMinutes: 45, Status: domain.StatusBooked,
	})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request(at(9, 0)))
	assert.ErrorIs(t, err, ErrSlotTaken)
	_, err = f.uc.Execute(ctx, request(at(9, 30)))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_CancelledFreesSlot(t *testing.T) {
	f := newFixture(at(8, 0))
	ctx := context.Background()

	first, err := f.uc.Execute(ctx, request(at(9, 0)))
	require.NoError(t, err)

	_, err = f.repo.UpdateStatus(ctx, first.ID, domain.StatusBooked, domain.StatusCancelled, at(8, 5))
	require.NoError(t, err)

	second, err := f.uc.Execute(ctx, request(at(9, 0)))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestExecute_ConcurrentBookingsExactlyOneWins(t *testing.T) {
	f := newFixture(at(8, 0))

	const n = 25
	var wg sync.WaitGroup
	errs := make([]error, n)

	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			req := request(at(9, 0))
			req.ClientID = int64(100 + i)
			_, errs[i] = f.uc.Execute(context.Background(), req)
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, successes)

	booked, err := f.repo.GetWithFilter(context.Background(), domain.AppointmentFilter{
		BarberID: ptr.Ptr(int64(1)),
		Statuses: domain.OccupyingStatuses,
	})
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}

func TestExecute_ConcurrentOverlappingDurationsExactlyOneWins(t *testing.T) {
	// 30 минут с 09:00 и 20 минут с 09:20 пересекаются на [09:20, 09:30)
	for round := 0; round < 50; round++ {
		f := newFixture(at(8, 0))

		long := request(at(9, 0))
		short := &Request{BarberID: 1, ServiceID: 12, ClientID: 8, StartTime: at(9, 20)}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for i, req := range []*Request{long, short} {
			wg.Add(1)
			go func(i int, req *Request) {
				defer wg.Done()
				<-start
				_, errs[i] = f.uc.Execute(context.Background(), req)
			}(i, req)
		}
		close(start)
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
				continue
			}
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
		require.Equal(t, 1, successes, "round %d", round)

		booked, err := f.repo.GetWithFilter(context.Background(), domain.AppointmentFilter{
			BarberID: ptr.Ptr(int64(1)),
			Statuses: domain.OccupyingStatuses,
		})
		require.NoError(t, err)
		require.Len(t, booked, 1)
	}
}

func TestExecute_ArbitrationBusy(t *testing.T) {
	repo := appointment.NewMemoryRepository()
	locker := lock.NewLocalLocker()
	rec := &recorder{}
	uc := NewUseCase(repo, newDirectory(), txmanager.NewNoop(), locker, rec, fixedTime{now: at(8, 0)},
		Config{ArbitrationTimeout: 20 * time.Millisecond}, logger.NewNop())

	release, err := locker.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	_, err = uc.Execute(context.Background(), request(at(9, 0)))
	assert.ErrorIs(t, err, ErrArbitrationBusy)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, []string{outcomeBusy}, rec.outcomes)
}

// movingClock время, которое тест может сдвинуть
type movingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movingClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// slowLocker сдвигает часы, пока запрос ждёт блокировку
type slowLocker struct {
	inner Locker
	clock *movingClock
	after time.Time
}

func (l slowLocker) Acquire(ctx context.Context, barberID int64) (func(), error) {
	release, err := l.inner.Acquire(ctx, barberID)
	l.clock.set(l.after)
	return release, err
}

func TestExecute_StartPassesWhileWaitingForLock(t *testing.T) {
	repo := appointment.NewMemoryRepository()
	clock := &movingClock{now: at(8, 59)}
	rec := &recorder{}
	locker := slowLocker{inner: lock.NewLocalLocker(), clock: clock, after: at(9, 1)}
	uc := NewUseCase(repo, newDirectory(), txmanager.NewNoop(), locker, rec, clock,
		Config{ArbitrationTimeout: time.Second}, logger.NewNop())

	_, err := uc.Execute(context.Background(), request(at(9, 0)))
	assert.ErrorIs(t, err, ErrPastTime)
	assert.Equal(t, []string{outcomePastTime}, rec.outcomes)

	stored, err := repo.GetWithFilter(context.Background(), domain.AppointmentFilter{BarberID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

// waitingLocker сообщает, что запрос дошёл до ожидания блокировки
type waitingLocker struct {
	inner   Locker
	waiting chan struct{}
}

func (l waitingLocker) Acquire(ctx context.Context, barberID int64) (func(), error) {
	close(l.waiting)
	return l.inner.Acquire(ctx, barberID)
}

func TestExecute_StartPassesWhileLockHeldByAnotherBooking(t *testing.T) {
	repo := appointment.NewMemoryRepository()
	clock := &movingClock{now: at(8, 59)}
	locker := lock.NewLocalLocker()
	waiting := make(chan struct{})
	uc := NewUseCase(repo, newDirectory(), txmanager.NewNoop(), waitingLocker{inner: locker, waiting: waiting}, nil, clock,
		Config{ArbitrationTimeout: 5 * time.Second}, logger.NewNop())

	release, err := locker.Acquire(context.Background(), 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := uc.Execute(context.Background(), request(at(9, 0)))
		done <- err
	}()

	// Запрос прошёл ранние проверки и ждёт блокировку
	<-waiting
	clock.set(at(9, 1))
	release()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrPastTime)
	case <-time.After(5 * time.Second):
		t.Fatal("booking did not finish after the lock was released")
	}
}

func TestExecute_LockBackendFailure(t *testing.T) {
	uc := NewUseCase(appointment.NewMemoryRepository(), newDirectory(), txmanager.NewNoop(), failingLocker{}, nil,
		fixedTime{now: at(8, 0)}, Config{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), request(at(9, 0)))
	assert.ErrorIs(t, err, ErrArbitrationBusy)
}

func TestExecute_SerializationExhausted(t *testing.T) {
	uc := NewUseCase(appointment.NewMemoryRepository(), newDirectory(), serializationTx{}, lock.NewLocalLocker(), nil,
		fixedTime{now: at(8, 0)}, Config{}, logger.NewNop())

	_, err := uc.Execute(context.Background(), request(at(9, 0)))
	assert.ErrorIs(t, err, ErrArbitrationBusy)
	assert.False(t, errors.Is(err, ErrInternal))
}

func TestBookingScenario_EndToEnd(t *testing.T) {
	now := at(8, 0)
	repo := appointment.NewMemoryRepository()
	directory := newDirectory()

	availability := get_availability.NewUseCase(repo, directory, fixedTime{now: now}, time.UTC, logger.NewNop())
	booking := NewUseCase(repo, directory, txmanager.NewNoop(), lock.NewLocalLocker(), nil,
		fixedTime{now: now}, Config{Location: time.UTC}, logger.NewNop())

	ctx := context.Background()
	query := &get_availability.Request{BarberID: 1, ServiceID: 10, Date: date}

	slots, err := availability.Execute(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, []domain.Slot{
		{StartTime: at(9, 0), DurationMinutes: 30, Available: true},
		{StartTime: at(9, 30), DurationMinutes: 30, Available: true},
	}, slots.Slots)

	_, err = booking.Execute(ctx, request(at(9, 0)))
	require.NoError(t, err)

	slots, err = availability.Execute(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, []domain.Slot{
		{StartTime: at(9, 0), DurationMinutes: 30, Available: false},
		{StartTime: at(9, 30), DurationMinutes: 30, Available: true},
	}, slots.Slots)

	_, err = booking.Execute(ctx, request(at(9, 0)))
	assert.ErrorIs(t, err, ErrSlotTaken)
}
