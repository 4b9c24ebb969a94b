package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-BarberScheduling/internal/integrations/catalog"
	"github.com/m04kA/SMC-BarberScheduling/pkg/logger"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

var (
	loc  = time.FixedZone("BRT", -3*60*60)
	date = time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
)

func at(hour, minute int) time.Time {
	return date.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func newDirectory() *catalog.StaticDirectory {
	return catalog.NewStaticDirectory(
		[]catalog.Barber{
			{ID: 1, Name: "Joao", WorkStart: "09:00", WorkEnd: "11:00", Active: true},
			{ID: 2, Name: "Pedro", Active: true},
			{ID: 3, Name: "Ana", WorkStart: "09:00", WorkEnd: "18:00", Active: false},
		},
		[]catalog.Service{
			{ID: 10, Name: "Corte", DurationMinutes: 30, Active: true},
			{ID: 11, Name: "Barba", DurationMinutes: 20, Active: false},
		},
	)
}

func newUseCase(repo AppointmentRepository, now time.Time) *UseCase {
	return NewUseCase(repo, newDirectory(), fixedTime{now: now}, loc, logger.NewNop())
}

func TestExecute_AllSlotsFree(t *testing.T) {
	uc := newUseCase(appointment.NewMemoryRepository(), at(7, 0))

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 10, Date: date})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 4)
	for i, s := range resp.Slots {
		assert.Equal(t, at(9, 0).Add(time.Duration(i*30)*time.Minute), s.StartTime)
		assert.Equal(t, 30, s.DurationMinutes)
		assert.True(t, s.Available)
	}
}

func TestExecute_BookedAndCancelled(t *testing.T) {
	repo := appointment.NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Appointment{
		BarberID: 1, ServiceID: 10, ClientID: 5, StartTime: at(9, 30), DurationMinutes: 30, Status: domain.StatusBooked,
	})
	require.NoError(t, err)
	cancelled, err := repo.Create(ctx, &domain.Appointment{
		BarberID: 1, ServiceID: 10, ClientID: 6, StartTime: at(10, 0), DurationMinutes: 30, Status: domain.StatusBooked,
	})
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, cancelled.ID, domain.StatusBooked, domain.StatusCancelled, at(8, 0))
	require.NoError(t, err)

	uc := newUseCase(repo, at(7, 0))
	resp, err := uc.Execute(ctx, &Request{BarberID: 1, ServiceID: 10, Date: date})
	require.NoError(t, err)

	available := make([]bool, len(resp.Slots))
	for i, s := range resp.Slots {
		available[i] = s.Available
	}
	assert.Equal(t, []bool{true, false, true, true}, available)
}

func TestExecute_PastSlotsUnavailable(t *testing.T) {
	uc := newUseCase(appointment.NewMemoryRepository(), at(9, 45))

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 10, Date: date})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 4)
	assert.False(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available)
	assert.True(t, resp.Slots[2].Available)
	assert.True(t, resp.Slots[3].Available)
}

func TestExecute_DateInterpretedInShopTimezone(t *testing.T) {
	uc := newUseCase(appointment.NewMemoryRepository(), at(7, 0))

	// Полночь UTC 10 марта - это ещё 9 марта в BRT, но дата берётся как календарная
	resp, err := uc.Execute(context.Background(), &Request{
		BarberID:  1,
		ServiceID: 10,
		Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, at(9, 0), resp.Slots[0].StartTime)
}

func TestExecute_NoWorkingHours(t *testing.T) {
	uc := newUseCase(appointment.NewMemoryRepository(), at(7, 0))

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 2, ServiceID: 10, Date: date})
	require.NoError(t, err)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(appointment.NewMemoryRepository(), at(7, 0))
	ctx := context.Background()

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"invalid barber id", &Request{BarberID: 0, ServiceID: 10, Date: date}, ErrInvalidInput},
		{"missing date", &Request{BarberID: 1, ServiceID: 10}, ErrInvalidInput},
		{"unknown service", &Request{BarberID: 1, ServiceID: 99, Date: date}, ErrServiceNotFound},
		{"inactive service", &Request{BarberID: 1, ServiceID: 11, Date: date}, ErrServiceNotFound},
		{"unknown barber", &Request{BarberID: 99, ServiceID: 10, Date: date}, ErrBarberNotFound},
		{"inactive barber", &Request{BarberID: 3, ServiceID: 10, Date: date}, ErrBarberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
