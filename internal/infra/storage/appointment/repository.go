package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BarberScheduling/internal/domain"
	"github.com/m04kA/SMC-BarberScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberScheduling/pkg/psqlbuilder"
)

const (
	tableAppointments = "appointments"

	// Коды ошибок PostgreSQL, означающие занятый интервал
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

var columns = []string{
	"id",
	"barber_id",
	"service_id",
	"client_id",
	"start_time",
	"duration_minutes",
	"status",
	"note",
	"completed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей в PostgreSQL
// Таблица appointments несёт exclusion constraint по (barber_id, [start_time, end_time))
// для активных статусов, поэтому пересекающаяся вставка отклоняется самой БД
type Repository struct {
	db       DBExecutor
	location *time.Location
}

// NewRepository создает новый экземпляр репозитория записей
// Время из БД приводится к location (часовой пояс барбершопа)
func NewRepository(db DBExecutor, location *time.Location) *Repository {
	if location == nil {
		location = time.UTC
	}
	return &Repository{db: db, location: location}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её.
// Нарушение exclusion/unique constraint транслируется в ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableAppointments).
		Columns(
			"barber_id",
			"service_id",
			"client_id",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"note",
		).
		Values(
			appt.BarberID,
			appt.ServiceID,
			appt.ClientID,
			appt.StartTime,
			appt.EndTime(),
			appt.DurationMinutes,
			string(appt.Status),
			appt.Note,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isSlotConflict(err) {
			return nil, fmt.Errorf("%w: Create - barber=%d start=%s: %v",
				ErrSlotTaken, appt.BarberID, appt.StartTime.Format(time.RFC3339), err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time.In(r.location)
	appt.UpdatedAt = updatedAt.Time.In(r.location)

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableAppointments).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := r.scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// GetWithFilter получает записи с фильтрацией по мастеру, клиенту, услуге, периоду и статусам
//
// Период [From, To) сравнивается с интервалом записи, а не только с её началом,
// поэтому запись, начатая до From и заканчивающаяся после, тоже попадает в выборку.
//
// Если filter.ForUpdate и запрос идёт в транзакции, строки блокируются (FOR UPDATE) -
// так создание записи сериализуется с проверкой занятости мастера.
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableAppointments)

	if filter.BarberID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"barber_id": *filter.BarberID})
	}
	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.ServiceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	if filter.NewestFirst {
		selectBuilder = selectBuilder.OrderBy("start_time DESC", "id DESC")
	} else {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "id ASC")
	}

	if filter.ForUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := r.scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetWithFilter - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}

// UpdateStatus атомарно переводит запись из статуса from в статус to (compare-and-set)
// Если запись не найдена - ErrAppointmentNotFound, если её статус уже не from - ErrStatusChanged
func (r *Repository) UpdateStatus(
	ctx context.Context,
	id int64,
	from domain.AppointmentStatus,
	to domain.AppointmentStatus,
	at time.Time,
) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableAppointments).
		Set("status", string(to)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": string(from)})

	switch to {
	case domain.StatusCompleted:
		updateBuilder = updateBuilder.Set("completed_at", at)
	case domain.StatusCancelled:
		updateBuilder = updateBuilder.Set("cancelled_at", at)
	}

	query, args, err := updateBuilder.
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	appt, err := r.scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Либо записи нет, либо её статус уже изменён
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return appt, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment сканирует одну строку в запись
func (r *Repository) scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var status string
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.BarberID,
		&appt.ServiceID,
		&appt.ClientID,
		&appt.StartTime,
		&appt.DurationMinutes,
		&status,
		&appt.Note,
		&appt.CompletedAt,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Status = domain.AppointmentStatus(status)
	appt.StartTime = appt.StartTime.In(r.location)
	appt.CreatedAt = createdAt.Time.In(r.location)
	appt.UpdatedAt = updatedAt.Time.In(r.location)
	if appt.CompletedAt != nil {
		completedAt := appt.CompletedAt.In(r.location)
		appt.CompletedAt = &completedAt
	}
	if appt.CancelledAt != nil {
		cancelledAt := appt.CancelledAt.In(r.location)
		appt.CancelledAt = &cancelledAt
	}

	return &appt, nil
}

// isSlotConflict проверяет, что ошибка вызвана нарушением ограничения на пересечение записей
func isSlotConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgExclusionViolation || pqErr.Code == pgUniqueViolation
}
