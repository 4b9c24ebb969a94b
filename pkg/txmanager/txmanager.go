package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-BarberScheduling/pkg/dbmetrics"
)

const (
	// DefaultMaxRetries количество повторов сериализуемой транзакции при конфликте сериализации
	DefaultMaxRetries = 3

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	// ErrBeginTx возвращается, если не удалось начать транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommit возвращается, если не удалось зафиксировать транзакцию
	ErrCommit = errors.New("txmanager: failed to commit transaction")

	// ErrSerialization возвращается, когда исчерпаны повторы после конфликтов сериализации
	ErrSerialization = errors.New("txmanager: serialization failure")
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции в транзакции, передавая её через контекст
type TransactionManager struct {
	db         TxBeginner
	maxRetries int
}

// NewTransactionManager создает менеджер транзакций
// maxRetries <= 0 означает значение по умолчанию
func NewTransactionManager(db TxBeginner, maxRetries int) *TransactionManager {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &TransactionManager{db: db, maxRetries: maxRetries}
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE
// При конфликте сериализации (40001) или дедлоке транзакция повторяется целиком
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		err := m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: after %d attempts: %v", ErrSerialization, m.maxRetries, lastErr)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}

// IsRetryable сообщает, что ошибка вызвана конфликтом сериализации или дедлоком
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected
}
