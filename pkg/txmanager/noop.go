package txmanager

import "context"

// NoopManager выполняет функции без транзакции
// Используется с хранилищами, которые сами обеспечивают атомарность (in-memory)
type NoopManager struct{}

func NewNoop() *NoopManager {
	return &NoopManager{}
}

func (NoopManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
