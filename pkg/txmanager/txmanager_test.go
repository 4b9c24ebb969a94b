package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberScheduling/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	txs      []*fakeTx
	opts     []*sql.TxOptions
	beginErr error
}

func (d *fakeDB) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	d.opts = append(d.opts, opts)
	return tx, nil
}

func serializationFailure() error {
	return fmt.Errorf("repo: exec: %w", &pq.Error{Code: pgSerializationFailure})
}

func TestDoSerializable_CommitsAndPassesTxInContext(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, 0)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})
	require.NoError(t, err)

	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
	assert.False(t, db.txs[0].rolledBack)
	assert.Equal(t, sql.LevelSerializable, db.opts[0].Isolation)
}

func TestDoSerializable_RollsBackOnError(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, 0)
	boom := errors.New("boom")

	err := m.DoSerializable(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].rolledBack)
	assert.False(t, db.txs[0].committed)
}

func TestDoSerializable_BeginAndCommitErrors(t *testing.T) {
	m := NewTransactionManager(&fakeDB{beginErr: errors.New("no conn")}, 0)
	err := m.DoSerializable(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBeginTx)

	db := &fakeDB{}
	m = NewTransactionManager(db, 0)
	err = m.DoSerializable(context.Background(), func(ctx context.Context) error {
		db.txs[len(db.txs)-1].commitErr = errors.New("commit failed")
		return nil
	})
	assert.ErrorIs(t, err, ErrCommit)
}

func TestDoSerializable_RetriesSerializationFailures(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, 3)

	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	require.Len(t, db.txs, 3)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[2].committed)
	assert.Equal(t, sql.LevelSerializable, db.opts[0].Isolation)
}

func TestDoSerializable_GivesUpAfterMaxRetries(t *testing.T) {
	m := NewTransactionManager(&fakeDB{}, 2)

	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		return serializationFailure()
	})
	assert.ErrorIs(t, err, ErrSerialization)
	assert.Equal(t, 2, calls)
}

func TestDoSerializable_DoesNotRetryOtherErrors(t *testing.T) {
	m := NewTransactionManager(&fakeDB{}, 3)
	domainErr := errors.New("slot taken")

	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		return domainErr
	})
	assert.ErrorIs(t, err, domainErr)
	assert.Equal(t, 1, calls)
}

func TestNestedCallReusesOuterTransaction(t *testing.T) {
	db := &fakeDB{}
	m := NewTransactionManager(db, 0)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.Len(t, db.txs, 1)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(serializationFailure()))
	assert.True(t, IsRetryable(&pq.Error{Code: pgDeadlockDetected}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23P01"}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestNoopManager(t *testing.T) {
	calls := 0
	fn := func(ctx context.Context) error {
		calls++
		assert.False(t, dbmetrics.IsInTransaction(ctx))
		return nil
	}

	m := NewNoop()
	require.NoError(t, m.DoSerializable(context.Background(), fn))
	assert.Equal(t, 1, calls)
}
