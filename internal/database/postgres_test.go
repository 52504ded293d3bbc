package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

func newFakeDB(tx *fakeTx, beginErr error) (*DB, *int) {
	begins := 0
	return &DB{begin: func(context.Context) (pgx.Tx, error) {
		begins++
		if beginErr != nil {
			return nil, beginErr
		}
		return tx, nil
	}}, &begins
}

func TestWithTransactionCommits(t *testing.T) {
	tx := &fakeTx{}
	db, _ := newFakeDB(tx, nil)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.Same(t, tx, TxFromContext(ctx))
		assert.Equal(t, Querier(tx), db.Querier(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	db, _ := newFakeDB(tx, nil)
	boom := errors.New("boom")

	err := db.WithTransaction(context.Background(), func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestWithTransactionJoinsRollbackError(t *testing.T) {
	rbErr := errors.New("connection reset")
	tx := &fakeTx{rollbackErr: rbErr}
	db, _ := newFakeDB(tx, nil)
	boom := errors.New("boom")

	err := db.WithTransaction(context.Background(), func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, rbErr)
}

func TestWithTransactionRollsBackAfterCancel(t *testing.T) {
	tx := &fakeTx{}
	db, _ := newFakeDB(tx, nil)
	ctx, cancel := context.WithCancel(context.Background())

	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, tx.rolledBack)
}

func TestWithTransactionBeginAndCommitFailures(t *testing.T) {
	db, _ := newFakeDB(nil, errors.New("pool exhausted"))
	err := db.WithTransaction(context.Background(), func(context.Context) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")

	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	db, _ = newFakeDB(tx, nil)
	err = db.WithTransaction(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestWithTransactionNestedJoinsOuter(t *testing.T) {
	tx := &fakeTx{}
	db, begins := newFakeDB(tx, nil)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		return db.WithTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, tx, TxFromContext(inner))
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, *begins)
}

func TestTxFromContextEmpty(t *testing.T) {
	assert.Nil(t, TxFromContext(context.Background()))
}
