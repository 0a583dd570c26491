package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/store"
)

func TestRunInTransactionCommitsOnSuccess(t *testing.T) {
	t.Parallel()
	db := mocks.NewTxDB()

	ran := false
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		ran = true
		require.NotNil(t, tx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()
	db := mocks.NewTxDB()

	failure := errors.New("row conflict")
	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return failure
	})
	assert.ErrorIs(t, err, failure)
}

func TestRunInTransactionPropagatesPanic(t *testing.T) {
	t.Parallel()
	db := mocks.NewTxDB()

	assert.Panics(t, func() {
		_ = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			panic("boom")
		})
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrCardNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrUserNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrWrongAnswerNotFound))
	assert.False(t, store.IsNotFoundError(store.ErrCardExists))

	assert.True(t, store.IsDuplicateError(store.ErrCardExists))
	assert.False(t, store.IsDuplicateError(store.ErrCardNotFound))
}
