//go:build integration

package stripesync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions/internal/testinfra"
)

func TestPostgresStoreRuns(t *testing.T) {
	store := NewPostgresStore(testinfra.Postgres(t))
	ctx := context.Background()

	last, err := store.LastSuccessfulRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	run, err := store.StartRun(ctx, TriggerManual, since)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)

	email := "ana@example.com"
	require.NoError(t, store.UpsertPayments(ctx, []Payment{
		{ID: "ch_1", Amount: 5000, Currency: "eur", Status: "succeeded", Email: &email, CreatedAt: since.Add(time.Hour)},
		{ID: "ch_2", Amount: 1200, Currency: "eur", Status: "pending", CreatedAt: since.Add(2 * time.Hour)},
	}))
	require.NoError(t, store.UpsertPayments(ctx, []Payment{
		{ID: "ch_2", Amount: 1200, Currency: "eur", Status: "succeeded", CreatedAt: since.Add(2 * time.Hour)},
	}))

	run.Status = StatusSuccess
	run.Payments = 2
	require.NoError(t, store.FinishRun(ctx, run))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusSuccess, runs[0].Status)
	assert.Equal(t, 2, runs[0].Payments)
	assert.NotNil(t, runs[0].FinishedAt)

	last, err = store.LastSuccessfulRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, run.ID, last.ID)
}

func TestRedisLockerExclusive(t *testing.T) {
	locker := NewRedisLocker(testinfra.Redis(t))
	ctx := context.Background()

	unlock, ok, err := locker.TryLock(ctx, "stripe-sync", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "stripe-sync", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire a held lock")

	require.NoError(t, unlock(ctx))

	unlock, ok, err = locker.TryLock(ctx, "stripe-sync", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, unlock(ctx))
}
