/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// StoreCompatibilityKit is the test suite every ILeaseStore implementation must pass.
// provide returns a store bound to a fresh, empty lease; implementations register
// their teardown via t.Cleanup.
func StoreCompatibilityKit(t *testing.T, provide func(t *testing.T) ILeaseStore) {
	t.Run("GetNotFound", func(t *testing.T) { testGetNotFound(t, provide(t)) })
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, provide(t)) })
	t.Run("CreateConflict", func(t *testing.T) { testCreateConflict(t, provide(t)) })
	t.Run("RenewByHolder", func(t *testing.T) { testRenewByHolder(t, provide(t)) })
	t.Run("RenewConflict", func(t *testing.T) { testRenewConflict(t, provide(t)) })
	t.Run("AcquireExpired", func(t *testing.T) { testAcquireExpired(t, provide(t)) })
	t.Run("AcquireConflictStale", func(t *testing.T) { testAcquireConflictStale(t, provide(t)) })
	t.Run("AcquireConflictAfterRenew", func(t *testing.T) { testAcquireConflictAfterRenew(t, provide(t)) })
	t.Run("Release", func(t *testing.T) { testRelease(t, provide(t)) })
	t.Run("ConcurrentCreateRace", func(t *testing.T) { testConcurrentCreateRace(t, provide(t)) })
	t.Run("ConcurrentAcquireRace", func(t *testing.T) { testConcurrentAcquireRace(t, provide(t)) })
}

func newTestLease(holder string, renewTime time.Time, duration time.Duration) *Lease {
	return &Lease{
		HolderIdentity: holder,
		AcquireTime:    renewTime,
		RenewTime:      renewTime,
		LeaseDuration:  duration,
	}
}

func testGetNotFound(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	lease, err := store.Get(context.Background())
	require.ErrorIs(err, ErrLeaseNotFound)
	require.Nil(lease)
	require.NotEmpty(store.Kind())
}

func testCreateAndGet(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	lease := newTestLease("alpha", time.Now(), 30*time.Second)
	require.NoError(store.Create(ctx, lease))

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("alpha", got.HolderIdentity)
	require.Equal(30*time.Second, got.LeaseDuration)
	// stores may truncate timestamps (Cassandra keeps milliseconds)
	require.WithinDuration(lease.RenewTime, got.RenewTime, time.Second)
	require.WithinDuration(lease.AcquireTime, got.AcquireTime, time.Second)
}

func testCreateConflict(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Create(ctx, newTestLease("alpha", time.Now(), 30*time.Second)))

	err := store.Create(ctx, newTestLease("bravo", time.Now(), 30*time.Second))
	require.ErrorIs(err, ErrLeaseConflict)

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("alpha", got.HolderIdentity)
}

func testRenewByHolder(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	prev := newTestLease("alpha", time.Now().Add(-10*time.Second), 30*time.Second)
	require.NoError(store.Create(ctx, prev))

	next := *prev
	next.RenewTime = time.Now()
	require.NoError(store.Renew(ctx, prev, &next))

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("alpha", got.HolderIdentity)
	require.WithinDuration(next.RenewTime, got.RenewTime, time.Second)
	require.True(got.RenewTime.After(prev.RenewTime))
}

func testRenewConflict(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Create(ctx, newTestLease("bravo", time.Now(), 30*time.Second)))

	prev := newTestLease("alpha", time.Now().Add(-time.Minute), 30*time.Second)
	next := *prev
	next.RenewTime = time.Now()
	err := store.Renew(ctx, prev, &next)
	require.ErrorIs(err, ErrLeaseConflict)

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("bravo", got.HolderIdentity)
}

func testAcquireExpired(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	prev := newTestLease("alpha", time.Now().Add(-2*time.Minute), 30*time.Second)
	require.NoError(store.Create(ctx, prev))
	require.True(prev.IsExpired(time.Now()))

	next := newTestLease("bravo", time.Now(), 30*time.Second)
	require.NoError(store.Acquire(ctx, prev, next))

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("bravo", got.HolderIdentity)
}

func testAcquireConflictStale(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	prev := newTestLease("alpha", time.Now().Add(-2*time.Minute), 30*time.Second)
	require.NoError(store.Create(ctx, prev))

	require.NoError(store.Acquire(ctx, prev, newTestLease("bravo", time.Now(), 30*time.Second)))

	// the second acquirer still holds the stale view with "alpha" as holder
	err := store.Acquire(ctx, prev, newTestLease("charlie", time.Now(), 30*time.Second))
	require.ErrorIs(err, ErrLeaseConflict)

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("bravo", got.HolderIdentity)
}

// A renewal landing between the challenger's Get and Acquire must invalidate the
// challenger's view even though the holder identity still matches. Otherwise a
// challenger could steal a just-renewed lease and two leaders would overlap.
func testAcquireConflictAfterRenew(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Create(ctx, newTestLease("alpha", time.Now().Add(-2*time.Minute), 30*time.Second)))

	// the challenger reads an expired lease...
	staleView, err := store.Get(ctx)
	require.NoError(err)
	require.True(staleView.IsExpired(time.Now()))

	// ...then the holder comes back and renews it
	renewed := *staleView
	renewed.RenewTime = time.Now()
	require.NoError(store.Renew(ctx, staleView, &renewed))

	err = store.Acquire(ctx, staleView, newTestLease("bravo", time.Now(), 30*time.Second))
	require.ErrorIs(err, ErrLeaseConflict)

	got, err := store.Get(ctx)
	require.NoError(err)
	require.Equal("alpha", got.HolderIdentity)
}

func testRelease(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Create(ctx, newTestLease("alpha", time.Now(), 30*time.Second)))

	err := store.Release(ctx, "bravo")
	require.ErrorIs(err, ErrLeaseConflict)
	_, err = store.Get(ctx)
	require.NoError(err)

	require.NoError(store.Release(ctx, "alpha"))
	_, err = store.Get(ctx)
	require.ErrorIs(err, ErrLeaseNotFound)

	// releasing an absent lease is not an error
	require.NoError(store.Release(ctx, "alpha"))
}

func testConcurrentCreateRace(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	const racers = 8

	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = store.Create(ctx, newTestLease(racerIdentity(i), time.Now(), 30*time.Second))
		}(i)
	}
	close(start)
	wg.Wait()

	require.Equal(1, countWinners(t, errs))
}

func testConcurrentAcquireRace(t *testing.T, store ILeaseStore) {
	require := require.New(t)
	ctx := context.Background()
	prev := newTestLease("expired-holder", time.Now().Add(-2*time.Minute), 30*time.Second)
	require.NoError(store.Create(ctx, prev))

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = store.Acquire(ctx, prev, newTestLease(racerIdentity(i), time.Now(), 30*time.Second))
		}(i)
	}
	close(start)
	wg.Wait()

	require.Equal(1, countWinners(t, errs))
	got, err := store.Get(ctx)
	require.NoError(err)
	require.NotEqual("expired-holder", got.HolderIdentity)
}

func racerIdentity(i int) string {
	return "racer-" + string(rune('a'+i))
}

// countWinners requires every non-winning outcome to be a distinguishable conflict.
func countWinners(t *testing.T, errs []error) int {
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.True(t, errors.Is(err, ErrLeaseConflict), "expected ErrLeaseConflict, got %v", err)
	}
	return winners
}
