/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voedger/leadership/pkg/leadership"
)

func TestLeaseStore_TCK(t *testing.T) {
	leadership.StoreCompatibilityKit(t, func(t *testing.T) leadership.ILeaseStore {
		store, cleanup, err := Provide(ParamsType{DBDir: t.TempDir()}, "", "synthesis-worker")
		require.NoError(t, err)
		t.Cleanup(cleanup)
		return store
	})
}

func TestProvide_Validation(t *testing.T) {
	require := require.New(t)

	_, _, err := Provide(ParamsType{}, "", "svc")
	require.Error(err)

	_, _, err = Provide(ParamsType{DBDir: t.TempDir()}, "", "")
	require.Error(err)
}

// one database file per namespace, so namespaces never observe each other's leases
func TestLeaseStore_NamespacesAreIsolated(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	storeA, cleanupA, err := Provide(ParamsType{DBDir: dir}, "prod", "svc")
	require.NoError(err)
	defer cleanupA()
	storeB, cleanupB, err := Provide(ParamsType{DBDir: dir}, "staging", "svc")
	require.NoError(err)
	defer cleanupB()

	ctx := context.Background()
	now := time.Now()
	require.NoError(storeA.Create(ctx, &leadership.Lease{HolderIdentity: "alpha", AcquireTime: now, RenewTime: now, LeaseDuration: 30 * time.Second}))

	_, err = storeB.Get(ctx)
	require.ErrorIs(err, leadership.ErrLeaseNotFound)

	require.NoError(storeB.Create(ctx, &leadership.Lease{HolderIdentity: "bravo", AcquireTime: now, RenewTime: now, LeaseDuration: 30 * time.Second}))
	got, err := storeA.Get(ctx)
	require.NoError(err)
	require.Equal("alpha", got.HolderIdentity)
}
