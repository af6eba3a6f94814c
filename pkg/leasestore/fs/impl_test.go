/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voedger/leadership/pkg/leadership"
)

func provideTestStore(t *testing.T) leadership.ILeaseStore {
	store, err := Provide(ParamsType{
		Dir:         t.TempDir(),
		ServiceName: "synthesis-worker",
	})
	require.NoError(t, err)
	return store
}

func TestLeaseStore_TCK(t *testing.T) {
	leadership.StoreCompatibilityKit(t, func(t *testing.T) leadership.ILeaseStore {
		return provideTestStore(t)
	})
}

func TestProvide_Validation(t *testing.T) {
	require := require.New(t)

	_, err := Provide(ParamsType{ServiceName: "s"})
	require.Error(err)

	_, err = Provide(ParamsType{Dir: t.TempDir()})
	require.Error(err)
}

func TestLeaseStore_HeldOpLockReportsConflict(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	store, err := Provide(ParamsType{Dir: dir, ServiceName: "svc"})
	require.NoError(err)

	ctx := context.Background()
	lease := &leadership.Lease{HolderIdentity: "alpha", AcquireTime: time.Now(), RenewTime: time.Now(), LeaseDuration: 30 * time.Second}
	require.NoError(store.Create(ctx, lease))

	// a concurrent writer holds the op lock right now
	lockPath := filepath.Join(dir, leadership.DefaultNamespace, "svc"+leaseFileSuffix+lockFileSuffix)
	require.NoError(os.WriteFile(lockPath, nil, fileMode_rw_rw_rw_))

	next := *lease
	next.RenewTime = time.Now()
	err = store.Renew(ctx, lease, &next)
	require.ErrorIs(err, leadership.ErrLeaseConflict)
	require.NoError(os.Remove(lockPath))

	// with the lock gone the renewal goes through
	require.NoError(store.Renew(ctx, lease, &next))
}

func TestLeaseStore_StaleOpLockIsReclaimed(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	store, err := Provide(ParamsType{Dir: dir, ServiceName: "svc"})
	require.NoError(err)

	ctx := context.Background()
	lease := &leadership.Lease{HolderIdentity: "alpha", AcquireTime: time.Now(), RenewTime: time.Now(), LeaseDuration: 30 * time.Second}
	require.NoError(store.Create(ctx, lease))

	// a writer crashed mid-operation long ago
	lockPath := filepath.Join(dir, leadership.DefaultNamespace, "svc"+leaseFileSuffix+lockFileSuffix)
	require.NoError(os.WriteFile(lockPath, nil, fileMode_rw_rw_rw_))
	old := time.Now().Add(-2 * staleLockAge)
	require.NoError(os.Chtimes(lockPath, old, old))

	next := *lease
	next.RenewTime = time.Now()
	require.NoError(store.Renew(ctx, lease, &next))
}

func TestLeaseStore_CorruptedFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	store, err := Provide(ParamsType{Dir: dir, ServiceName: "svc"})
	require.NoError(err)

	leasePath := filepath.Join(dir, leadership.DefaultNamespace, "svc"+leaseFileSuffix)
	require.NoError(os.WriteFile(leasePath, []byte("{not json"), fileMode_rw_rw_rw_))

	_, err = store.Get(context.Background())
	require.Error(err)
	require.NotErrorIs(err, leadership.ErrLeaseNotFound)
	require.NotErrorIs(err, leadership.ErrLeaseConflict)
}

func TestLeaseStore_NoTempLeftovers(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	store, err := Provide(ParamsType{Dir: dir, ServiceName: "svc"})
	require.NoError(err)

	ctx := context.Background()
	lease := &leadership.Lease{HolderIdentity: "alpha", AcquireTime: time.Now(), RenewTime: time.Now(), LeaseDuration: 30 * time.Second}
	require.NoError(store.Create(ctx, lease))
	for i := 0; i < 5; i++ {
		next := *lease
		next.RenewTime = time.Now()
		require.NoError(store.Renew(ctx, lease, &next))
	}

	entries, err := os.ReadDir(filepath.Join(dir, leadership.DefaultNamespace))
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal("svc"+leaseFileSuffix, entries[0].Name())
}
