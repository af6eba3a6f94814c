/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"context"
	"sync"
)

// mockLeaseStore is a thread-safe in-memory ILeaseStore used by engine tests.
// failure forces every operation to fail with that error (store outage);
// onBeforeRenew and afterOp are test synchronization hooks.
type mockLeaseStore struct {
	mu            sync.Mutex
	lease         *Lease
	failure       error
	onBeforeRenew func()
	afterOp       func(op string)
}

func newMockLeaseStore() *mockLeaseStore {
	return &mockLeaseStore{}
}

func (m *mockLeaseStore) setFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *mockLeaseStore) setLease(lease *Lease) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lease == nil {
		m.lease = nil
		return
	}
	cp := *lease
	m.lease = &cp
}

func (m *mockLeaseStore) getLease() *Lease {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lease == nil {
		return nil
	}
	cp := *m.lease
	return &cp
}

func (m *mockLeaseStore) notify(op string) {
	if m.afterOp != nil {
		m.afterOp(op)
	}
}

func (m *mockLeaseStore) Get(_ context.Context) (*Lease, error) {
	defer m.notify("get")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	if m.lease == nil {
		return nil, ErrLeaseNotFound
	}
	cp := *m.lease
	return &cp, nil
}

func (m *mockLeaseStore) Create(_ context.Context, lease *Lease) error {
	defer m.notify("create")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if m.lease != nil {
		return ErrLeaseConflict
	}
	cp := *lease
	m.lease = &cp
	return nil
}

func (m *mockLeaseStore) Renew(_ context.Context, prev *Lease, next *Lease) error {
	if m.onBeforeRenew != nil {
		m.onBeforeRenew()
	}
	defer m.notify("renew")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if m.lease == nil || m.lease.HolderIdentity != prev.HolderIdentity {
		return ErrLeaseConflict
	}
	cp := *next
	m.lease = &cp
	return nil
}

func (m *mockLeaseStore) Acquire(_ context.Context, prev *Lease, next *Lease) error {
	defer m.notify("acquire")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if m.lease == nil || m.lease.HolderIdentity != prev.HolderIdentity || !m.lease.RenewTime.Equal(prev.RenewTime) {
		return ErrLeaseConflict
	}
	cp := *next
	m.lease = &cp
	return nil
}

func (m *mockLeaseStore) Release(_ context.Context, holderIdentity string) error {
	defer m.notify("release")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return m.failure
	}
	if m.lease == nil {
		return nil
	}
	if m.lease.HolderIdentity != holderIdentity {
		return ErrLeaseConflict
	}
	m.lease = nil
	return nil
}

func (m *mockLeaseStore) Kind() string { return "mock" }
