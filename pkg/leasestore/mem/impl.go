/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package mem

import (
	"context"
	"sync"

	"github.com/voedger/leadership/pkg/leadership"
)

// leaseStoreType keeps the lease record in process memory. Useful for examples and
// single-process deployments; provides no cross-process mutual exclusion.
type leaseStoreType struct {
	mu    sync.Mutex
	lease *leadership.Lease
}

func (s *leaseStoreType) Get(_ context.Context) (*leadership.Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease == nil {
		return nil, leadership.ErrLeaseNotFound
	}
	cp := *s.lease
	return &cp, nil
}

func (s *leaseStoreType) Create(_ context.Context, lease *leadership.Lease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease != nil {
		return leadership.ErrLeaseConflict
	}
	cp := *lease
	s.lease = &cp
	return nil
}

func (s *leaseStoreType) Renew(_ context.Context, prev *leadership.Lease, next *leadership.Lease) error {
	return s.replaceIf(prev, next, false)
}

func (s *leaseStoreType) Acquire(_ context.Context, prev *leadership.Lease, next *leadership.Lease) error {
	return s.replaceIf(prev, next, true)
}

// matchRenewTime guards takeovers: an acquirer whose view went stale (the holder
// renewed after the acquirer's Get) must lose.
func (s *leaseStoreType) replaceIf(prev *leadership.Lease, next *leadership.Lease, matchRenewTime bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease == nil || s.lease.HolderIdentity != prev.HolderIdentity {
		return leadership.ErrLeaseConflict
	}
	if matchRenewTime && !s.lease.RenewTime.Equal(prev.RenewTime) {
		return leadership.ErrLeaseConflict
	}
	cp := *next
	s.lease = &cp
	return nil
}

func (s *leaseStoreType) Release(_ context.Context, holderIdentity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lease == nil {
		return nil
	}
	if s.lease.HolderIdentity != holderIdentity {
		return leadership.ErrLeaseConflict
	}
	s.lease = nil
	return nil
}

func (s *leaseStoreType) Kind() string { return "mem" }
