/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package cas

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/voedger/leadership/pkg/leadership"
)

// leaseStoreType maps the lease-store capability onto Cassandra lightweight
// transactions: IF NOT EXISTS / IF holder_identity = ? (AND renew_time = ? on
// takeover) give linearizable conditional writes, and a not-applied outcome is exactly
// the distinguishable "lost the race" signal the election loop needs.
//
// Cassandra timestamps carry millisecond precision, so all lease times are truncated
// to milliseconds on write.
type leaseStoreType struct {
	session   *gocql.Session
	keyspace  string
	namespace string
	service   string
}

func (s *leaseStoreType) Get(ctx context.Context) (*leadership.Lease, error) {
	var (
		holder   string
		acquire  time.Time
		renew    time.Time
		duration int64
	)
	err := s.session.Query(fmt.Sprintf(
		"select holder_identity, acquire_time, renew_time, lease_duration_ns from %s.leases where namespace = ? and service = ?",
		s.keyspace), s.namespace, s.service).
		WithContext(ctx).
		Scan(&holder, &acquire, &renew, &duration)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, leadership.ErrLeaseNotFound
		}
		return nil, err
	}
	return &leadership.Lease{
		HolderIdentity: holder,
		AcquireTime:    acquire,
		RenewTime:      renew,
		LeaseDuration:  time.Duration(duration),
	}, nil
}

func (s *leaseStoreType) Create(ctx context.Context, lease *leadership.Lease) error {
	applied, err := s.session.Query(fmt.Sprintf(
		"insert into %s.leases (namespace, service, holder_identity, acquire_time, renew_time, lease_duration_ns) values (?, ?, ?, ?, ?, ?) if not exists using ttl ?",
		s.keyspace),
		s.namespace, s.service,
		lease.HolderIdentity,
		lease.AcquireTime.Truncate(time.Millisecond),
		lease.RenewTime.Truncate(time.Millisecond),
		int64(lease.LeaseDuration),
		rowTTLSeconds(lease.LeaseDuration)).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return leadership.ErrLeaseConflict
	}
	return nil
}

func (s *leaseStoreType) Renew(ctx context.Context, prev *leadership.Lease, next *leadership.Lease) error {
	applied, err := s.session.Query(fmt.Sprintf(
		"update %s.leases using ttl ? set holder_identity = ?, acquire_time = ?, renew_time = ?, lease_duration_ns = ? where namespace = ? and service = ? if holder_identity = ?",
		s.keyspace),
		rowTTLSeconds(next.LeaseDuration),
		next.HolderIdentity,
		next.AcquireTime.Truncate(time.Millisecond),
		next.RenewTime.Truncate(time.Millisecond),
		int64(next.LeaseDuration),
		s.namespace, s.service,
		prev.HolderIdentity).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return leadership.ErrLeaseConflict
	}
	return nil
}

// Acquire additionally conditions on renew_time so that an acquirer whose view went
// stale (the holder renewed after the acquirer's read) loses the LWT.
func (s *leaseStoreType) Acquire(ctx context.Context, prev *leadership.Lease, next *leadership.Lease) error {
	applied, err := s.session.Query(fmt.Sprintf(
		"update %s.leases using ttl ? set holder_identity = ?, acquire_time = ?, renew_time = ?, lease_duration_ns = ? where namespace = ? and service = ? if holder_identity = ? and renew_time = ?",
		s.keyspace),
		rowTTLSeconds(next.LeaseDuration),
		next.HolderIdentity,
		next.AcquireTime.Truncate(time.Millisecond),
		next.RenewTime.Truncate(time.Millisecond),
		int64(next.LeaseDuration),
		s.namespace, s.service,
		prev.HolderIdentity,
		prev.RenewTime.Truncate(time.Millisecond)).
		WithContext(ctx).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return leadership.ErrLeaseConflict
	}
	return nil
}

func (s *leaseStoreType) Release(ctx context.Context, holderIdentity string) error {
	previous := map[string]interface{}{}
	applied, err := s.session.Query(fmt.Sprintf(
		"delete from %s.leases where namespace = ? and service = ? if holder_identity = ?",
		s.keyspace), s.namespace, s.service, holderIdentity).
		WithContext(ctx).
		MapScanCAS(previous)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	// not applied with no previous row means the lease is already gone
	if _, exists := previous["holder_identity"]; !exists {
		return nil
	}
	return leadership.ErrLeaseConflict
}

func (s *leaseStoreType) Kind() string { return "cas" }

func rowTTLSeconds(leaseDuration time.Duration) int {
	ttl := leaseRowTTLFactor * int(leaseDuration.Seconds())
	if ttl < 1 {
		// below one second no TTL at all: never let the GC outrun the takeover window
		return 0
	}
	return ttl
}
