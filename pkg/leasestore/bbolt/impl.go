/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"context"
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/voedger/leadership/pkg/leadership"
)

// leaseStoreType keeps the lease in a bbolt file. Conditional semantics come from
// bbolt's serialized update transactions: each operation is a single read-check-write
// inside one db.Update.
type leaseStoreType struct {
	db  *bolt.DB
	key []byte
}

func (s *leaseStoreType) Get(_ context.Context) (*leadership.Lease, error) {
	var lease *leadership.Lease
	err := s.db.View(func(tx *bolt.Tx) error {
		data, err := getLease(tx, s.key)
		if err != nil {
			return err
		}
		if data == nil {
			return leadership.ErrLeaseNotFound
		}
		lease = &leadership.Lease{}
		return json.Unmarshal(data, lease)
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *leaseStoreType) Create(_ context.Context, lease *leadership.Lease) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := getLease(tx, s.key)
		if err != nil {
			return err
		}
		if data != nil {
			return leadership.ErrLeaseConflict
		}
		return putLease(tx, s.key, lease)
	})
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
	return s.db.Update(func(tx *bolt.Tx) error {
		current, err := currentLease(tx, s.key)
		if err != nil {
			return err
		}
		if current == nil || current.HolderIdentity != prev.HolderIdentity {
			return leadership.ErrLeaseConflict
		}
		if matchRenewTime && !current.RenewTime.Equal(prev.RenewTime) {
			return leadership.ErrLeaseConflict
		}
		return putLease(tx, s.key, next)
	})
}

func (s *leaseStoreType) Release(_ context.Context, holderIdentity string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		current, err := currentLease(tx, s.key)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if current.HolderIdentity != holderIdentity {
			return leadership.ErrLeaseConflict
		}
		bucket := tx.Bucket([]byte(leasesBucketName))
		if bucket == nil {
			return ErrLeasesBucketNotFound
		}
		return bucket.Delete(s.key)
	})
}

func (s *leaseStoreType) Kind() string { return "bbolt" }

func getLease(tx *bolt.Tx, key []byte) ([]byte, error) {
	bucket := tx.Bucket([]byte(leasesBucketName))
	if bucket == nil {
		return nil, ErrLeasesBucketNotFound
	}
	return bucket.Get(key), nil
}

func currentLease(tx *bolt.Tx, key []byte) (*leadership.Lease, error) {
	data, err := getLease(tx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	lease := &leadership.Lease{}
	if err := json.Unmarshal(data, lease); err != nil {
		return nil, err
	}
	return lease, nil
}

func putLease(tx *bolt.Tx, key []byte, lease *leadership.Lease) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	bucket := tx.Bucket([]byte(leasesBucketName))
	if bucket == nil {
		return ErrLeasesBucketNotFound
	}
	return bucket.Put(key, data)
}
