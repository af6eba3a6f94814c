/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

// Package fs is the shared-filesystem fallback lease store. The lease is a JSON file
// replaced via temp-file-then-rename; conditional semantics are serialized through a
// short-lived O_EXCL lock file next to it.
//
// Both mechanisms are atomic on local/POSIX filesystems. Over some network
// filesystems rename and O_EXCL are weaker, and a losing writer may not reliably
// distinguish "someone else just won" from an I/O error. Treat this store as best
// effort and prefer the Cassandra store whenever one is reachable.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voedger/leadership/pkg/leadership"
)

type ParamsType struct {
	// Dir is the directory shared by all candidate processes.
	Dir         string
	Namespace   string
	ServiceName string
}

type leaseStoreType struct {
	path     string
	lockPath string
}

func (s *leaseStoreType) Get(_ context.Context) (*leadership.Lease, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, leadership.ErrLeaseNotFound
		}
		return nil, err
	}
	lease := &leadership.Lease{}
	if err := json.Unmarshal(data, lease); err != nil {
		return nil, fmt.Errorf("corrupted lease file %s: %w", s.path, err)
	}
	return lease, nil
}

func (s *leaseStoreType) Create(_ context.Context, lease *leadership.Lease) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(s.path); err == nil {
		return leadership.ErrLeaseConflict
	} else if !os.IsNotExist(err) {
		return err
	}
	return s.write(lease)
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
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.Get(context.Background())
	if err != nil {
		if errors.Is(err, leadership.ErrLeaseNotFound) {
			return leadership.ErrLeaseConflict
		}
		return err
	}
	if current.HolderIdentity != prev.HolderIdentity {
		return leadership.ErrLeaseConflict
	}
	if matchRenewTime && !current.RenewTime.Equal(prev.RenewTime) {
		return leadership.ErrLeaseConflict
	}
	return s.write(next)
}

func (s *leaseStoreType) Release(_ context.Context, holderIdentity string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	current, err := s.Get(context.Background())
	if err != nil {
		if errors.Is(err, leadership.ErrLeaseNotFound) {
			return nil
		}
		return err
	}
	if current.HolderIdentity != holderIdentity {
		return leadership.ErrLeaseConflict
	}
	return os.Remove(s.path)
}

func (s *leaseStoreType) Kind() string { return "fs" }

// lock takes the per-lease op lock via O_EXCL, which is what makes read-check-write
// sequences conditional. A held lock means a concurrent writer is mid-operation, which
// we report as a lost race; a lock older than staleLockAge is reclaimed.
func (s *leaseStoreType) lock() (unlock func(), err error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(s.lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode_rw_rw_rw_)
		if err == nil {
			f.Close()
			return func() { os.Remove(s.lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		st, statErr := os.Stat(s.lockPath)
		if statErr != nil {
			// the holder finished between our open and stat
			continue
		}
		if time.Since(st.ModTime()) > staleLockAge {
			_ = os.Remove(s.lockPath)
			continue
		}
		return nil, leadership.ErrLeaseConflict
	}
	return nil, leadership.ErrLeaseConflict
}

// write replaces the lease file atomically: full record to a temp file in the same
// directory, fsync, rename into place. Readers never observe a partial record.
func (s *leaseStoreType) write(lease *leadership.Lease) error {
	data, err := json.Marshal(lease)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), tmpFilePattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
