/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"context"
)

// ILeadership is the public facade of the leader-election coordinator.
// One instance coordinates one lease, identified by Config.Namespace + Config.ServiceName.
type ILeadership interface {
	// Start spawns the election loop and the heartbeat loop and returns immediately.
	// Returns ErrAlreadyStarted on repeated calls.
	Start() error

	// Stop cancels both loops, waits for them to finish and, if this instance is the
	// leader, releases the lease (best effort, bounded by releaseTimeout) so that a
	// standby can take over without waiting out the lease duration. Idempotent.
	Stop()

	// IsLeader reports whether this instance currently holds the lease.
	IsLeader() bool

	// LeaderIdentity returns the identity of the last observed leader.
	// ok is false when no leader is known yet.
	LeaderIdentity() (identity string, ok bool)

	// LeadershipInfo returns a read-only snapshot of the local election state.
	LeadershipInfo() LeadershipInfo

	// HealthStatus returns the snapshot consumed by liveness/readiness probes.
	HealthStatus() HealthStatus
}

// ILeaseStore is the capability used by the election loop to manipulate the shared
// lease record. An implementation is bound to exactly one lease at construction time.
//
// Conflict outcomes (lost a create/renew/acquire race) are reported as ErrLeaseConflict
// and must be distinguishable via errors.Is from availability errors, so the election
// loop can tell "someone else won" apart from "store unreachable".
type ILeaseStore interface {
	// Get returns the current lease record. ErrLeaseNotFound if there is none.
	Get(ctx context.Context) (*Lease, error)

	// Create writes a brand-new lease record. ErrLeaseConflict if a record already
	// exists, i.e. another candidate created it concurrently.
	Create(ctx context.Context, lease *Lease) error

	// Renew replaces the lease with next, but only if prev.HolderIdentity is still the
	// recorded holder at apply time. ErrLeaseConflict otherwise.
	Renew(ctx context.Context, prev *Lease, next *Lease) error

	// Acquire claims a lease currently recorded for prev.HolderIdentity with
	// prev.RenewTime still in place (expiry is the caller's concern). ErrLeaseConflict
	// if a concurrent acquirer won the race, or if the holder renewed between the
	// caller's Get and this call.
	Acquire(ctx context.Context, prev *Lease, next *Lease) error

	// Release deletes the lease if holderIdentity is the recorded holder.
	// Returns nil when the lease is already gone, ErrLeaseConflict when it is held by
	// someone else.
	Release(ctx context.Context, holderIdentity string) error

	// Kind identifies the backing store ("cas", "bbolt", "fs", "mem") for health reporting.
	Kind() string
}
