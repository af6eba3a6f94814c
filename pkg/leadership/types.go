/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"fmt"
	"time"
)

// Lease is the shared mutual-exclusion record kept in the lease store.
type Lease struct {
	HolderIdentity string        `json:"holderIdentity"`
	AcquireTime    time.Time     `json:"acquireTime"`
	RenewTime      time.Time     `json:"renewTime"`
	LeaseDuration  time.Duration `json:"leaseDuration"`
}

func (l *Lease) HasHolder() bool {
	return l != nil && l.HolderIdentity != ""
}

// IsExpired reports whether the validity window counted from the last renewal has passed.
func (l *Lease) IsExpired(now time.Time) bool {
	return now.After(l.RenewTime.Add(l.LeaseDuration))
}

func (l *Lease) String() string {
	return fmt.Sprintf("holder=%s renewed=%s duration=%s", l.HolderIdentity, l.RenewTime.Format(time.RFC3339), l.LeaseDuration)
}

type State string

const (
	StateCandidate   State = "CANDIDATE"
	StateLeader      State = "LEADER"
	StateFollower    State = "FOLLOWER"
	StateUnavailable State = "UNAVAILABLE"
)

// LeadershipInfo is the local, per-process view of the election. It is mutated only by
// the election loop (health fields by the heartbeat loop); accessors return copies.
type LeadershipInfo struct {
	IsLeader       bool   `json:"isLeader"`
	LeaderIdentity string `json:"leaderIdentity,omitempty"`
	State          State  `json:"state"`

	// LeadershipAcquiredAt is zero unless this process became leader at least once.
	LeadershipAcquiredAt time.Time `json:"leadershipAcquiredAt,omitempty"`
	LeaseExpiresAt       time.Time `json:"leaseExpiresAt,omitempty"`

	// ElectionCount increments on each transition of this process into LEADER,
	// never on renewals.
	ElectionCount int `json:"electionCount"`

	LastHeartbeat time.Time `json:"lastHeartbeat,omitempty"`
	HealthStatus  string    `json:"healthStatus"`
}

// HealthStatus is the snapshot served to liveness/readiness probes.
type HealthStatus struct {
	ServiceName          string    `json:"serviceName"`
	Identity             string    `json:"identity"`
	IsLeader             bool      `json:"isLeader"`
	LeaderIdentity       string    `json:"leaderIdentity,omitempty"`
	State                State     `json:"state"`
	Status               string    `json:"status"`
	LastHeartbeat        time.Time `json:"lastHeartbeat,omitempty"`
	LeadershipAcquiredAt time.Time `json:"leadershipAcquiredAt,omitempty"`
	ElectionCount        int       `json:"electionCount"`
	ValidationToken      string    `json:"validationToken"`
	BackendKind          string    `json:"backendKind"`
}

// Config is immutable after Provide.
type Config struct {
	// ServiceName scopes the lease; replicas of the same singleton service must share it.
	ServiceName string
	// Namespace isolates services with equal names. Defaults to DefaultNamespace.
	Namespace string
	// Identity must be unique across all replicas. Defaults to DefaultIdentity().
	Identity string

	LeaseDuration       time.Duration
	RenewDeadline       time.Duration
	RetryPeriod         time.Duration
	HealthCheckInterval time.Duration

	// ValidationToken must equal the ValidationToken constant. A config-integrity
	// sanity check against deployment drift, not a security credential.
	ValidationToken string

	// OnStartedLeading is invoked exactly once per acquisition, after the transition
	// into LEADER. The owning application starts its exclusive workload here.
	OnStartedLeading func(identity string)
	// OnStoppedLeading is invoked exactly once per loss of leadership.
	OnStoppedLeading func(identity string)
	// OnNewLeader is invoked when another instance is observed as leader for the first
	// time or the observed leader changes.
	OnNewLeader func(newLeaderIdentity string)
}

func (cfg *Config) setDefaults() {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Identity == "" {
		cfg.Identity = DefaultIdentity()
	}
	if cfg.LeaseDuration == 0 {
		cfg.LeaseDuration = DefaultLeaseDuration
	}
	if cfg.RenewDeadline == 0 {
		cfg.RenewDeadline = DefaultRenewDeadline
	}
	if cfg.RetryPeriod == 0 {
		cfg.RetryPeriod = DefaultRetryPeriod
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.OnStartedLeading == nil {
		cfg.OnStartedLeading = func(string) {}
	}
	if cfg.OnStoppedLeading == nil {
		cfg.OnStoppedLeading = func(string) {}
	}
	if cfg.OnNewLeader == nil {
		cfg.OnNewLeader = func(string) {}
	}
}

func (cfg *Config) validate() error {
	if cfg.ServiceName == "" {
		return fmt.Errorf("%w: service name must not be empty", ErrInvalidConfig)
	}
	if cfg.LeaseDuration <= 0 || cfg.RenewDeadline <= 0 || cfg.RetryPeriod <= 0 || cfg.HealthCheckInterval <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidConfig)
	}
	if cfg.RenewDeadline >= cfg.LeaseDuration {
		return fmt.Errorf("%w: renew deadline %s must be less than lease duration %s", ErrInvalidConfig, cfg.RenewDeadline, cfg.LeaseDuration)
	}
	if cfg.RetryPeriod > cfg.RenewDeadline {
		return fmt.Errorf("%w: retry period %s must not exceed renew deadline %s", ErrInvalidConfig, cfg.RetryPeriod, cfg.RenewDeadline)
	}
	if cfg.ValidationToken != ValidationToken {
		return ErrInvalidValidationToken
	}
	return nil
}
