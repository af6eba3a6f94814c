/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/untillpro/goutils/logger"

	"github.com/voedger/leadership/pkg/timeu"
)

type leadershipService struct {
	cfg   Config
	store ILeaseStore
	clock timeu.ITime

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	info     LeadershipInfo
	observed *Lease // last lease read from or written to the store
	started  bool
	stopped  bool
}

func (s *leadershipService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return ErrAlreadyStarted
	}
	s.started = true
	logger.Info(fmt.Sprintf("%s/%s: starting leader election, identity=%s, store=%s",
		s.cfg.Namespace, s.cfg.ServiceName, s.cfg.Identity, s.store.Kind()))
	s.wg.Add(2)
	go s.runElections()
	go s.runHeartbeat()
	return nil
}

func (s *leadershipService) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.info.HealthStatus = HealthStatusStopped
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	// single-threaded from here on: both loops have terminated
	s.mu.Lock()
	wasLeader := s.info.IsLeader
	s.info.IsLeader = false
	if wasLeader {
		s.info.State = StateFollower
	}
	s.info.HealthStatus = HealthStatusStopped
	s.mu.Unlock()

	if wasLeader {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := s.store.Release(ctx, s.cfg.Identity); err != nil {
			logger.Error(fmt.Sprintf("%s/%s: lease release failed: %v", s.cfg.Namespace, s.cfg.ServiceName, err))
		} else {
			logger.Info(fmt.Sprintf("%s/%s: lease released", s.cfg.Namespace, s.cfg.ServiceName))
		}
		s.invoke(s.cfg.OnStoppedLeading, s.cfg.Identity)
	}
}

func (s *leadershipService) IsLeader() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.IsLeader
}

func (s *leadershipService) LeaderIdentity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.LeaderIdentity, s.info.LeaderIdentity != ""
}

func (s *leadershipService) LeadershipInfo() LeadershipInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// runElections is the reconciliation loop: one electCycle immediately, then one per
// RetryPeriod until the service is stopped.
func (s *leadershipService) runElections() {
	defer s.wg.Done()
	s.electCycle()
	timer := s.clock.NewTimerChan(s.cfg.RetryPeriod)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer:
			s.electCycle()
			timer = s.clock.NewTimerChan(s.cfg.RetryPeriod)
		}
	}
}

func (s *leadershipService) electCycle() {
	now := s.clock.Now()
	lease, err := s.store.Get(s.ctx)
	switch {
	case err == nil:
		// fallthrough to the reconciliation below
	case errors.Is(err, ErrLeaseNotFound):
		s.tryCreate(now)
		return
	default:
		s.toUnavailable(err)
		return
	}

	if lease.HolderIdentity == s.cfg.Identity {
		s.tryRenew(lease, now)
		return
	}
	if lease.IsExpired(now) {
		s.tryTakeover(lease, now)
		return
	}
	s.observe(lease)
	s.toFollower(lease.HolderIdentity)
}

func (s *leadershipService) tryCreate(now time.Time) {
	lease := &Lease{
		HolderIdentity: s.cfg.Identity,
		AcquireTime:    now,
		RenewTime:      now,
		LeaseDuration:  s.cfg.LeaseDuration,
	}
	err := s.store.Create(s.ctx, lease)
	switch {
	case err == nil:
		s.observe(lease)
		s.toLeader(now)
	case errors.Is(err, ErrLeaseConflict):
		logger.Verbose(fmt.Sprintf("%s/%s: lost lease creation race", s.cfg.Namespace, s.cfg.ServiceName))
		s.standDown()
	default:
		s.toUnavailable(err)
	}
}

func (s *leadershipService) tryRenew(lease *Lease, now time.Time) {
	next := *lease
	next.RenewTime = now
	err := s.store.Renew(s.ctx, lease, &next)
	switch {
	case err == nil:
		logger.Verbose(fmt.Sprintf("%s/%s: lease renewed", s.cfg.Namespace, s.cfg.ServiceName))
		s.observe(&next)
		s.toLeader(now)
	case errors.Is(err, ErrLeaseConflict):
		// we may no longer hold the lease and must not act as leader
		logger.Warning(fmt.Sprintf("%s/%s: lease renewal conflict, demoting", s.cfg.Namespace, s.cfg.ServiceName))
		s.observe(nil)
		s.toFollower("")
	default:
		s.toUnavailable(err)
	}
}

func (s *leadershipService) tryTakeover(lease *Lease, now time.Time) {
	next := &Lease{
		HolderIdentity: s.cfg.Identity,
		AcquireTime:    now,
		RenewTime:      now,
		LeaseDuration:  s.cfg.LeaseDuration,
	}
	err := s.store.Acquire(s.ctx, lease, next)
	switch {
	case err == nil:
		logger.Info(fmt.Sprintf("%s/%s: took over expired lease from %s", s.cfg.Namespace, s.cfg.ServiceName, lease.HolderIdentity))
		s.observe(next)
		s.toLeader(now)
	case errors.Is(err, ErrLeaseConflict):
		// a concurrent acquirer won; record the new holder if it is already readable
		holder := ""
		if current, getErr := s.store.Get(s.ctx); getErr == nil {
			s.observe(current)
			holder = current.HolderIdentity
		}
		s.toFollower(holder)
	default:
		s.toUnavailable(err)
	}
}

// toLeader is idempotent per cycle; callbacks fire and ElectionCount increments only
// on the transition into LEADER.
func (s *leadershipService) toLeader(now time.Time) {
	s.mu.Lock()
	wasLeader := s.info.IsLeader
	s.info.IsLeader = true
	s.info.State = StateLeader
	s.info.LeaderIdentity = s.cfg.Identity
	if !wasLeader {
		s.info.LeadershipAcquiredAt = now
		s.info.ElectionCount++
	}
	s.mu.Unlock()

	if !wasLeader {
		logger.Info(fmt.Sprintf("%s/%s: became leader, identity=%s", s.cfg.Namespace, s.cfg.ServiceName, s.cfg.Identity))
		s.invoke(s.cfg.OnStartedLeading, s.cfg.Identity)
	}
}

func (s *leadershipService) toFollower(holder string) {
	s.mu.Lock()
	wasLeader := s.info.IsLeader
	prevLeader := s.info.LeaderIdentity
	s.info.IsLeader = false
	s.info.State = StateFollower
	s.info.LeaderIdentity = holder
	s.mu.Unlock()

	if wasLeader {
		logger.Info(fmt.Sprintf("%s/%s: lost leadership", s.cfg.Namespace, s.cfg.ServiceName))
		s.invoke(s.cfg.OnStoppedLeading, s.cfg.Identity)
	}
	if holder != "" && holder != prevLeader && holder != s.cfg.Identity {
		logger.Info(fmt.Sprintf("%s/%s: observed new leader %s", s.cfg.Namespace, s.cfg.ServiceName, holder))
		s.invoke(s.cfg.OnNewLeader, holder)
	}
}

// standDown handles a lost creation race: a leader is demoted, anyone else becomes a
// plain candidate again. The store answered, so UNAVAILABLE must not stick around.
func (s *leadershipService) standDown() {
	s.mu.Lock()
	isLeader := s.info.IsLeader
	if !isLeader {
		s.info.State = StateCandidate
	}
	s.mu.Unlock()
	if isLeader {
		s.toFollower("")
	}
}

func (s *leadershipService) toUnavailable(err error) {
	// Stop cancels in-flight store calls; that is shutdown, not a store outage, and
	// demoting here would make Stop skip the graceful lease release.
	if errors.Is(err, context.Canceled) {
		return
	}
	s.mu.Lock()
	wasLeader := s.info.IsLeader
	s.info.IsLeader = false
	s.info.State = StateUnavailable
	s.mu.Unlock()

	logger.Error(fmt.Sprintf("%s/%s: lease store unavailable: %v", s.cfg.Namespace, s.cfg.ServiceName, err))
	if wasLeader {
		s.invoke(s.cfg.OnStoppedLeading, s.cfg.Identity)
	}
}

// observe remembers the last lease state known to this process; the heartbeat loop
// uses it to detect a leader whose lease silently expired.
func (s *leadershipService) observe(lease *Lease) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lease == nil {
		s.observed = nil
		s.info.LeaseExpiresAt = time.Time{}
		return
	}
	cp := *lease
	s.observed = &cp
	s.info.LeaseExpiresAt = lease.RenewTime.Add(lease.LeaseDuration)
}

// invoke runs a user callback, recovering panics so the election loop's invariants
// hold regardless of hook behavior.
func (s *leadershipService) invoke(cb func(string), arg string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("%s/%s: leadership callback panicked: %v", s.cfg.Namespace, s.cfg.ServiceName, r))
		}
	}()
	cb(arg)
}
