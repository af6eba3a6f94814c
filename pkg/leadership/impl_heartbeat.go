/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

// runHeartbeat is the liveness loop: one tick immediately, then one per
// HealthCheckInterval. It never mutates leadership state, only the health fields.
func (s *leadershipService) runHeartbeat() {
	defer s.wg.Done()
	s.heartbeat()
	timer := s.clock.NewTimerChan(s.cfg.HealthCheckInterval)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer:
			s.heartbeat()
			timer = s.clock.NewTimerChan(s.cfg.HealthCheckInterval)
		}
	}
}

func (s *leadershipService) heartbeat() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info.LastHeartbeat = now
	status := HealthStatusHealthy
	switch {
	case s.cfg.ValidationToken != ValidationToken:
		status = HealthStatusConfigInvalid
	case s.info.State == StateUnavailable:
		status = HealthStatusUnhealthy
	case s.info.IsLeader && (s.observed == nil || s.observed.HolderIdentity != s.cfg.Identity || s.observed.IsExpired(now)):
		status = HealthStatusLeaseLost
	}
	s.info.HealthStatus = status
}

func (s *leadershipService) HealthStatus() HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HealthStatus{
		ServiceName:          s.cfg.ServiceName,
		Identity:             s.cfg.Identity,
		IsLeader:             s.info.IsLeader,
		LeaderIdentity:       s.info.LeaderIdentity,
		State:                s.info.State,
		Status:               s.info.HealthStatus,
		LastHeartbeat:        s.info.LastHeartbeat,
		LeadershipAcquiredAt: s.info.LeadershipAcquiredAt,
		ElectionCount:        s.info.ElectionCount,
		ValidationToken:      s.cfg.ValidationToken,
		BackendKind:          s.store.Kind(),
	}
}
