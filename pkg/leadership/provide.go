/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"context"

	"github.com/voedger/leadership/pkg/timeu"
)

// Provide constructs an ILeadership instance over the given lease store.
// Configuration errors (including a validation token mismatch) are fatal here;
// steady-state loops never surface errors to the caller.
func Provide(cfg Config, store ILeaseStore, clock timeu.ITime) (ILeadership, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timeu.NewITime()
	}
	s := &leadershipService{
		cfg:   cfg,
		store: store,
		clock: clock,
		info: LeadershipInfo{
			State:        StateCandidate,
			HealthStatus: HealthStatusHealthy,
		},
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}
