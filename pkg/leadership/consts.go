/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import "time"

const (
	DefaultNamespace           = "default"
	DefaultLeaseDuration       = 30 * time.Second
	DefaultRenewDeadline       = 10 * time.Second
	DefaultRetryPeriod         = 5 * time.Second
	DefaultHealthCheckInterval = 5 * time.Second

	// ValidationToken is the constant every deployment must carry in Config.ValidationToken.
	ValidationToken = "leadership-coordinator-v1"

	// bounds the best-effort lease release on Stop()
	releaseTimeout = 5 * time.Second
)

// Health status values computed by the heartbeat loop.
const (
	HealthStatusHealthy       = "healthy"
	HealthStatusUnhealthy     = "unhealthy"
	HealthStatusStopped       = "stopped"
	HealthStatusLeaseLost     = "lease_lost"
	HealthStatusConfigInvalid = "config_invalid"
)
