/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package cas

import "time"

const (
	DefaultKeyspace = "leadership"

	// SimpleWithReplication is suitable for dev/single-DC deployments
	SimpleWithReplication = "{ 'class' : 'SimpleStrategy', 'replication_factor' : 1 }"

	connectionTimeout = 30 * time.Second
	defaultNumRetries = 3

	// the row TTL is a garbage collector, not the expiry mechanism: it must outlive
	// the takeover window (lease duration + retry period) by a wide margin
	leaseRowTTLFactor = 4
)
