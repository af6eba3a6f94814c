/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"os"

	"github.com/google/uuid"
)

// DefaultIdentity generates a candidate identity that is unique across replicas and
// stable for the lifetime of the process.
func DefaultIdentity() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return host + "_" + uuid.NewString()
}
