/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package leadership

import (
	"errors"
	"fmt"
)

var (
	// ErrLeaseNotFound is returned by ILeaseStore.Get when no lease record exists.
	ErrLeaseNotFound = errors.New("lease not found")

	// ErrLeaseConflict reports a lost create/renew/acquire race. Not a failure:
	// the election loop handles it by remaining (or becoming) a follower.
	ErrLeaseConflict = errors.New("lease conflict")

	ErrInvalidConfig          = errors.New("invalid leadership config")
	ErrInvalidValidationToken = fmt.Errorf("%w: validation token mismatch", ErrInvalidConfig)

	ErrAlreadyStarted = errors.New("leadership service already started")
)
