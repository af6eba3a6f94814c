/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package bbolt

import "errors"

var ErrLeasesBucketNotFound = errors.New("leases bucket not found")
