/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package bbolt

import "os"

const (
	leasesBucketName = "leases"

	fileMode_rw_rw_rw_ = os.FileMode(0666)
	fileMode_rwxrwxrwx = os.FileMode(0777)

	dbFileSuffix = ".db"
)
