/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package fs

import (
	"os"
	"time"
)

const (
	fileMode_rw_rw_rw_ = os.FileMode(0666)
	fileMode_rwxrwxrwx = os.FileMode(0777)
	leaseFileSuffix    = ".json"
	lockFileSuffix     = ".lock"
	tmpFilePattern     = ".lease-*.tmp"

	// an op lock older than this is considered abandoned by a crashed writer
	staleLockAge = 10 * time.Second
)
