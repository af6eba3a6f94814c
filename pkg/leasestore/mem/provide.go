/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package mem

import (
	"github.com/voedger/leadership/pkg/leadership"
)

func Provide() leadership.ILeaseStore {
	return &leaseStoreType{}
}
