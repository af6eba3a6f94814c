/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package mem

import (
	"testing"

	"github.com/voedger/leadership/pkg/leadership"
)

func TestLeaseStore_TCK(t *testing.T) {
	leadership.StoreCompatibilityKit(t, func(t *testing.T) leadership.ILeaseStore {
		return Provide()
	})
}
