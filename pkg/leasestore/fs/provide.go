/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package fs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/voedger/leadership/pkg/leadership"
)

func Provide(params ParamsType) (leadership.ILeaseStore, error) {
	if params.Dir == "" {
		return nil, errors.New("params.Dir can not be empty")
	}
	if params.ServiceName == "" {
		return nil, errors.New("params.ServiceName can not be empty")
	}
	namespace := params.Namespace
	if namespace == "" {
		namespace = leadership.DefaultNamespace
	}
	dir := filepath.Join(params.Dir, namespace)
	if err := os.MkdirAll(dir, fileMode_rwxrwxrwx); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, params.ServiceName+leaseFileSuffix)
	return &leaseStoreType{
		path:     path,
		lockPath: path + lockFileSuffix,
	}, nil
}
