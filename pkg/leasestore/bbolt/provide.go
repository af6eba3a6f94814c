/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"errors"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/voedger/leadership/pkg/leadership"
)

type ParamsType struct {
	// DBDir hosts one database file per namespace.
	DBDir string
}

// Provide opens (creating if needed) the namespace database and returns a store bound
// to the service lease plus a cleanup function closing the database.
func Provide(params ParamsType, namespace, serviceName string) (store leadership.ILeaseStore, cleanup func(), err error) {
	if params.DBDir == "" {
		return nil, nil, errors.New("params.DBDir can not be empty")
	}
	if serviceName == "" {
		return nil, nil, errors.New("serviceName can not be empty")
	}
	if namespace == "" {
		namespace = leadership.DefaultNamespace
	}
	if err := os.MkdirAll(params.DBDir, fileMode_rwxrwxrwx); err != nil {
		return nil, nil, err
	}
	dbName := filepath.Join(params.DBDir, namespace+dbFileSuffix)
	db, err := bolt.Open(dbName, fileMode_rw_rw_rw_, bolt.DefaultOptions)
	if err != nil {
		return nil, nil, err
	}
	if err := initDB(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return &leaseStoreType{db: db, key: []byte(serviceName)}, func() { db.Close() }, nil
}

func initDB(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(leasesBucketName))
		return err
	})
}
