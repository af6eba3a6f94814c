/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package cas

import (
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/voedger/leadership/pkg/leadership"
)

const (
	casDefaultHost = "127.0.0.1"
	casDefaultPort = 9042
)

func isCassandraAvailable() bool {
	_, ok := os.LookupEnv("CASSANDRA_TESTS_ENABLED")
	return ok
}

func hosts() string {
	value, ok := os.LookupEnv("ISTORAGE_CAS_HOSTS")
	if !ok {
		return casDefaultHost
	}
	return value
}

func port() int {
	value, ok := os.LookupEnv("ISTORAGE_CAS_PORT")
	if !ok {
		return casDefaultPort
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLeaseStore_TCK(t *testing.T) {
	if !isCassandraAvailable() {
		t.Skip()
	}
	casPar := CassandraParamsType{
		Hosts: hosts(),
		Port:  port(),
	}
	leadership.StoreCompatibilityKit(t, func(t *testing.T) leadership.ILeaseStore {
		// fresh namespace per subtest so every run starts with an empty lease
		store, cleanup, err := Provide(casPar, "tck-"+uuid.NewString(), "synthesis-worker")
		require.NoError(t, err)
		t.Cleanup(cleanup)
		return store
	})
}

func TestProvide_Validation(t *testing.T) {
	require := require.New(t)

	_, _, err := Provide(CassandraParamsType{}, "", "svc")
	require.Error(err)

	_, _, err = Provide(CassandraParamsType{Hosts: casDefaultHost}, "", "")
	require.Error(err)
}
