/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package cas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gocql/gocql"

	"github.com/voedger/leadership/pkg/leadership"
)

// Provide connects to the cluster, bootstraps the keyspace and the leases table, and
// returns a store bound to the service lease plus a cleanup function closing the session.
func Provide(params CassandraParamsType, namespace, serviceName string) (store leadership.ILeaseStore, cleanup func(), err error) {
	if params.Hosts == "" {
		return nil, nil, errors.New("params.Hosts can not be empty")
	}
	if serviceName == "" {
		return nil, nil, errors.New("serviceName can not be empty")
	}
	if namespace == "" {
		namespace = leadership.DefaultNamespace
	}

	cluster := gocql.NewCluster(strings.Split(params.Hosts, ",")...)
	if params.Port > 0 {
		cluster.Port = params.Port
	}
	cluster.Consistency = gocql.Quorum
	cluster.ConnectTimeout = connectionTimeout
	cluster.Timeout = connectionTimeout
	numRetries := params.NumRetries
	if numRetries <= 0 {
		numRetries = defaultNumRetries
	}
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: numRetries}
	if params.ProtoVersion > 0 {
		cluster.ProtoVersion = params.ProtoVersion
	}
	if params.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{Username: params.Username, Password: params.Pwd}
	}
	if params.DC != "" {
		cluster.PoolConfig.HostSelectionPolicy = gocql.DCAwareRoundRobinPolicy(params.DC)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, nil, fmt.Errorf("can't create cassandra session: %w", err)
	}

	keyspace := params.keyspace()
	if err := bootstrap(session, keyspace, params.replication()); err != nil {
		session.Close()
		return nil, nil, err
	}

	return &leaseStoreType{
		session:   session,
		keyspace:  keyspace,
		namespace: namespace,
		service:   serviceName,
	}, session.Close, nil
}

func bootstrap(session *gocql.Session, keyspace, replication string) error {
	err := session.Query(fmt.Sprintf(
		"create keyspace if not exists %s with replication = %s",
		keyspace, replication)).Exec()
	if err != nil {
		return fmt.Errorf("can't create keyspace %s: %w", keyspace, err)
	}
	err = session.Query(fmt.Sprintf(
		`create table if not exists %s.leases (
			namespace text,
			service text,
			holder_identity text,
			acquire_time timestamp,
			renew_time timestamp,
			lease_duration_ns bigint,
			primary key ((namespace), service))`, keyspace)).Exec()
	if err != nil {
		return fmt.Errorf("can't create leases table: %w", err)
	}
	return nil
}
