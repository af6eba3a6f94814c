/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package cas

type CassandraParamsType struct {
	// Comma separated list of hosts
	Hosts        string
	Port         int
	Username     string
	Pwd          string
	ProtoVersion int
	NumRetries   int
	DC           string

	Keyspace string

	// e.g. "{ 'class' : 'SimpleStrategy', 'replication_factor' : 1 }"
	KeyspaceWithReplication string
}

func (p CassandraParamsType) keyspace() string {
	if p.Keyspace == "" {
		return DefaultKeyspace
	}
	return p.Keyspace
}

func (p CassandraParamsType) replication() string {
	if p.KeyspaceWithReplication == "" {
		return SimpleWithReplication
	}
	return p.KeyspaceWithReplication
}
