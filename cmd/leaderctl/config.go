/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voedger/leadership/pkg/leadership"
	"github.com/voedger/leadership/pkg/leasestore/bbolt"
	"github.com/voedger/leadership/pkg/leasestore/cas"
	"github.com/voedger/leadership/pkg/leasestore/fs"
	"github.com/voedger/leadership/pkg/leasestore/mem"
)

type storeConfigType struct {
	// Kind selects the backend: "cas", "bbolt", "fs" or "mem"
	Kind string `yaml:"kind"`

	Cas struct {
		Hosts                   string `yaml:"hosts"`
		Port                    int    `yaml:"port"`
		Username                string `yaml:"username"`
		Pwd                     string `yaml:"pwd"`
		DC                      string `yaml:"dc"`
		Keyspace                string `yaml:"keyspace"`
		KeyspaceWithReplication string `yaml:"keyspaceWithReplication"`
	} `yaml:"cas"`

	Bbolt struct {
		DBDir string `yaml:"dbDir"`
	} `yaml:"bbolt"`

	Fs struct {
		Dir string `yaml:"dir"`
	} `yaml:"fs"`
}

type configType struct {
	Service                    string          `yaml:"service"`
	Namespace                  string          `yaml:"namespace"`
	Identity                   string          `yaml:"identity"`
	LeaseDurationSeconds       int             `yaml:"leaseDurationSeconds"`
	RenewDeadlineSeconds       int             `yaml:"renewDeadlineSeconds"`
	RetryPeriodSeconds         int             `yaml:"retryPeriodSeconds"`
	HealthCheckIntervalSeconds int             `yaml:"healthCheckIntervalSeconds"`
	ValidationToken            string          `yaml:"validationToken"`
	Store                      storeConfigType `yaml:"store"`
}

func loadConfig(path string) (*configType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &configType{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("can't parse %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *configType) leadershipConfig() leadership.Config {
	return leadership.Config{
		ServiceName:         cfg.Service,
		Namespace:           cfg.Namespace,
		Identity:            cfg.Identity,
		LeaseDuration:       time.Duration(cfg.LeaseDurationSeconds) * time.Second,
		RenewDeadline:       time.Duration(cfg.RenewDeadlineSeconds) * time.Second,
		RetryPeriod:         time.Duration(cfg.RetryPeriodSeconds) * time.Second,
		HealthCheckInterval: time.Duration(cfg.HealthCheckIntervalSeconds) * time.Second,
		ValidationToken:     cfg.ValidationToken,
	}
}

func newStore(cfg *configType) (store leadership.ILeaseStore, cleanup func(), err error) {
	noop := func() {}
	switch cfg.Store.Kind {
	case "cas":
		return cas.Provide(cas.CassandraParamsType{
			Hosts:                   cfg.Store.Cas.Hosts,
			Port:                    cfg.Store.Cas.Port,
			Username:                cfg.Store.Cas.Username,
			Pwd:                     cfg.Store.Cas.Pwd,
			DC:                      cfg.Store.Cas.DC,
			Keyspace:                cfg.Store.Cas.Keyspace,
			KeyspaceWithReplication: cfg.Store.Cas.KeyspaceWithReplication,
		}, cfg.Namespace, cfg.Service)
	case "bbolt":
		return bbolt.Provide(bbolt.ParamsType{DBDir: cfg.Store.Bbolt.DBDir}, cfg.Namespace, cfg.Service)
	case "fs":
		store, err := fs.Provide(fs.ParamsType{
			Dir:         cfg.Store.Fs.Dir,
			Namespace:   cfg.Namespace,
			ServiceName: cfg.Service,
		})
		return store, noop, err
	case "mem":
		return mem.Provide(), noop, nil
	default:
		return nil, nil, errors.New("store.kind must be one of: cas, bbolt, fs, mem")
	}
}
