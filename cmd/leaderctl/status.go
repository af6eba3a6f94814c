/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voedger/leadership/pkg/leadership"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prints the current lease of the configured service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			store, cleanup, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			lease, err := store.Get(cmd.Context())
			if err != nil {
				if errors.Is(err, leadership.ErrLeaseNotFound) {
					fmt.Printf("%s/%s: no lease\n", cfg.Namespace, cfg.Service)
					return nil
				}
				return err
			}

			holder := green(lease.HolderIdentity)
			if lease.IsExpired(time.Now()) {
				holder = red(lease.HolderIdentity + " (expired)")
			}
			fmt.Printf("%s/%s: held by %s, renewed %s, valid for %s\n",
				cfg.Namespace, cfg.Service, holder,
				lease.RenewTime.Format(time.RFC3339), lease.LeaseDuration)
			return nil
		},
	}
}
