/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voedger/leadership/pkg/leadership"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs the leader-election coordinator until interrupted",
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

			lcfg := cfg.leadershipConfig()
			lcfg.OnStartedLeading = func(identity string) {
				fmt.Println(green("leading"), "as", identity)
			}
			lcfg.OnStoppedLeading = func(identity string) {
				fmt.Println(red("lost leadership"), "as", identity)
			}
			lcfg.OnNewLeader = func(newLeader string) {
				fmt.Println("current leader:", newLeader)
			}

			svc, err := leadership.Provide(lcfg, store, nil)
			if err != nil {
				return err
			}
			if err := svc.Start(); err != nil {
				return err
			}

			<-cmd.Context().Done()
			svc.Stop()
			return nil
		},
	}
}
