/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package main

import (
	_ "embed"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/cobrau"
)

//go:embed version
var version string

// path to the yaml configuration file (flag --config)
var configPath string

var red func(a ...interface{}) string
var green func(a ...interface{}) string

func main() {
	red = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	if err := execRootCmd(os.Args, version); err != nil {
		os.Exit(1)
	}
}

var rootCmd *cobra.Command

func execRootCmd(args []string, ver string) error {
	version = ver
	rootCmd = cobrau.PrepareRootCmd(
		"leaderctl",
		"Leader-election coordinator",
		args,
		version,
		newRunCmd(),
		newStatusCmd(),
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "leaderctl.yaml", "Path to the configuration file")

	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}
