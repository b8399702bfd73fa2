// Package collapsedtrace is a subcommand of the root command. It collapses
// DTrace ustack() output into folded stacks.
package collapsedtrace

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"strings"

	"stackfire/internal/collapse"
	"stackfire/internal/common"

	"github.com/spf13/cobra"
)

const cmdName = "collapse-dtrace"

var examples = []string{
	fmt.Sprintf("  Collapse from stdin:   $ cat out.user_stacks | %s %s > out.folded", common.AppName, cmdName),
	fmt.Sprintf("  Keep symbol offsets:   $ %s %s --includeoffset out.user_stacks > out.folded", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Collapse DTrace ustack() output into folded stacks",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

var flagIncludeOffset bool

const flagIncludeOffsetName = "includeoffset"

func init() {
	Cmd.Flags().BoolVar(&flagIncludeOffset, flagIncludeOffsetName, false, "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	flags := []common.Flag{
		{
			Name: flagIncludeOffsetName,
			Help: "keep the +0x offset on symbol names",
		},
	}
	return []common.FlagGroup{{GroupName: "Options", Flags: flags}}
}

func runCmd(cmd *cobra.Command, args []string) error {
	opts := collapse.DTraceOptions{IncludeOffset: flagIncludeOffset}
	return collapse.NewDTraceFolder(opts).CollapseFiles(args, os.Stdout)
}
