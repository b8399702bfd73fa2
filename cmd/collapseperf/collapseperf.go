// Package collapseperf is a subcommand of the root command. It collapses
// `perf script` output into folded stacks.
package collapseperf

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

const cmdName = "collapse-perf"

var examples = []string{
	fmt.Sprintf("  Collapse from stdin:          $ perf script | %s %s > out.folded", common.AppName, cmdName),
	fmt.Sprintf("  Collapse a saved dump:        $ %s %s perf.dump > out.folded", common.AppName, cmdName),
	fmt.Sprintf("  Separate threads:             $ %s %s --tid perf.dump > out.folded", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Collapse `perf script` output into folded stacks",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

var (
	flagPid         bool
	flagTid         bool
	flagAddrs       bool
	flagEventFilter string
	flagKernel      bool
	flagJit         bool
	flagAll         bool
	flagInline      bool
)

const (
	flagPidName         = "pid"
	flagTidName         = "tid"
	flagAddrsName       = "addrs"
	flagEventFilterName = "event-filter"
	flagKernelName      = "kernel"
	flagJitName         = "jit"
	flagAllName         = "all"
	flagInlineName      = "inline"
)

func init() {
	Cmd.Flags().BoolVar(&flagPid, flagPidName, false, "")
	Cmd.Flags().BoolVar(&flagTid, flagTidName, false, "")
	Cmd.Flags().BoolVar(&flagAddrs, flagAddrsName, false, "")
	Cmd.Flags().StringVar(&flagEventFilter, flagEventFilterName, "", "")
	Cmd.Flags().BoolVar(&flagKernel, flagKernelName, false, "")
	Cmd.Flags().BoolVar(&flagJit, flagJitName, false, "")
	Cmd.Flags().BoolVar(&flagAll, flagAllName, false, "")
	Cmd.Flags().BoolVar(&flagInline, flagInlineName, false, "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	flags := []common.Flag{
		{
			Name: flagPidName,
			Help: "include PID with process names as a bottom frame",
		},
		{
			Name: flagTidName,
			Help: "include TID and PID with process names as a bottom frame",
		},
		{
			Name: flagAddrsName,
			Help: "include raw addresses where symbols can't be found",
		},
		{
			Name: flagEventFilterName,
			Help: "event name filter; default is the first event seen",
		},
		{
			Name: flagKernelName,
			Help: "annotate kernel functions with a _[k]",
		},
		{
			Name: flagJitName,
			Help: "annotate jit functions with a _[j]",
		},
		{
			Name: flagAllName,
			Help: "all annotations (--kernel --jit)",
		},
		{
			Name: flagInlineName,
			Help: "keep inlined frames as separate entries",
		},
	}
	return []common.FlagGroup{{GroupName: "Options", Flags: flags}}
}

func runCmd(cmd *cobra.Command, args []string) error {
	opts := collapse.PerfOptions{
		IncludePID:     flagPid,
		IncludeTID:     flagTid,
		IncludeAddrs:   flagAddrs,
		EventFilter:    flagEventFilter,
		AnnotateKernel: flagKernel,
		AnnotateJIT:    flagJit,
		ShowInline:     flagInline,
	}
	if flagAll {
		opts.AnnotateAll()
	}
	return collapse.NewPerfFolder(opts).CollapseFiles(args, os.Stdout)
}
