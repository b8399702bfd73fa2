// Package common defines data structures and functions that are used by multiple
// application commands, e.g., collapse-perf, collapse-dtrace, flamegraph, stats.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names for flags defined in the root command, but sometimes used in other commands.
const (
	FlagDebugName = "debug"
	FlagQuietName = "quiet"
)

// AppName is the name of the application executable.
var AppName = filepath.Base(os.Args[0])

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// UsageFunc returns a cobra usage function that prints the command's flags in
// the groups provided by getGroups, followed by the global flags.
func UsageFunc(getGroups func() []FlagGroup) func(cmd *cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s [flags] [infile ...]\n\n", cmd.CommandPath())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range getGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if cmd.Flags().Lookup(flag.Name).DefValue != "" {
					flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		cmd.Println("\nGlobal Flags:")
		cmd.Root().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
			flagDefault := ""
			if cmd.Root().PersistentFlags().Lookup(pf.Name).DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
		})
		return nil
	}
}
