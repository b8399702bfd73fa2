// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package cmd provides the command line interface for the application.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"stackfire/cmd/collapsedtrace"
	"stackfire/cmd/collapseperf"
	"stackfire/cmd/flamegraph"
	"stackfire/cmd/stats"
	"stackfire/internal/common"

	"github.com/spf13/cobra"
)

var gVersion = "9.9.9" // can be overwritten at build time with -ldflags -X

var examples = []string{
	fmt.Sprintf("  Collapse perf script output:     $ perf script | %s collapse-perf > out.folded", common.AppName),
	fmt.Sprintf("  Collapse DTrace ustack() output: $ %s collapse-dtrace out.user_stacks > out.folded", common.AppName),
	fmt.Sprintf("  Render a flame graph:            $ %s flamegraph out.folded > profile.svg", common.AppName),
	fmt.Sprintf("  Full pipeline:                   $ perf script | %s collapse-perf | %s flamegraph > profile.svg", common.AppName, common.AppName),
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               common.AppName,
	Short:             common.AppName,
	Long:              fmt.Sprintf(`%s turns raw stack-sampling profiler output into interactive SVG flame graphs.`, common.AppName),
	Example:           strings.Join(examples, "\n"),
	PersistentPreRunE: initializeApplication,
	Version:           gVersion,
}

var (
	flagDebug bool
	flagQuiet bool
)

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{}) // block the help command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.AddGroup([]*cobra.Group{{ID: "primary", Title: "Commands:"}}...)
	rootCmd.AddCommand(collapseperf.Cmd)
	rootCmd.AddCommand(collapsedtrace.Cmd)
	rootCmd.AddCommand(flamegraph.Cmd)
	rootCmd.AddCommand(stats.Cmd)
	// Global (persistent) flags
	rootCmd.PersistentFlags().BoolVar(&flagDebug, common.FlagDebugName, false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, common.FlagQuietName, "q", false, "log errors only")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.EnableCommandSorting = false
	cobra.EnableCaseInsensitive = true
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initializeApplication configures logging. The SVG or folded output goes to
// stdout, so all logs go to stderr.
func initializeApplication(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	} else if flagQuiet {
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}
