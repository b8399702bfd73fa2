// Package stats is a subcommand of the root command. It summarizes folded
// stacks as a table of the hottest frames.
package stats

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/casbin/govaluate"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stackfire/internal/collapse"
	"stackfire/internal/common"
	"stackfire/internal/report"
)

const cmdName = "stats"

var examples = []string{
	fmt.Sprintf("  Hottest frames:              $ %s %s out.folded", common.AppName, cmdName),
	fmt.Sprintf("  Top 5 above 1%%:              $ %s %s --top 5 --where \"percent > 1\" out.folded", common.AppName, cmdName),
	fmt.Sprintf("  All formats to a directory:  $ %s %s --format all --output ./reports out.folded", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Summarize folded stacks as a table of the hottest frames",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

var (
	flagTop    int
	flagWhere  string
	flagFormat []string
	flagOutput string
)

const (
	flagTopName    = "top"
	flagWhereName  = "where"
	flagFormatName = "format"
	flagOutputName = "output"
)

func init() {
	Cmd.Flags().IntVar(&flagTop, flagTopName, 20, "")
	Cmd.Flags().StringVar(&flagWhere, flagWhereName, "", "")
	Cmd.Flags().StringSliceVar(&flagFormat, flagFormatName, []string{report.FormatTxt}, "")
	Cmd.Flags().StringVar(&flagOutput, flagOutputName, "", "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	flags := []common.Flag{
		{
			Name: flagTopName,
			Help: "number of frames to report",
		},
		{
			Name: flagWhereName,
			Help: "row filter expression over samples, percent, depth, frame",
		},
		{
			Name: flagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
		{
			Name: flagOutputName,
			Help: "directory to write report files to; default is stdout",
		},
	}
	return []common.FlagGroup{{GroupName: "Options", Flags: flags}}
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagTop <= 0 {
		err := fmt.Errorf("top must be greater than 0")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	for _, format := range flagFormat {
		formatOptions := append([]string{report.FormatAll}, report.FormatOptions...)
		if !slices.Contains(formatOptions, format) {
			err := fmt.Errorf("format options are: %s", strings.Join(formatOptions, ", "))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	if flagWhere != "" {
		if _, err := govaluate.NewEvaluableExpression(flagWhere); err != nil {
			err = fmt.Errorf("invalid --where expression: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	if len(requestedFormats()) > 1 && flagOutput == "" {
		err := fmt.Errorf("multiple formats require --output")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func requestedFormats() []string {
	if slices.Contains(flagFormat, report.FormatAll) {
		return report.FormatOptions
	}
	return flagFormat
}

// frameStat is the per-frame aggregate: inclusive samples (each stack counted
// once per frame it contains) and the deepest position seen.
type frameStat struct {
	name     string
	samples  uint64
	maxDepth int
}

func collectStats(readers []io.Reader) (stats []frameStat, total uint64, err error) {
	byName := map[string]*frameStat{}
	var order []string
	for _, r := range readers {
		scanner := collapse.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			sample, ok := collapse.ParseFolded(line)
			if !ok {
				continue
			}
			total += sample.Count
			seen := map[string]bool{}
			for depth, name := range sample.Stack {
				stat, exists := byName[name]
				if !exists {
					stat = &frameStat{name: name}
					byName[name] = stat
					order = append(order, name)
				}
				if depth > stat.maxDepth {
					stat.maxDepth = depth
				}
				if !seen[name] {
					stat.samples += sample.Count
					seen[name] = true
				}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, 0, err
		}
	}
	for _, name := range order {
		stats = append(stats, *byName[name])
	}
	return stats, total, nil
}

func filterStats(stats []frameStat, total uint64, where string) ([]frameStat, error) {
	if where == "" {
		return stats, nil
	}
	expr, err := govaluate.NewEvaluableExpression(where)
	if err != nil {
		return nil, err
	}
	var kept []frameStat
	for _, stat := range stats {
		params := map[string]interface{}{
			"samples": float64(stat.samples),
			"percent": 100 * float64(stat.samples) / float64(total),
			"depth":   float64(stat.maxDepth),
			"frame":   stat.name,
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("evaluating --where for frame %s: %v", stat.name, err)
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("--where expression must evaluate to a boolean")
		}
		if keep {
			kept = append(kept, stat)
		}
	}
	return kept, nil
}

func buildTable(stats []frameStat, total uint64, top int) report.TableValues {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].samples != stats[j].samples {
			return stats[i].samples > stats[j].samples
		}
		return stats[i].name < stats[j].name
	})
	if len(stats) > top {
		stats = stats[:top]
	}
	printer := message.NewPrinter(language.English)
	var names, samples, percents, depths []string
	for _, stat := range stats {
		names = append(names, stat.name)
		samples = append(samples, printer.Sprintf("%d", stat.samples))
		percents = append(percents, fmt.Sprintf("%.2f", 100*float64(stat.samples)/float64(total)))
		depths = append(depths, fmt.Sprintf("%d", stat.maxDepth))
	}
	return report.TableValues{
		Name: "Hottest Frames",
		Fields: []report.Field{
			{Name: "Function", Values: names},
			{Name: "Samples", Values: samples},
			{Name: "Percent", Values: percents},
			{Name: "Max Depth", Values: depths},
		},
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	var readers []io.Reader
	var files []*os.File
	for _, path := range args {
		if path == "-" {
			readers = append(readers, os.Stdin)
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		files = append(files, file)
		readers = append(readers, file)
	}
	defer func() {
		for _, file := range files {
			file.Close()
		}
	}()

	stats, total, err := collectStats(readers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	stats, err = filterStats(stats, total, flagWhere)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	table := buildTable(stats, total, flagTop)

	for _, format := range requestedFormats() {
		out, err := report.Create(format, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		if flagOutput == "" {
			if _, err := os.Stdout.Write(out); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(flagOutput, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		path := filepath.Join(flagOutput, "stats."+format)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	return nil
}
