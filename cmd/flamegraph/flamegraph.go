// Package flamegraph is a subcommand of the root command. It renders folded
// stacks as an interactive SVG flame graph.
package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"stackfire/internal/common"
	"stackfire/internal/flamegraph"
	"stackfire/internal/flamegraph/color"
	"stackfire/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const cmdName = "flamegraph"

// default name for the palette map file used with --cp
const paletteMapFile = "palette.map"

var examples = []string{
	fmt.Sprintf("  Render from stdin:             $ cat out.folded | %s %s > profile.svg", common.AppName, cmdName),
	fmt.Sprintf("  Render and merge two profiles: $ %s %s run1.folded run2.folded > profile.svg", common.AppName, cmdName),
	fmt.Sprintf("  Icicle graph with java colors: $ %s %s --inverted --colors java out.folded > profile.svg", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Render folded stacks as an interactive SVG flame graph",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
}

var (
	flagColors      string
	flagBgColors    string
	flagHash        bool
	flagCp          bool
	flagPaletteFile string
	flagNameAttr    string
	flagInverted    bool
	flagTitle       string
	flagSubtitle    string
	flagWidth       int
	flagHeight      int
	flagMinWidth    float64
	flagFontType    string
	flagFontSize    int
	flagFontWidth   float64
	flagCountName   string
	flagNameType    string
	flagNotes       string
	flagNegate      bool
	flagFactor      float64
	flagPrettyXML   bool
	flagNoJS        bool
	flagConfig      string
)

const (
	flagColorsName      = "colors"
	flagBgColorsName    = "bgcolors"
	flagHashName        = "hash"
	flagCpName          = "cp"
	flagPaletteFileName = "palette-file"
	flagNameAttrName    = "nameattr"
	flagInvertedName    = "inverted"
	flagTitleName       = "title"
	flagSubtitleName    = "subtitle"
	flagWidthName       = "width"
	flagHeightName      = "height"
	flagMinWidthName    = "minwidth"
	flagFontTypeName    = "fonttype"
	flagFontSizeName    = "fontsize"
	flagFontWidthName   = "fontwidth"
	flagCountNameName   = "countname"
	flagNameTypeName    = "nametype"
	flagNotesName       = "notes"
	flagNegateName      = "negate"
	flagFactorName      = "factor"
	flagPrettyXMLName   = "pretty-xml"
	flagNoJSName        = "no-javascript"
	flagConfigName      = "config"
)

func init() {
	defaults := flamegraph.DefaultOptions()
	Cmd.Flags().StringVarP(&flagColors, flagColorsName, "c", string(defaults.Colors), "")
	Cmd.Flags().StringVar(&flagBgColors, flagBgColorsName, "yellow", "")
	Cmd.Flags().BoolVar(&flagHash, flagHashName, false, "")
	Cmd.Flags().BoolVar(&flagCp, flagCpName, false, "")
	Cmd.Flags().StringVar(&flagPaletteFile, flagPaletteFileName, paletteMapFile, "")
	Cmd.Flags().StringVar(&flagNameAttr, flagNameAttrName, "", "")
	Cmd.Flags().BoolVarP(&flagInverted, flagInvertedName, "i", false, "")
	Cmd.Flags().StringVar(&flagTitle, flagTitleName, defaults.Title, "")
	Cmd.Flags().StringVar(&flagSubtitle, flagSubtitleName, "", "")
	Cmd.Flags().IntVar(&flagWidth, flagWidthName, defaults.ImageWidth, "")
	Cmd.Flags().IntVar(&flagHeight, flagHeightName, defaults.FrameHeight, "")
	Cmd.Flags().Float64Var(&flagMinWidth, flagMinWidthName, defaults.MinWidth, "")
	Cmd.Flags().StringVar(&flagFontType, flagFontTypeName, defaults.FontType, "")
	Cmd.Flags().IntVar(&flagFontSize, flagFontSizeName, defaults.FontSize, "")
	Cmd.Flags().Float64Var(&flagFontWidth, flagFontWidthName, defaults.FontWidth, "")
	Cmd.Flags().StringVar(&flagCountName, flagCountNameName, defaults.CountName, "")
	Cmd.Flags().StringVar(&flagNameType, flagNameTypeName, defaults.NameType, "")
	Cmd.Flags().StringVar(&flagNotes, flagNotesName, "", "")
	Cmd.Flags().BoolVar(&flagNegate, flagNegateName, false, "")
	Cmd.Flags().Float64Var(&flagFactor, flagFactorName, defaults.Factor, "")
	Cmd.Flags().BoolVar(&flagPrettyXML, flagPrettyXMLName, false, "")
	Cmd.Flags().BoolVar(&flagNoJS, flagNoJSName, false, "")
	_ = Cmd.Flags().MarkHidden(flagNoJSName) // test hook
	Cmd.Flags().StringVar(&flagConfig, flagConfigName, "", "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	groups = append(groups, common.FlagGroup{
		GroupName: "Color Options",
		Flags: []common.Flag{
			{
				Name: flagColorsName,
				Help: fmt.Sprintf("color palette, one of: %s", paletteNames()),
			},
			{
				Name: flagBgColorsName,
				Help: "background: gradient name (yellow, blue, green, grey) or flat #rrggbb",
			},
			{
				Name: flagHashName,
				Help: "colors are keyed by function name hash",
			},
			{
				Name: flagCpName,
				Help: "use consistent palette (palette.map)",
			},
			{
				Name: flagPaletteFileName,
				Help: "palette map file used with --cp",
			},
			{
				Name: flagNegateName,
				Help: "switch differential hues (green<->red)",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Layout Options",
		Flags: []common.Flag{
			{
				Name: flagInvertedName,
				Help: "plot the flame graph up-side-down (icicle)",
			},
			{
				Name: flagWidthName,
				Help: "width of image in pixels",
			},
			{
				Name: flagHeightName,
				Help: "height of each frame in pixels",
			},
			{
				Name: flagMinWidthName,
				Help: "omit frames narrower than this many pixels",
			},
			{
				Name: flagFactorName,
				Help: "factor to scale sample counts by",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Text Options",
		Flags: []common.Flag{
			{
				Name: flagTitleName,
				Help: "change title text",
			},
			{
				Name: flagSubtitleName,
				Help: "second level title",
			},
			{
				Name: flagFontTypeName,
				Help: "font family",
			},
			{
				Name: flagFontSizeName,
				Help: "font size in points",
			},
			{
				Name: flagFontWidthName,
				Help: "average glyph width multiplier",
			},
			{
				Name: flagCountNameName,
				Help: "count type label",
			},
			{
				Name: flagNameTypeName,
				Help: "name type label",
			},
			{
				Name: flagNotesName,
				Help: "embedded notes comment in the SVG",
			},
		},
	})
	groups = append(groups, common.FlagGroup{
		GroupName: "Advanced Options",
		Flags: []common.Flag{
			{
				Name: flagNameAttrName,
				Help: "file with per-function SVG attributes",
			},
			{
				Name: flagPrettyXMLName,
				Help: "pretty print XML with newlines and indentation",
			},
			{
				Name: flagConfigName,
				Help: "YAML file with renderer options; flags take precedence",
			},
		},
	})
	return groups
}

func paletteNames() string {
	names := make([]string, 0, len(color.Palettes))
	for _, p := range color.Palettes {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagConfig != "" {
		if err := applyConfigFile(cmd, flagConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	opts, err := buildOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func buildOptions() (*flamegraph.Options, error) {
	opts := flamegraph.DefaultOptions()
	palette, err := color.ParsePalette(flagColors)
	if err != nil {
		return nil, err
	}
	opts.Colors = palette
	bg, err := color.ParseBackgroundColor(flagBgColors)
	if err != nil {
		return nil, err
	}
	opts.BgColors = bg
	opts.Hash = flagHash
	if flagInverted {
		opts.Direction = flamegraph.DirectionInverted
	}
	opts.Title = flagTitle
	opts.Subtitle = flagSubtitle
	opts.ImageWidth = flagWidth
	opts.FrameHeight = flagHeight
	opts.MinWidth = flagMinWidth
	opts.FontType = flagFontType
	opts.FontSize = flagFontSize
	opts.FontWidth = flagFontWidth
	opts.CountName = flagCountName
	opts.NameType = flagNameType
	opts.Notes = flagNotes
	opts.NegateDifferentials = flagNegate
	opts.Factor = flagFactor
	opts.PrettyXML = flagPrettyXML
	opts.NoJavaScript = flagNoJS
	return &opts, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}
	if flagNameAttr != "" {
		attrs, err := flamegraph.LoadFrameAttrs(flagNameAttr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		opts.FrameAttrs = attrs
	}
	var paletteFile string
	if flagCp {
		paletteFile, err = util.AbsPath(flagPaletteFile)
		if err != nil {
			return err
		}
		pm, err := color.LoadPaletteMapOrEmpty(paletteFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		opts.PaletteMap = pm
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		slog.Warn("writing SVG to a terminal; redirect stdout to a file")
	}
	if err := flamegraph.GenerateFromFiles(opts, args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	// the SVG is complete; a failed save must still be reported as fatal
	if opts.PaletteMap != nil {
		if err := opts.PaletteMap.Save(paletteFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}
	return nil
}
