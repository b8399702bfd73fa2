package flamegraph

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"stackfire/internal/util"
)

// configFile mirrors the renderer flags. Pointer fields distinguish "absent"
// from zero values; explicit command-line flags always win.
type configFile struct {
	Colors    *string  `yaml:"colors"`
	BgColors  *string  `yaml:"bgcolors"`
	Hash      *bool    `yaml:"hash"`
	Inverted  *bool    `yaml:"inverted"`
	Title     *string  `yaml:"title"`
	Subtitle  *string  `yaml:"subtitle"`
	Width     *int     `yaml:"width"`
	Height    *int     `yaml:"height"`
	MinWidth  *float64 `yaml:"minwidth"`
	FontType  *string  `yaml:"fonttype"`
	FontSize  *int     `yaml:"fontsize"`
	FontWidth *float64 `yaml:"fontwidth"`
	CountName *string  `yaml:"countname"`
	NameType  *string  `yaml:"nametype"`
	Notes     *string  `yaml:"notes"`
	Negate    *bool    `yaml:"negate"`
	Factor    *float64 `yaml:"factor"`
	PrettyXML *bool    `yaml:"pretty_xml"`
}

// applyConfigFile loads a YAML options file and applies each present value to
// the corresponding flag variable unless that flag was set on the command
// line.
func applyConfigFile(cmd *cobra.Command, path string) error {
	absPath, err := util.AbsPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	var cfg configFile
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return errors.Wrapf(err, "parsing config file %s", path)
	}

	changed := cmd.Flags().Changed
	if cfg.Colors != nil && !changed(flagColorsName) {
		flagColors = *cfg.Colors
	}
	if cfg.BgColors != nil && !changed(flagBgColorsName) {
		flagBgColors = *cfg.BgColors
	}
	if cfg.Hash != nil && !changed(flagHashName) {
		flagHash = *cfg.Hash
	}
	if cfg.Inverted != nil && !changed(flagInvertedName) {
		flagInverted = *cfg.Inverted
	}
	if cfg.Title != nil && !changed(flagTitleName) {
		flagTitle = *cfg.Title
	}
	if cfg.Subtitle != nil && !changed(flagSubtitleName) {
		flagSubtitle = *cfg.Subtitle
	}
	if cfg.Width != nil && !changed(flagWidthName) {
		flagWidth = *cfg.Width
	}
	if cfg.Height != nil && !changed(flagHeightName) {
		flagHeight = *cfg.Height
	}
	if cfg.MinWidth != nil && !changed(flagMinWidthName) {
		flagMinWidth = *cfg.MinWidth
	}
	if cfg.FontType != nil && !changed(flagFontTypeName) {
		flagFontType = *cfg.FontType
	}
	if cfg.FontSize != nil && !changed(flagFontSizeName) {
		flagFontSize = *cfg.FontSize
	}
	if cfg.FontWidth != nil && !changed(flagFontWidthName) {
		flagFontWidth = *cfg.FontWidth
	}
	if cfg.CountName != nil && !changed(flagCountNameName) {
		flagCountName = *cfg.CountName
	}
	if cfg.NameType != nil && !changed(flagNameTypeName) {
		flagNameType = *cfg.NameType
	}
	if cfg.Notes != nil && !changed(flagNotesName) {
		flagNotes = *cfg.Notes
	}
	if cfg.Negate != nil && !changed(flagNegateName) {
		flagNegate = *cfg.Negate
	}
	if cfg.Factor != nil && !changed(flagFactorName) {
		flagFactor = *cfg.Factor
	}
	if cfg.PrettyXML != nil && !changed(flagPrettyXMLName) {
		flagPrettyXML = *cfg.PrettyXML
	}
	return nil
}
