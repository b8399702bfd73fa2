package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testTable() TableValues {
	return TableValues{
		Name: "Hottest Frames",
		Fields: []Field{
			{Name: "Function", Values: []string{"do_work", "main"}},
			{Name: "Samples", Values: []string{"1,500", "2,000"}},
			{Name: "Percent", Values: []string{"42.9", "57.1"}},
		},
	}
}

func TestCreateTextReport(t *testing.T) {
	out, err := Create(FormatTxt, testTable())
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Hottest Frames")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lines[2], "Function")
	assert.Contains(t, lines[3], "do_work")
}

func TestCreateTextReportNoData(t *testing.T) {
	out, err := Create(FormatTxt, TableValues{Name: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No data found.")
}

func TestCreateJsonReport(t *testing.T) {
	out, err := Create(FormatJson, testTable())
	require.NoError(t, err)
	var decoded map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &decoded))
	rows := decoded["Hottest Frames"]
	require.Len(t, rows, 2)
	assert.Equal(t, "do_work", rows[0]["Function"])
	assert.Equal(t, "2,000", rows[1]["Samples"])
}

func TestCreateXlsxReport(t *testing.T) {
	out, err := Create(FormatXlsx, testTable())
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	value, err := f.GetCellValue("Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "do_work", value)
}

func TestCreateRejectsRaggedFields(t *testing.T) {
	tv := TableValues{
		Name: "Bad",
		Fields: []Field{
			{Name: "A", Values: []string{"1", "2"}},
			{Name: "B", Values: []string{"1"}},
		},
	}
	_, err := Create(FormatTxt, tv)
	assert.Error(t, err)
}

func TestCreateUnsupportedFormat(t *testing.T) {
	_, err := Create("pdf", testTable())
	assert.Error(t, err)
}
