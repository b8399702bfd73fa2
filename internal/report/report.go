// Package report renders tabular summaries in various formats such as txt, json, xlsx.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const noDataFound = "No data found."

var FormatOptions = []string{FormatTxt, FormatJson, FormatXlsx}

// Field is one column of a table: a name and one value per row.
type Field struct {
	Name   string
	Values []string
}

// TableValues is a named table. All fields must have the same number of
// values.
type TableValues struct {
	Name   string
	Fields []Field
}

// Create generates a report in the specified format.
func Create(format string, tableValues TableValues) (out []byte, err error) {
	numRows := -1
	for _, field := range tableValues.Fields {
		if numRows == -1 {
			numRows = len(field.Values)
			continue
		}
		if len(field.Values) != numRows {
			return nil, fmt.Errorf("expected %d value(s) for field %s, found %d", numRows, field.Name, len(field.Values))
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(tableValues)
	case FormatJson:
		return createJsonReport(tableValues)
	case FormatXlsx:
		return createXlsxReport(tableValues)
	}
	return nil, fmt.Errorf("unsupported report format: %s", format)
}

func createTextReport(tableValues TableValues) ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	fmt.Fprintf(w, "%s\n", tableValues.Name)
	for range len(tableValues.Name) {
		fmt.Fprint(w, "=")
	}
	fmt.Fprint(w, "\n")
	if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
		fmt.Fprintf(w, "%s\n", noDataFound)
		if err := w.Flush(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	// column widths sized to the longest value
	widths := make([]int, len(tableValues.Fields))
	for i, field := range tableValues.Fields {
		widths[i] = len(field.Name)
		for _, value := range field.Values {
			if len(value) > widths[i] {
				widths[i] = len(value)
			}
		}
	}
	for i, field := range tableValues.Fields {
		fmt.Fprintf(w, "%-*s  ", widths[i], field.Name)
	}
	fmt.Fprint(w, "\n")
	for row := range tableValues.Fields[0].Values {
		for i, field := range tableValues.Fields {
			fmt.Fprintf(w, "%-*s  ", widths[i], field.Values[row])
		}
		fmt.Fprint(w, "\n")
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func createJsonReport(tableValues TableValues) ([]byte, error) {
	type row map[string]string
	rows := []row{}
	if len(tableValues.Fields) > 0 {
		for i := range tableValues.Fields[0].Values {
			r := row{}
			for _, field := range tableValues.Fields {
				r[field.Name] = field.Values[i]
			}
			rows = append(rows, r)
		}
	}
	return json.MarshalIndent(map[string][]row{tableValues.Name: rows}, "", "  ")
}
