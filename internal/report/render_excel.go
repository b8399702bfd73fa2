package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

func createXlsxReport(tableValues TableValues) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Report"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	row := 1
	renderXlsxTable(tableValues, f, sheetName, &row)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXlsxTable(tableValues TableValues, f *excelize.File, sheetName string, row *int) {
	col := 1
	// print the table name
	tableNameStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	_ = f.SetCellValue(sheetName, cellName(col, *row), tableValues.Name)
	_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), tableNameStyle)
	*row++
	if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
		_ = f.SetCellValue(sheetName, cellName(col, *row), noDataFound)
		*row += 2
		return
	}
	fieldNameStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	for _, field := range tableValues.Fields {
		_ = f.SetCellValue(sheetName, cellName(col, *row), field.Name)
		_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), fieldNameStyle)
		col++
	}
	*row++
	for valueIdx := range tableValues.Fields[0].Values {
		col = 1
		for _, field := range tableValues.Fields {
			_ = f.SetCellValue(sheetName, cellName(col, *row), field.Values[valueIdx])
			col++
		}
		*row++
	}
	*row++
}
