package extract

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// extractSpreadsheet renders every sheet as a "Sheet: <name>" line followed by
// tab-joined rows, with a blank line between sheets. OOXML workbooks go through
// excelize, legacy BIFF workbooks through xlsReader.
func extractSpreadsheet(data []byte) (string, error) {
	if isZip(data) {
		return extractXLSX(data)
	}
	return extractXLS(data)
}

func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xlsx: open: %w", err)
	}
	defer func() { _ = f.Close() }()
	var sheets []sheetText
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sheets = append(sheets, sheetText{name: name, rows: rows})
	}
	return renderSheets(sheets), nil
}

func extractXLS(data []byte) (string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xls: open: %w", err)
	}
	var sheets []sheetText
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		var rows [][]string
		for _, row := range sheet.GetRows() {
			rows = append(rows, xlsCellValues(row.GetCols()))
		}
		sheets = append(sheets, sheetText{name: sheet.GetName(), rows: rows})
	}
	return renderSheets(sheets), nil
}

type sheetText struct {
	name string
	rows [][]string
}

func renderSheets(sheets []sheetText) string {
	var b strings.Builder
	for i, sheet := range sheets {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Sheet: ")
		b.WriteString(sheet.name)
		b.WriteByte('\n')
		for _, row := range sheet.rows {
			row = trimTrailingEmpty(row)
			if len(row) == 0 {
				continue
			}
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return row[:end]
}

func xlsCellValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
