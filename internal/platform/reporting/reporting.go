// Package reporting turns tabular datasets into JSON rows and XLSX
// workbooks, and serves a catalogue of exportable datasets over HTTP.
package reporting

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column describes one column of a sheet.
type Column struct {
	Key    string  `json:"key"`
	Header string  `json:"header"`
	Width  float64 `json:"-"`
}

// Sheet is a named table. Every row holds one value per column.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Records returns the rows as objects keyed by column key.
func (s Sheet) Records() []map[string]any {
	out := make([]map[string]any, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make(map[string]any, len(s.Columns))
		for i, col := range s.Columns {
			if i < len(row) {
				rec[col.Key] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

// float64er is satisfied by decimal.Decimal.
type float64er interface {
	InexactFloat64() float64
}

func cellValue(v any) any {
	switch x := v.(type) {
	case float64er:
		return x.InexactFloat64()
	case time.Time:
		return x.Format("2006-01-02")
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	default:
		return v
	}
}

// maxSheetName is Excel's limit on worksheet names.
const maxSheetName = 31

func sheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// WriteXLSX writes the sheets as one workbook. Header rows are bold and
// frozen.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("reporting: no sheets to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sh := range sheets {
		name := sheetName(sh.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sh, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sh Sheet, headerStyle int) error {
	for c, col := range sh.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, col.Header); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
		if col.Width > 0 {
			letter, err := excelize.ColumnNumberToName(c + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(name, letter, letter, col.Width); err != nil {
				return fmt.Errorf("set width %s: %w", letter, err)
			}
		}
	}

	for r, row := range sh.Rows {
		for c, v := range row {
			if c >= len(sh.Columns) || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, cellValue(v)); err != nil {
				return fmt.Errorf("set %s!%s: %w", name, cell, err)
			}
		}
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// XLSXBytes renders the sheets into memory.
func XLSXBytes(sheets ...Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sheets...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
