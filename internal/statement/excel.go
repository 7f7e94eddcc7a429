package statement

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// RenderExcel writes one worksheet per table. Cells carry the same
// pre-formatted strings the preview shows.
func RenderExcel(doc *PreviewDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, tbl := range doc.Tables {
		sheet := sheetName(tbl.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("new sheet %q: %w", sheet, err)
			}
		}

		header := make([]any, len(tbl.Columns))
		for c, col := range tbl.Columns {
			header[c] = col
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}

		for r, row := range tbl.Rows {
			cells := make([]any, len(row))
			for c, cell := range row {
				cells[c] = cell
			}
			addr, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell address: %w", err)
			}
			if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r, err)
			}
		}
	}

	// Summary lines go below the last table's rows on the final sheet.
	if len(doc.Tables) > 0 && len(doc.Summary) > 0 {
		last := doc.Tables[len(doc.Tables)-1]
		sheet := sheetName(last.Name)
		base := len(last.Rows) + 3
		for i, line := range doc.Summary {
			addr, err := excelize.CoordinatesToCellName(1, base+i)
			if err != nil {
				return nil, fmt.Errorf("summary address: %w", err)
			}
			row := []any{line.Label, line.Value}
			if err := f.SetSheetRow(sheet, addr, &row); err != nil {
				return nil, fmt.Errorf("write summary: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims to the 31-character worksheet name limit.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
