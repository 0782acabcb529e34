package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/liliang-cn/bibmatch/pkg/config"
	"github.com/liliang-cn/bibmatch/pkg/matcher"
)

// writeXLSX writes a workbook with a bold header row, wrapped text cells,
// and numeric cells for numbers.
func writeXLSX(cfg *config.Config, path string, records []matcher.OutputRecord) error {
	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()
	sheet := workbook.GetSheetName(0)

	bold, err := workbook.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	wrap, err := workbook.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true}})
	if err != nil {
		return err
	}

	for col, header := range buildHeaders(cfg) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := workbook.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := workbook.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return err
		}
	}

	for rowIdx, row := range buildRows(cfg, records) {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if value.Numeric {
				if err := workbook.SetCellValue(sheet, cell, value.Num); err != nil {
					return err
				}
			} else {
				if err := workbook.SetCellValue(sheet, cell, value.Str); err != nil {
					return err
				}
				if err := workbook.SetCellStyle(sheet, cell, cell, wrap); err != nil {
					return err
				}
			}
		}
	}

	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("unable to write Excel file: %w", err)
	}
	return nil
}
