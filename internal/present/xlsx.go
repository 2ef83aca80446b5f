package present

import (
	"fmt"
	"io"

	"github.com/augur-forecast/augur/internal/engine"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "augur"

// WriteXLSX writes the same columns as WriteCSV to a single sheet workbook
func WriteXLSX(w io.Writer, result *engine.ForecastResult) error {
	rows := result.Rows()
	format := DateFormatter(rows)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("unable to name sheet, %w", err)
	}

	header := make([]interface{}, 0, len(Columns)+1)
	header = append(header, "")
	for _, c := range Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("unable to write xlsx header, %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{i, format(r.DS), r.YHat, r.YHatLower, r.YHatUpper}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("unable to write xlsx row %d, %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write xlsx, %w", err)
	}
	return nil
}
