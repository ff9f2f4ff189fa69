package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/wudi/packlist/record"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Shipments"

// WriteXLSX writes records as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []record.Record) error {
	f, err := buildWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes records to path, appending ".xlsx" when the name has no
// such suffix. It returns the path actually written.
func SaveXLSX(path string, records []record.Record) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	f, err := buildWorkbook(records)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func buildWorkbook(records []record.Record) (*excelize.File, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}
	header := make([]interface{}, len(record.Headers))
	for i, h := range record.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(record.Headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		f.Close()
		return nil, err
	}
	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rec.Values()
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
