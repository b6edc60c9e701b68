// Package export builds the downloadable spreadsheet of current rates.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet holding the rate table.
const SheetName = "Exchange Rates"

// FileName is the suggested download name for the workbook.
const FileName = "exchange_rates.xlsx"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RateRow is one spreadsheet row: a currency and its rate relative to USD.
type RateRow struct {
	Currency string
	Rate     float64
}

// BuildRatesWorkbook renders rows into a two-column xlsx workbook
// (Currency, Rate (USD)) and returns the encoded file.
func BuildRatesWorkbook(rows []RateRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rates to export")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &[]any{"Currency", "Rate (USD)"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(SheetName, cell, &[]any{row.Currency, row.Rate}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
