package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"folioscan/internal/domain"
)

const (
	portfolioSheet = "Portfolio"
	imagesSheet    = "Images"
)

// WriteXLSX writes a workbook with a Portfolio sheet (holdings plus a total row)
// and an Images sheet listing the outcome of every uploaded screenshot.
func WriteXLSX(w io.Writer, draft domain.PortfolioDraft, results []domain.ExtractionResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), portfolioSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	if err := f.SetSheetRow(portfolioSheet, "A1", &[]interface{}{"Ticker", "Weight (%)"}); err != nil {
		return fmt.Errorf("writing portfolio header: %w", err)
	}
	for i, h := range draft.Holdings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(portfolioSheet, cell, &[]interface{}{h.Ticker, h.Weight}); err != nil {
			return fmt.Errorf("writing holding %s: %w", h.Ticker, err)
		}
	}
	if len(draft.Holdings) > 0 {
		totalRow := len(draft.Holdings) + 2
		cell, _ := excelize.CoordinatesToCellName(1, totalRow)
		if err := f.SetSheetRow(portfolioSheet, cell, &[]interface{}{"TOTAL"}); err != nil {
			return fmt.Errorf("writing total row: %w", err)
		}
		formula := fmt.Sprintf("SUM(B2:B%d)", totalRow-1)
		if err := f.SetCellFormula(portfolioSheet, fmt.Sprintf("B%d", totalRow), formula); err != nil {
			return fmt.Errorf("writing total formula: %w", err)
		}
	}

	if _, err := f.NewSheet(imagesSheet); err != nil {
		return fmt.Errorf("creating images sheet: %w", err)
	}
	if err := f.SetSheetRow(imagesSheet, "A1", &[]interface{}{"#", "Name", "Success", "Provider", "Holdings", "Error"}); err != nil {
		return fmt.Errorf("writing images header: %w", err)
	}
	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{r.Index + 1, r.Name, r.Success, r.Provider, len(r.Holdings), r.Error}
		if err := f.SetSheetRow(imagesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing image row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
