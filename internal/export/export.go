// Package export renders portfolio drafts as CSV or XLSX downloads.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"folioscan/internal/domain"
)

// ParseFormat resolves a format query parameter. Empty means CSV.
func ParseFormat(s string) (domain.ExportFormat, error) {
	switch domain.ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", domain.ExportCSV:
		return domain.ExportCSV, nil
	case domain.ExportXLSX:
		return domain.ExportXLSX, nil
	}
	return "", domain.ErrUnsupportedExport
}

// ContentType returns the MIME type of a format.
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the download file name for a run.
func FileName(runID string, format domain.ExportFormat) string {
	return fmt.Sprintf("portfolio-%s.%s", runID, format)
}

// Write renders draft, and for XLSX also the per-image results, in the given format.
func Write(w io.Writer, format domain.ExportFormat, draft domain.PortfolioDraft, results []domain.ExtractionResult) error {
	switch format {
	case domain.ExportCSV:
		return writeCSV(w, draft)
	case domain.ExportXLSX:
		return WriteXLSX(w, draft, results)
	}
	return domain.ErrUnsupportedExport
}

func writeCSV(w io.Writer, draft domain.PortfolioDraft) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteDraft(draft); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
