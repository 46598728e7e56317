package export

import (
	"encoding/csv"
	"io"

	"folioscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

var csvColumns = []string{"Ticker", "Weight (%)"}

// CSVWriter wraps csv.Writer for exporting a portfolio draft.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(csvColumns)
}

// WriteDraft writes one row per holding in draft order.
func (w *CSVWriter) WriteDraft(draft domain.PortfolioDraft) error {
	for _, h := range draft.Holdings {
		if err := w.csv.Write([]string{h.Ticker, formatWeight(h.Weight)}); err != nil {
			return err
		}
	}
	return nil
}

func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

func (w *CSVWriter) Error() error {
	return w.csv.Error()
}
