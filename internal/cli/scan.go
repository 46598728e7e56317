package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"folioscan/internal/app"
	"folioscan/internal/domain"
	"folioscan/internal/export"
	"folioscan/internal/ingest"
	"folioscan/internal/logger"
	"folioscan/internal/port"
	"folioscan/internal/repository/postgres"
)

var (
	broker    string
	provider  string
	batchSize int
	delay     time.Duration
	timeout   time.Duration
	asJSON    bool
	outPath   string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <image>...",
	Short: "Extract and merge holdings from one or more screenshots",
	Long: `Scan sends every screenshot to the configured OCR providers in batches,
merges the holdings into one draft normalized to 100 and validates it.

Example:
  folioscan scan page1.png page2.png
  folioscan scan --broker TOSS --batch-size 3 *.jpg
  folioscan scan --json shots/*.png
  folioscan scan --out draft.xlsx shots/*.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&broker, "broker", "", "brokerage app the screenshots come from (e.g. TOSS)")
	scanCmd.Flags().StringVar(&provider, "provider", "", "override the primary OCR provider (gemini, openai, claude, tesseract)")
	scanCmd.Flags().IntVar(&batchSize, "batch-size", 0, "images per concurrent batch (default from FOLIOSCAN_BATCH_SIZE)")
	scanCmd.Flags().DurationVar(&delay, "delay", -1, "pause between batches (default from FOLIOSCAN_BATCH_DELAY)")
	scanCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	scanCmd.Flags().StringVarP(&outPath, "out", "o", "", "also write the draft to a .csv or .xlsx file")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if batchSize != 0 {
		cfg.Batch.Size = batchSize
	}
	if delay >= 0 {
		cfg.Batch.Delay = delay
	}
	if provider != "" {
		cfg.OCR.Primary.Provider = provider
		if cfg.OCR.Primary.APIKey == "" {
			cfg.OCR.Primary.APIKey = cfg.OCR.APIKey
		}
	}

	var format domain.ExportFormat
	if outPath != "" {
		f, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(outPath), "."))
		if err != nil {
			return err
		}
		format = f
	}

	images, err := loadImages(args, domain.ParseBrokerType(broker))
	if err != nil {
		return err
	}

	var aliasRepo port.TickerAliasRepository
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			lg.WithComponent("cli").WithError(err).Warn("ticker alias table unavailable")
		} else {
			defer db.Close()
			aliasRepo = postgres.NewTickerAliasRepo(db)
		}
	}

	mapper := app.LoadMapper(ctx, aliasRepo, lg)
	extractor, err := app.NewExtractor(cfg, mapper)
	if err != nil {
		return err
	}
	pipeline, err := app.NewPipeline(cfg, extractor, mapper, lg)
	if err != nil {
		return err
	}

	session := ingest.NewSession()
	lg.WithComponent("cli").WithFields(logger.Fields{
		"session":    session.ID.String(),
		"images":     len(images),
		"batch_size": pipeline.BatchSize(),
	}).Info("scan started")

	report, err := pipeline.Ingest(ctx, session, images)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := writeExport(outPath, format, report); err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return renderReport(cmd.OutOrStdout(), report)
}

// loadImages reads each path and checks it is a supported screenshot type.
func loadImages(paths []string, b domain.BrokerType) ([]domain.ImageInput, error) {
	images := make([]domain.ImageInput, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		ct := detectImageType(p, data)
		if ct == "" {
			return nil, fmt.Errorf("%s: %w", p, domain.ErrUnsupportedFileType)
		}
		images = append(images, domain.ImageInput{
			Name:        filepath.Base(p),
			Data:        data,
			ContentType: ct,
			Broker:      b,
		})
	}
	return images, nil
}

// detectImageType sniffs the content and falls back to the file extension.
// It returns "" for anything that is not jpeg, png or webp.
func detectImageType(path string, data []byte) string {
	ct := http.DetectContentType(data)
	if _, ok := domain.AllowedContentTypes[ct]; ok {
		return ct
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := domain.AllowedExtensions[ext]; ok && len(data) > 0 {
		return ct
	}
	return ""
}

func writeExport(path string, format domain.ExportFormat, report *ingest.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return export.Write(f, format, report.Draft, report.Results)
}

// renderReport prints per-image results, the merged draft and the verdict.
func renderReport(w io.Writer, report *ingest.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tIMAGE\tSTATUS\tPROVIDER\tHOLDINGS")
	for _, r := range report.Results {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", r.Index+1, r.Name, status, r.Provider, len(r.Holdings))
	}
	fmt.Fprintln(tw)

	if report.ManualEntryRequired {
		fmt.Fprintln(tw, "No holdings could be extracted; enter the portfolio manually.")
	} else {
		fmt.Fprintln(tw, "TICKER\tWEIGHT (%)")
		for _, h := range report.Draft.Holdings {
			fmt.Fprintf(tw, "%s\t%.2f\n", h.Ticker, h.Weight)
		}
		fmt.Fprintf(tw, "TOTAL\t%.2f\n", report.Draft.Total())
	}
	fmt.Fprintln(tw)

	v := report.Validation
	line := fmt.Sprintf("validation: %s", v.Status)
	if v.Reason != "" {
		line += " (" + v.Reason + ")"
	}
	if v.RequiresConfirmation() {
		line += " - confirm before submitting"
	}
	fmt.Fprintln(tw, line)
	fmt.Fprintf(tw, "images: %d succeeded, %d failed\n", report.SuccessCount, report.FailureCount)

	return tw.Flush()
}
