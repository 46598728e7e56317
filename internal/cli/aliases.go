package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"folioscan/internal/domain"
)

const aliasBatchSize = 500

var (
	aliasSheet string
	aliasOut   string
)

// aliasesCmd converts a spreadsheet of company names into a ticker_aliases seed file.
var aliasesCmd = &cobra.Command{
	Use:   "aliases <file.xlsx>",
	Short: "Generate a ticker alias SQL seed from an Excel sheet",
	Long: `Aliases reads an Excel sheet whose first column holds the company name as
it appears in screenshots and whose second column holds the ticker symbol.
The first row is treated as a header. Output is a transaction of batched
INSERTs into ticker_aliases.

Example:
  folioscan aliases aliases.xlsx -o db/seeds/ticker_aliases.sql`,
	Args: cobra.ExactArgs(1),
	RunE: runAliases,
}

func init() {
	rootCmd.AddCommand(aliasesCmd)

	aliasesCmd.Flags().StringVar(&aliasSheet, "sheet", "", "sheet name (default: first sheet)")
	aliasesCmd.Flags().StringVarP(&aliasOut, "out", "o", "db/seeds/ticker_aliases.sql", "output SQL path, - for stdout")
}

func runAliases(cmd *cobra.Command, args []string) error {
	f, err := excelize.OpenFile(args[0])
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	aliases, err := readAliasSheet(f, aliasSheet)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if aliasOut != "-" {
		out, err := os.Create(aliasOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = out.Close() }()
		w = out
	}

	if err := writeAliasSQL(w, aliases); err != nil {
		return err
	}
	lg.WithComponent("cli").WithField("aliases", len(aliases)).Info("alias seed generated")
	return nil
}

// readAliasSheet reads (alias, ticker) rows, skipping the header, blank rows and duplicate aliases.
func readAliasSheet(f *excelize.File, sheet string) ([]domain.TickerAlias, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	seen := make(map[string]bool)
	var out []domain.TickerAlias
	for i := 1; i < len(rows); i++ {
		alias := strings.TrimSpace(cellVal(rows[i], 0))
		ticker := strings.ToUpper(strings.TrimSpace(cellVal(rows[i], 1)))
		if alias == "" || ticker == "" || seen[alias] {
			continue
		}
		seen[alias] = true
		out = append(out, domain.TickerAlias{Alias: alias, Ticker: ticker})
	}
	return out, nil
}

func writeAliasSQL(w io.Writer, aliases []domain.TickerAlias) error {
	var b strings.Builder
	b.WriteString("-- Ticker alias seed data generated from Excel.\n")
	fmt.Fprintf(&b, "-- %d aliases in batches of %d.\n", len(aliases), aliasBatchSize)
	b.WriteString("BEGIN;\n\n")

	for i := 0; i < len(aliases); i += aliasBatchSize {
		end := i + aliasBatchSize
		if end > len(aliases) {
			end = len(aliases)
		}
		b.WriteString("INSERT INTO ticker_aliases (alias, ticker) VALUES\n")
		for j, a := range aliases[i:end] {
			if j > 0 {
				b.WriteString(",\n")
			}
			fmt.Fprintf(&b, "  ('%s', '%s')", escapeSQL(a.Alias), escapeSQL(a.Ticker))
		}
		b.WriteString("\nON CONFLICT (alias) DO UPDATE SET ticker = EXCLUDED.ticker;\n\n")
	}

	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
