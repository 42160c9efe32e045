// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"
)

// formatWriters holds the three renderings of one result type.
type formatWriters struct {
	table   func(io.Writer) error
	csv     func(*csv.Writer) error
	json    func(io.Writer) error
	subject string
}

// writeFormatted dispatches on the configured output format and writes to
// cfg.OutputFile, or stdout when it is empty.
func writeFormatted(cfg *contract.Config, fw formatWriters) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, fw.json, "Wrote JSON "+fw.subject); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			if err := fw.csv(csvWriter); err != nil {
				return err
			}
			csvWriter.Flush()
			return csvWriter.Error()
		}, "Wrote CSV "+fw.subject)
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, fw.table, "Wrote table "+fw.subject)
	}
	return nil
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVRows writes a header and the given records.
func writeCSVRows(w *csv.Writer, header []string, records [][]string) error {
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// fmtSigned formats a delta with an explicit sign.
func fmtSigned(precision int, v float64) string {
	return fmt.Sprintf("%+.*f", precision, v)
}

// fmtPValue formats a p-value with enough digits to tell 0.049 from 0.05.
func fmtPValue(p float64) string {
	if p < 0.0001 {
		return "<0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}

// confidenceLabel returns the confidence label, colored when enabled.
func confidenceLabel(cfg *contract.Config, c schema.Confidence) string {
	if cfg.UseColors {
		return contract.GetColorLabel(c)
	}
	return contract.GetPlainLabel(c)
}
