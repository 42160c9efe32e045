package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/internal/parquet"
)

// ExecuteExport writes every fit header and coefficient, plus the retrain
// history when run tracking is enabled, to Parquet files prefixed by outputFile.
func ExecuteExport(ctx context.Context, mgr contract.StoreManager, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	coefficients := mgr.GetCoefficientStore()
	status, err := coefficients.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.Models == 0 {
		return errors.New("no fitted models found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total models: %d\n", status.Models)
	_, _ = fmt.Fprintf(w, "Total coefficients: %d\n", status.TableSizes[coefficientsTable])

	fits, err := coefficients.GetAllFits(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve fits: %w", err)
	}
	fitsFile := outputFile + ".usage_model_fits.parquet"
	if err := parquet.WriteModelFitsParquet(parquet.ConvertFitRecords(fits), fitsFile); err != nil {
		return fmt.Errorf("failed to write fits: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d fits to: %s\n", len(fits), fitsFile)

	coefs, err := coefficients.GetAllCoefficients(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve coefficients: %w", err)
	}
	coefsFile := outputFile + ".usage_model_coefficients.parquet"
	if err := parquet.WriteCoefficientsParquet(parquet.ConvertCoefficientRecords(coefs), coefsFile); err != nil {
		return fmt.Errorf("failed to write coefficients: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d coefficients to: %s\n", len(coefs), coefsFile)

	if runs := mgr.GetRunStore(); runs != nil {
		if err := exportRuns(runs, outputFile, w); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")
	return nil
}

// exportRuns writes the retrain history files.
func exportRuns(runs contract.RunStore, outputFile string, w io.Writer) error {
	records, err := runs.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve retrain runs: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	runsFile := outputFile + ".retrain_runs.parquet"
	if err := parquet.WriteRetrainRunsParquet(parquet.ConvertRunRecords(records), runsFile); err != nil {
		return fmt.Errorf("failed to write retrain runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d retrain runs to: %s\n", len(records), runsFile)

	outcomes, err := runs.GetAllOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve retrain outcomes: %w", err)
	}
	outcomesFile := outputFile + ".retrain_outcomes.parquet"
	if err := parquet.WriteRetrainOutcomesParquet(parquet.ConvertOutcomeRecords(outcomes), outcomesFile); err != nil {
		return fmt.Errorf("failed to write retrain outcomes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d retrain outcomes to: %s\n", len(outcomes), outcomesFile)
	return nil
}
