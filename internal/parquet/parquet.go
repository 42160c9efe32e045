// Package parquet provides data structures and functions for exporting fitted
// usage models and retrain history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/parquet-go/parquet-go"
)

// ModelFit is one fit header. It maps to the usage_model_fits table.
type ModelFit struct {
	Player          string    `parquet:"player,snappy"`
	Team            string    `parquet:"team,snappy"`
	ModelVersion    string    `parquet:"model_version,snappy"`
	BaselineUsage   float64   `parquet:"baseline_usage,snappy"`
	GamesUsed       int32     `parquet:"games_used,snappy"`
	RSquared        float64   `parquet:"r_squared,snappy"`
	ConditionNumber float64   `parquet:"condition_number,snappy"`
	LowConfidence   bool      `parquet:"low_confidence,snappy"`
	Dropped         *string   `parquet:"dropped_teammates,optional,snappy"` // comma separated
	UpdatedAt       time.Time `parquet:"updated_at,snappy"`
}

// Coefficient is one teammate effect. It maps to the usage_model_coefficients table.
type Coefficient struct {
	Player        string    `parquet:"player,snappy"`
	Team          string    `parquet:"team,snappy"`
	Teammate      string    `parquet:"teammate,snappy"`
	ModelVersion  string    `parquet:"model_version,snappy"`
	UsageDelta    float64   `parquet:"usage_delta,snappy"`
	BaselineUsage float64   `parquet:"baseline_usage,snappy"`
	PValue        float64   `parquet:"p_value,snappy"`
	GamesUsed     int32     `parquet:"games_used,snappy"`
	RSquared      float64   `parquet:"r_squared,snappy"`
	LowConfidence bool      `parquet:"low_confidence,snappy"`
	UpdatedAt     time.Time `parquet:"updated_at,snappy"`
}

// RetrainRun is one batch retrain. It maps to the retrain_runs table.
type RetrainRun struct {
	RunID               int64      `parquet:"run_id,snappy"`
	RunUUID             string     `parquet:"run_uuid,snappy"`
	StartTime           time.Time  `parquet:"start_time,snappy"`
	EndTime             *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs       *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalTargets        int32      `parquet:"total_targets,snappy"`
	Trained             int32      `parquet:"trained,snappy"`
	Skipped             int32      `parquet:"skipped,snappy"`
	Failed              int32      `parquet:"failed,snappy"`
	CoefficientsWritten int32      `parquet:"coefficients_written,snappy"`
	ConfigParams        *string    `parquet:"config_params,optional,snappy"`
}

// RetrainOutcome is the result for one target in a run. It maps to the retrain_outcomes table.
type RetrainOutcome struct {
	RunID        int64     `parquet:"run_id,snappy"`
	Team         string    `parquet:"team,snappy"`
	Player       string    `parquet:"player,snappy"`
	Status       string    `parquet:"status,snappy"`
	GamesUsed    int32     `parquet:"games_used,snappy"`
	Coefficients int32     `parquet:"coefficients,snappy"`
	Message      *string   `parquet:"message,optional,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
}

// writeFile writes rows to a Parquet file whose schema is inferred from T's struct tags.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteModelFitsParquet writes fit headers to a Parquet file.
func WriteModelFitsParquet(data []ModelFit, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteCoefficientsParquet writes coefficients to a Parquet file.
func WriteCoefficientsParquet(data []Coefficient, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRetrainRunsParquet writes retrain runs to a Parquet file.
func WriteRetrainRunsParquet(data []RetrainRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRetrainOutcomesParquet writes retrain outcomes to a Parquet file.
func WriteRetrainOutcomesParquet(data []RetrainOutcome, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertFitRecords converts schema.FitRecord to ModelFit for Parquet export.
func ConvertFitRecords(records []schema.FitRecord) []ModelFit {
	result := make([]ModelFit, len(records))
	for i, record := range records {
		var dropped *string
		if len(record.Dropped) > 0 {
			joined := strings.Join(record.Dropped, ",")
			dropped = &joined
		}
		result[i] = ModelFit{
			Player:          record.Player,
			Team:            record.Team,
			ModelVersion:    record.ModelVersion,
			BaselineUsage:   record.BaselineUsage,
			GamesUsed:       int32(record.GamesUsed),
			RSquared:        record.RSquared,
			ConditionNumber: record.ConditionNumber,
			LowConfidence:   record.LowConfidence,
			Dropped:         dropped,
			UpdatedAt:       record.UpdatedAt,
		}
	}
	return result
}

// ConvertCoefficientRecords converts schema.CoefficientRecord to Coefficient for Parquet export.
func ConvertCoefficientRecords(records []schema.CoefficientRecord) []Coefficient {
	result := make([]Coefficient, len(records))
	for i, record := range records {
		result[i] = Coefficient{
			Player:        record.Player,
			Team:          record.Team,
			Teammate:      record.Teammate,
			ModelVersion:  record.ModelVersion,
			UsageDelta:    record.UsageDelta,
			BaselineUsage: record.BaselineUsage,
			PValue:        record.PValue,
			GamesUsed:     int32(record.GamesUsed),
			RSquared:      record.RSquared,
			LowConfidence: record.LowConfidence,
			UpdatedAt:     record.UpdatedAt,
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to RetrainRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []RetrainRun {
	result := make([]RetrainRun, len(records))
	for i, record := range records {
		result[i] = RetrainRun{
			RunID:               record.RunID,
			RunUUID:             record.RunUUID,
			StartTime:           record.StartTime,
			EndTime:             record.EndTime,
			RunDurationMs:       record.RunDurationMs,
			TotalTargets:        record.TotalTargets,
			Trained:             record.Trained,
			Skipped:             record.Skipped,
			Failed:              record.Failed,
			CoefficientsWritten: record.CoefficientsWritten,
			ConfigParams:        record.ConfigParams,
		}
	}
	return result
}

// ConvertOutcomeRecords converts schema.OutcomeRecord to RetrainOutcome for Parquet export.
func ConvertOutcomeRecords(records []schema.OutcomeRecord) []RetrainOutcome {
	result := make([]RetrainOutcome, len(records))
	for i, record := range records {
		result[i] = RetrainOutcome{
			RunID:        record.RunID,
			Team:         record.Team,
			Player:       record.Player,
			Status:       string(record.Status),
			GamesUsed:    record.GamesUsed,
			Coefficients: record.Coefficients,
			Message:      record.Message,
			RecordedAt:   record.RecordedAt,
		}
	}
	return result
}
