package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePrediction outputs a usage prediction, dispatching based on the output format configured.
func WritePrediction(pred schema.Prediction, cfg *contract.Config, duration time.Duration) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writePredictionTable(w, pred, cfg, duration)
		},
		csv: func(w *csv.Writer) error {
			return writePredictionCSV(w, pred, cfg.Precision)
		},
		json: func(w io.Writer) error {
			return writeJSON(w, pred.Rounded())
		},
		subject: "prediction",
	})
}

// writePredictionTable generates and writes the human-readable prediction.
func writePredictionTable(w io.Writer, pred schema.Prediction, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "Prediction for %s (%s, model %s)\n",
		schema.DisplayName(pred.Player), pred.Team, pred.ModelVersion); err != nil {
		return err
	}

	if len(pred.Breakdown) > 0 {
		nameWidth := getMaxNameWidth(cfg, 50)
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Absent", "Delta", "P-Value", "Sig", "Games", "Note"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, b := range pred.Breakdown {
			row := []string{contract.TruncateName(b.Teammate, nameWidth), "-", "-", "", "-", b.Note}
			if b.Known {
				row[1] = fmtSigned(cfg.Precision, b.Delta)
				row[2] = fmtPValue(b.PValue)
				row[3] = contract.GetSignificanceLabel(b.PValue, cfg.UseColors)
				row[4] = fmt.Sprintf(intFmt, b.GamesUsed)
			}
			data = append(data, row)
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	lines := []string{
		fmt.Sprintf("Baseline usage:  %s%%", fmtFloat(pred.BaselineUsage)),
		fmt.Sprintf("Total delta:     %s", fmtSigned(cfg.Precision, pred.TotalDelta)),
		fmt.Sprintf("Predicted usage: %s%% (confidence: %s)", fmtFloat(pred.PredictedUsage), confidenceLabel(cfg, pred.Confidence)),
		fmt.Sprintf("Predicted in %v", duration),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// writePredictionCSV writes one row per absent teammate, or a single
// summary row when nobody is absent.
func writePredictionCSV(w *csv.Writer, pred schema.Prediction, precision int) error {
	fmtFloat, intFmt := createFormatters(precision)
	header := []string{
		"player", "team", "model_version", "baseline_usage", "predicted_usage", "total_delta",
		"confidence", "teammate", "delta", "p_value", "games_used", "known", "note",
	}
	prefix := []string{
		pred.Player,
		pred.Team,
		pred.ModelVersion,
		fmtFloat(pred.BaselineUsage),
		fmtFloat(pred.PredictedUsage),
		fmtFloat(pred.TotalDelta),
		contract.GetPlainLabel(pred.Confidence),
	}

	var records [][]string
	for _, b := range pred.Breakdown {
		rec := append([]string{}, prefix...)
		rec = append(rec,
			b.Teammate,
			fmtFloat(b.Delta),
			strconv.FormatFloat(b.PValue, 'f', 4, 64),
			fmt.Sprintf(intFmt, b.GamesUsed),
			strconv.FormatBool(b.Known),
			b.Note,
		)
		records = append(records, rec)
	}
	if len(records) == 0 {
		records = append(records, append(prefix, "", "", "", "", "", ""))
	}
	return writeCSVRows(w, header, records)
}
