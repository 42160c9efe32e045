package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteRetrainSummary outputs the per-target outcomes and totals of a retrain run.
func WriteRetrainSummary(summary schema.RetrainSummary, cfg *contract.Config) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writeRetrainTable(w, summary, cfg)
		},
		csv: func(w *csv.Writer) error {
			return writeRetrainCSV(w, summary)
		},
		json: func(w io.Writer) error {
			if summary.Outcomes == nil {
				summary.Outcomes = []schema.TrainOutcome{}
			}
			return writeJSON(w, summary)
		},
		subject: "retrain summary",
	})
}

func writeRetrainTable(w io.Writer, summary schema.RetrainSummary, cfg *contract.Config) error {
	_, intFmt := createFormatters(cfg.Precision)
	nameWidth := getMaxNameWidth(cfg, 70)

	if len(summary.Outcomes) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Team", "Player", "Status", "Games", "Coefs", "Message"})
		var data [][]string
		for _, o := range summary.Outcomes {
			data = append(data, []string{
				o.Team,
				contract.TruncateName(o.Player, nameWidth),
				string(o.Status),
				fmt.Sprintf(intFmt, o.GamesUsed),
				fmt.Sprintf(intFmt, o.Coefficients),
				contract.TruncateName(o.Message, maxNameWidth),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	lines := []string{
		fmt.Sprintf("Model version: %s across %d teams", summary.ModelVersion, summary.Teams),
		fmt.Sprintf("Targets: %d trained, %d skipped, %d failed (of %d)",
			summary.Trained, summary.Skipped, summary.Failed, summary.TotalTargets),
		fmt.Sprintf("Coefficients written: %d", summary.CoefficientsWritten),
		fmt.Sprintf("Elapsed: %v (%v per target)", summary.Elapsed, summary.AveragePerTarget()),
	}
	if summary.RunUUID != "" {
		lines = append(lines, "Run: "+summary.RunUUID)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeRetrainCSV(w *csv.Writer, summary schema.RetrainSummary) error {
	header := []string{"run_uuid", "model_version", "team", "player", "status", "games_used", "coefficients", "message"}
	records := make([][]string, 0, len(summary.Outcomes))
	for _, o := range summary.Outcomes {
		records = append(records, []string{
			summary.RunUUID,
			summary.ModelVersion,
			o.Team,
			o.Player,
			string(o.Status),
			fmt.Sprint(o.GamesUsed),
			fmt.Sprint(o.Coefficients),
			o.Message,
		})
	}
	return writeCSVRows(w, header, records)
}
