package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/NoahAizen44/SmarterTips/internal/contract"
	"github.com/NoahAizen44/SmarterTips/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// lowConfidenceFlag marks rank deficient or ill-conditioned fits in tables.
const lowConfidenceFlag = "low confidence"

// WriteModelList outputs the stored model summaries.
func WriteModelList(models []schema.ModelSummary, cfg *contract.Config) error {
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writeModelListTable(w, models, cfg)
		},
		csv: func(w *csv.Writer) error {
			return writeModelListCSV(w, models, cfg.Precision)
		},
		json: func(w io.Writer) error {
			if models == nil {
				models = []schema.ModelSummary{}
			}
			return writeJSON(w, models)
		},
		subject: "models",
	})
}

func writeModelListTable(w io.Writer, models []schema.ModelSummary, cfg *contract.Config) error {
	if len(models) == 0 {
		_, err := fmt.Fprintln(w, "No models stored yet. Run 'smartertips train' first.")
		return err
	}
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	nameWidth := getMaxNameWidth(cfg, 95)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Player", "Team", "Version", "Baseline", "Games", "R²", "Teammates", "Flag", "Updated"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range models {
		flag := ""
		if m.LowConfidence {
			flag = lowConfidenceFlag
		}
		data = append(data, []string{
			contract.TruncateName(m.Player, nameWidth),
			m.Team,
			m.ModelVersion,
			fmtFloat(m.BaselineUsage),
			fmt.Sprintf(intFmt, m.GamesUsed),
			fmtFloat(m.RSquared),
			fmt.Sprintf(intFmt, m.Teammates),
			flag,
			m.UpdatedAt.Format(contract.DateTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d models\n", len(models))
	return err
}

func writeModelListCSV(w *csv.Writer, models []schema.ModelSummary, precision int) error {
	fmtFloat, intFmt := createFormatters(precision)
	header := []string{"player", "team", "model_version", "baseline_usage", "games_used", "r_squared", "teammates", "low_confidence", "updated_at"}
	records := make([][]string, 0, len(models))
	for _, m := range models {
		records = append(records, []string{
			m.Player,
			m.Team,
			m.ModelVersion,
			fmtFloat(m.BaselineUsage),
			fmt.Sprintf(intFmt, m.GamesUsed),
			fmtFloat(m.RSquared),
			fmt.Sprintf(intFmt, m.Teammates),
			strconv.FormatBool(m.LowConfidence),
			m.UpdatedAt.Format(contract.DateTimeFormat),
		})
	}
	return writeCSVRows(w, header, records)
}

// playerModelJSON is the JSON shape of one stored model with ordered coefficients.
type playerModelJSON struct {
	schema.FitRecord
	Coefficients []schema.TeammateCoefficient `json:"coefficients"`
}

// WritePlayerModel outputs a stored model with its coefficients ordered by |delta|.
func WritePlayerModel(model schema.PlayerModel, cfg *contract.Config) error {
	coefs := model.SortedCoefficients()
	return writeFormatted(cfg, formatWriters{
		table: func(w io.Writer) error {
			return writePlayerModelTable(w, model.Fit, coefs, cfg)
		},
		csv: func(w *csv.Writer) error {
			return writePlayerModelCSV(w, model.Fit, coefs, cfg.Precision)
		},
		json: func(w io.Writer) error {
			return writeJSON(w, playerModelJSON{FitRecord: model.Fit, Coefficients: coefs})
		},
		subject: "model",
	})
}

func writePlayerModelTable(w io.Writer, fit schema.FitRecord, coefs []schema.TeammateCoefficient, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	lines := []string{
		fmt.Sprintf("Model for %s (%s, version %s)", schema.DisplayName(fit.Player), fit.Team, fit.ModelVersion),
		fmt.Sprintf("Baseline usage: %s%%", fmtFloat(fit.BaselineUsage)),
		fmt.Sprintf("Games used: "+intFmt+"  R²: %s  Condition number: %.3g", fit.GamesUsed, fmtFloat(fit.RSquared), fit.ConditionNumber),
		fmt.Sprintf("Updated: %s", fit.UpdatedAt.Format(contract.DateTimeFormat)),
	}
	if fit.LowConfidence {
		lines = append(lines, "Warning: "+lowConfidenceFlag+" fit (collinear or ill-conditioned absences)")
	}
	if len(fit.Dropped) > 0 {
		lines = append(lines, "Dropped (no variance): "+strings.Join(fit.Dropped, ", "))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(coefs) == 0 {
		_, err := fmt.Fprintln(w, "No teammate effects in this model.")
		return err
	}

	nameWidth := getMaxNameWidth(cfg, 40)
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Teammate Absent", "Delta", "P-Value", "Sig"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for i, c := range coefs {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(c.Teammate, nameWidth),
			fmtSigned(cfg.Precision, c.Delta),
			fmtPValue(c.PValue),
			contract.GetSignificanceLabel(c.PValue, cfg.UseColors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "* p < 0.05")
	return err
}

func writePlayerModelCSV(w *csv.Writer, fit schema.FitRecord, coefs []schema.TeammateCoefficient, precision int) error {
	fmtFloat, _ := createFormatters(precision)
	header := []string{"player", "team", "model_version", "baseline_usage", "teammate", "usage_delta", "p_value", "significant"}
	records := make([][]string, 0, len(coefs))
	for _, c := range coefs {
		records = append(records, []string{
			fit.Player,
			fit.Team,
			fit.ModelVersion,
			fmtFloat(fit.BaselineUsage),
			c.Teammate,
			fmtFloat(c.Delta),
			strconv.FormatFloat(c.PValue, 'f', 4, 64),
			strconv.FormatBool(c.PValue < schema.SignificantPValue),
		})
	}
	return writeCSVRows(w, header, records)
}
